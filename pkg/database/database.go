package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options selects the driver and its data source.
type Options struct {
	Driver   string // postgres | sqlite
	DSN      string
	LogLevel logger.LogLevel
}

// zerologWriter routes gorm's logger through the global zerolog logger.
type zerologWriter struct{}

func (zerologWriter) Printf(format string, args ...interface{}) {
	log.Debug().Str("component", "gorm").Msgf(format, args...)
}

func ConnectDB(opts Options) (*gorm.DB, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	gormLogger := logger.New(zerologWriter{}, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  opts.LogLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})

	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DSN:                  opts.DSN,
			PreferSimpleProtocol: true, // works behind transaction-mode poolers
		})
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.Driver == "sqlite" {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info().Str("driver", opts.Driver).Msg("database connection established")
	return db, nil
}
