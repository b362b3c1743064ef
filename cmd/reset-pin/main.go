package main

import (
	"flag"
	"os"

	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/pkg/clock"
	"go-pos-ledger/pkg/database"
	"go-pos-ledger/pkg/jwt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	code := flag.String("code", model.DefaultAccessCode, "new access code (4 to 12 characters)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using process environment")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.DBDriver == "memory" {
		log.Fatal().Msg("DB_DRIVER=memory has no stored access code to reset")
	}

	// 2. Setup Database
	dsn := cfg.SQLitePath
	if cfg.DBDriver == "postgres" {
		dsn = cfg.DatabaseURL
	}
	db, err := database.ConnectDB(database.Options{Driver: cfg.DBDriver, DSN: dsn})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := db.AutoMigrate(&model.StateEntry{}); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	// 3. Load ledger and store the new code hashed
	ledger := service.NewLedgerService(repository.NewStateRepo(db), clock.NewRealClock(), cfg.Location())
	if err := ledger.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load ledger")
	}
	access := service.NewAccessService(ledger, jwt.NewManager(cfg.JWTSecret, 0))
	if err := access.ResetAccessCode(*code); err != nil {
		log.Fatal().Err(err).Msg("failed to reset access code")
	}

	log.Info().Msg("access code reset")
}
