package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/handler"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/remotesync"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/internal/ticket"
	"go-pos-ledger/internal/ws"
	"go-pos-ledger/pkg/clock"
	"go-pos-ledger/pkg/database"
	"go-pos-ledger/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	// 2. Storage
	repo, err := openStateRepo(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open state store")
	}

	// 3. Ledger
	ledger := service.NewLedgerService(repo, clock.NewRealClock(), cfg.Location())
	if err := ledger.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to load ledger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// 4. WebSocket Hub
	wsHub := ws.NewHub()
	ledger.Subscribe(wsHub)
	g.Go(func() error {
		wsHub.Run(ctx)
		return nil
	})

	// 5. Remote sync
	if cfg.SyncEnabled() {
		rdb, err := remotesync.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, remote sync disabled")
		} else {
			defer rdb.Close()
			syncer := remotesync.NewSyncer(ledger, remotesync.NewRedisStore(rdb), cfg.SyncKey, cfg.SyncPushDebounce, cfg.SyncPullInterval)
			ledger.Subscribe(syncer)
			g.Go(func() error { return syncer.Run(ctx) })
			log.Info().Str("sync_key", cfg.SyncKey).Msg("remote sync enabled")
		}
	}

	// 6. Dependency Injection (Wiring Layers)
	threshold, err := decimal.NewFromString(cfg.LowStockThreshold)
	if err != nil {
		log.Warn().Str("value", cfg.LowStockThreshold).Msg("invalid LOW_STOCK_THRESHOLD, using 2")
		threshold = decimal.NewFromInt(2)
	}
	tokens := jwt.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	reportService := service.NewReportService(ledger, threshold)
	accessService := service.NewAccessService(ledger, tokens)

	handlers := handler.Handlers{
		Product:    handler.NewProductHandler(ledger),
		Production: handler.NewProductionHandler(ledger),
		Order:      handler.NewOrderHandler(ledger, ticket.NewRenderer(cfg.StoreName, cfg.Location())),
		Report:     handler.NewReportHandler(reportService),
		Access:     handler.NewAccessHandler(accessService),
		Health:     handler.NewHealthHandler(ledger),
	}
	if cfg.SyncKey != "" {
		handlers.Sync = handler.NewSyncHandler(ledger, cfg.SyncKey)
	}

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:               cfg.StoreName,
		DisableStartupMessage: cfg.IsProduction(),
	})
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	handler.RegisterRoutes(app, handlers, tokens)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Serve until a signal arrives
	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Info().Str("addr", addr).Msg("ledger api listening")
		return app.Listen(addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down server")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server exited")
}

func setupLogger(cfg *config.Config) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.IsProduction() {
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func openStateRepo(cfg *config.Config) (repository.StateRepository, error) {
	var dsn string
	switch cfg.DBDriver {
	case "memory":
		log.Warn().Msg("DB_DRIVER=memory, state is lost on restart")
		return repository.NewMemoryStateRepo(), nil
	case "postgres":
		dsn = cfg.DatabaseURL
	case "sqlite":
		dsn = cfg.SQLitePath
	}

	db, err := database.ConnectDB(database.Options{Driver: cfg.DBDriver, DSN: dsn})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.StateEntry{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return repository.NewStateRepo(db), nil
}
