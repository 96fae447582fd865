package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/config"
	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/handler"
	"github.com/noah-isme/almacen-api/internal/middleware"
	"github.com/noah-isme/almacen-api/internal/repository"
	"github.com/noah-isme/almacen-api/internal/router"
	"github.com/noah-isme/almacen-api/internal/service"
)

const feedCacheTTL = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("%v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using database dedup and no feed cache")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, activities will not be published")
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}

	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if natsConn != nil {
		probes["nats"] = func(ctx context.Context) error { return natsConn.FlushWithContext(ctx) }
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	registerRepo := repository.NewRegisterRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	registry := audit.DefaultRegistry()
	var guard audit.Guard
	if redisClient != nil {
		guard = audit.NewRedisGuard(redisClient, "almacen:audit:dedup", logger)
	}
	recorder := audit.NewRecorder(audit.RecorderDeps{
		Registry:  registry,
		Snapshots: audit.NewMemorySnapshotStore(registry, cfg.Audit.SnapshotMaxEntries, cfg.Audit.SnapshotTTL),
		Resolver:  audit.NewResolver(userRepo, registerRepo, cfg.Audit.FallbackActorName, logger),
		Guard:     guard,
		Store:     activityRepo,
		Publisher: audit.NewNATSPublisher(natsConn, cfg.NATSSubjectPrefix, cfg.AppName),
	}, audit.Options{
		DedupWindow:       cfg.Audit.DedupWindow,
		LowStockWindow:    cfg.Audit.LowStockWindow,
		SaleEditWindow:    cfg.Audit.SaleEditWindow,
		DescriptionMax:    cfg.Audit.DescriptionMax,
		FallbackActorName: cfg.Audit.FallbackActorName,
	}, logger)
	mutator := repository.NewMutator(db, recorder, recorder, logger)

	catalogService := service.NewCatalogService(catalogRepo, mutator, validate, logger)
	registerService := service.NewRegisterService(registerRepo, mutator, validate, logger)
	saleService := service.NewSaleService(repository.NewSaleRepository(db), registerRepo, catalogRepo, mutator, validate, logger)
	stockService := service.NewStockService(repository.NewStockReceiptRepository(db), registerRepo, catalogRepo, mutator, validate, logger)
	creditService := service.NewCreditService(repository.NewCreditRepository(db), registerRepo, mutator, validate, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	feedService := service.NewActivityFeedService(activityRepo, registerRepo, redisClient, feedCacheTTL, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CatalogHandler:      handler.NewCatalogHandler(catalogService, logger),
		RegisterHandler:     handler.NewRegisterHandler(registerService, logger),
		SaleHandler:         handler.NewSaleHandler(saleService, stockService, logger),
		CreditHandler:       handler.NewCreditHandler(creditService, logger),
		ActivityHandler:     handler.NewActivityHandler(activityService, logger),
		ActivityFeedHandler: handler.NewActivityFeedHandler(feedService, logger),
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
		HealthProbes:        probes,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
