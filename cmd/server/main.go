package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clustmart/festival-tracker/internal/archive"
	"github.com/clustmart/festival-tracker/internal/cache"
	"github.com/clustmart/festival-tracker/internal/config"
	"github.com/clustmart/festival-tracker/internal/database"
	"github.com/clustmart/festival-tracker/internal/gate"
	"github.com/clustmart/festival-tracker/internal/handlers"
	"github.com/clustmart/festival-tracker/internal/identity"
	"github.com/clustmart/festival-tracker/internal/stats"
	"github.com/clustmart/festival-tracker/internal/store"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()

	db, err := database.NewPostgresDB(logger, database.PostgresConfig{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		DBName:   cfg.PostgresDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("Database setup failed")
	}

	events := store.NewEventStore(db)
	settings := store.NewSettingsStore(db)

	var aggregates cache.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		aggregates = cache.NewRedisCache(logger, rdb, "festival-tracker")
		logger.WithField("addr", cfg.RedisAddr).Info("Using Redis aggregate cache")
	} else {
		aggregates = cache.NewMemoryCache()
		logger.Info("Using in-memory aggregate cache")
	}

	engine := stats.NewEngine(logger, events, aggregates, settings, stats.Options{
		CacheTTL:     cfg.StatsCacheTTL,
		TodayTTL:     cfg.TodayCacheTTL,
		QueryTimeout: cfg.QueryTimeout,
	})

	tracker := handlers.NewTracker(
		logger,
		gate.New(cfg.RateLimit, cfg.RateLimitWindow),
		identity.NewHasher(cfg.HashSecret),
		events,
		settings,
	)
	dash := handlers.NewDashboardHandler(logger, engine, settings)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger))
	handlers.RegisterRoutes(r, tracker, dash, cfg.AdminToken)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.ArchiveEnabled {
		archiver := archive.NewArchiver(logger, db, cfg)
		go archiver.Start(ctx)
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Server shutdown error")
		}
	}()

	logger.WithField("addr", server.Addr).Info("Starting server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Fatal("Server failed")
	}
}
