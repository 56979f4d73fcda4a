package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sdko-org/fipe-gateway/internal/auth"
	"github.com/sdko-org/fipe-gateway/internal/cache"
	"github.com/sdko-org/fipe-gateway/internal/config"
	"github.com/sdko-org/fipe-gateway/internal/database"
	"github.com/sdko-org/fipe-gateway/internal/fipe"
	"github.com/sdko-org/fipe-gateway/internal/handlers"
	"github.com/sdko-org/fipe-gateway/internal/history"
	httpserver "github.com/sdko-org/fipe-gateway/internal/http"
	"github.com/sdko-org/fipe-gateway/internal/repository"
	"github.com/sdko-org/fipe-gateway/internal/storage"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(logger, database.PostgresConfig{
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		DBName:   cfg.PostgresDatabase,
		SSLMode:  cfg.PostgresSSLMode,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	var store cache.Store = cache.NewMemoryStore()
	if cfg.CacheBackend == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).WithField("addr", cfg.RedisAddr).Fatal("Failed to connect to redis")
		}
		store = cache.NewRedisStore(rdb, cfg.RedisPrefix, cfg.CacheTTL)
	}
	logger.WithField("backend", cfg.CacheBackend).Info("Lookup cache ready")

	client := fipe.NewClient(logger, fipe.ClientOptions{
		Token:     cfg.FipeAPIKey,
		Timeout:   cfg.FipeTimeout,
		RateLimit: cfg.FipeRateLimit,
	})
	gateway := fipe.NewGateway(logger, store, client, fipe.WithTTL(cfg.CacheTTL))

	historyRepo := repository.NewSearchHistoryRepository(db)
	opts := handlers.APIOptions{
		Lookups:      fipe.NewService(gateway, cfg.FipeBaseURL),
		Listings:     repository.NewListingRepository(db),
		History:      historyRepo,
		Auth:         auth.NewVerifier(cfg.JWTSecret, ""),
		HistoryLimit: cfg.HistoryLimit,
	}
	if cfg.HasS3() {
		photos, err := storage.NewS3Storage(cfg)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialise photo storage")
		}
		opts.Photos = photos
	} else {
		logger.Warn("S3 credentials not set, listing photos disabled")
	}

	go history.NewPruner(logger, historyRepo, cfg.HistoryRetention).Start(ctx)

	limiter := handlers.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	go limiter.Sweep(ctx)

	r := mux.NewRouter()
	r.Use(handlers.LoggingMiddleware(logger, db))
	r.Use(limiter.Middleware)
	handlers.RegisterRoutes(r, handlers.NewAPI(logger, opts))

	server := httpserver.New(logger, r, httpserver.Options{
		Addr:       cfg.ListenAddr,
		TLSAddr:    cfg.TLSListenAddr,
		SelfSigned: cfg.TLSSelfSigned,
	})
	if err := server.Run(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}
