package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	"github.com/kvaidya/stockfolio/internal/api"
	"github.com/kvaidya/stockfolio/internal/auth"
	"github.com/kvaidya/stockfolio/internal/config"
	"github.com/kvaidya/stockfolio/internal/database"
	"github.com/kvaidya/stockfolio/internal/kafka"
	"github.com/kvaidya/stockfolio/internal/ledger"
	"github.com/kvaidya/stockfolio/internal/logging"
	"github.com/kvaidya/stockfolio/internal/quotes"
	"github.com/kvaidya/stockfolio/internal/redis"
)

func main() {
	cfg := config.Load()

	logger := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Pretty:   cfg.Log.Pretty,
		FilePath: cfg.Log.FilePath,
	})

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Storage backend: postgres by default, in-memory for local runs.
	var (
		tradeStore ledger.TradeStore
		userStore  auth.UserStore
		dbPinger   api.Pinger
	)
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := runMigrations(cfg.Database.ConnectionString()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to run database migrations")
		}
		logger.Info().Msg("Connected to PostgreSQL database")

		tradeStore = db
		userStore = db
		dbPinger = db
	case "memory":
		tradeStore = ledger.NewMemoryStore()
		userStore = auth.NewMemoryUserStore()
		logger.Info().Msg("Using in-memory storage")
	}

	// Redis is optional; without it every quote lookup walks the
	// sources.
	var (
		quoteCache  quotes.QuoteCache
		cachePinger api.Pinger
	)
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis, continuing without cache")
	} else {
		defer redisClient.Close()
		logger.Info().Msg("Connected to Redis cache")
		quoteCache = redisClient
		cachePinger = redisClient
	}

	var events ledger.EventPublisher
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TradesTopic, logging.Component(logger, "kafka"))
		defer producer.Close()
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.TradesTopic).Msg("Kafka producer initialized")
		events = producer
	}

	ledgerSvc := ledger.NewService(tradeStore, events, logging.Component(logger, "ledger"))
	authSvc := auth.NewService(userStore, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logging.Component(logger, "auth"))

	pipeline := quotes.NewPipeline(
		buildSources(cfg.Quotes, logger),
		quoteCache,
		quotes.Config{
			Retry: quotes.RetryConfig{
				MaxAttempts: cfg.Quotes.MaxAttempts,
				BaseDelay:   cfg.Quotes.RetryBaseDelay,
			},
			BatchDelay: cfg.Quotes.BatchDelay,
			CacheTTL:   cfg.Quotes.CacheTTL,
		},
		logging.Component(logger, "quotes"),
	)

	// Context for the Kafka consumer's lifetime.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var consumer *kafka.ImportConsumer
	if cfg.Kafka.Enabled {
		consumer = kafka.NewImportConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.ImportTopic,
			cfg.Kafka.ConsumerGroup,
			ledgerSvc,
			logging.Component(logger, "kafka"),
		)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Kafka import consumer error")
			}
		}()
	}

	handler := api.NewHandler(authSvc, ledgerSvc, pipeline, dbPinger, cachePinger, cfg.Kafka.Enabled, logging.Component(logger, "api"))
	router := api.SetupRoutes(handler, cfg.Server.StaticDir)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Batch quote endpoints walk sources sequentially with a
		// per-symbol pause, so writes need generous headroom.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Kafka consumer")
		}
	}

	logger.Info().Msg("Server stopped")
}

// buildSources instantiates quote sources in the configured priority
// order.
func buildSources(cfg config.QuotesConfig, logger zerolog.Logger) []quotes.Source {
	sources := make([]quotes.Source, 0, len(cfg.SourceOrder))
	for _, name := range cfg.SourceOrder {
		switch name {
		case "yahoo":
			sources = append(sources, quotes.NewYahooSource(cfg.SourceTimeout))
		case "nse":
			sources = append(sources, quotes.NewNSESource(cfg.SourceTimeout))
		case "bse":
			sources = append(sources, quotes.NewBSESource(cfg.SourceTimeout))
		default:
			// Validate() already rejected unknown names.
			logger.Warn().Str("source", name).Msg("Skipping unknown quote source")
		}
	}
	return sources
}

func runMigrations(databaseURL string) error {
	m, err := migrate.New("file://./db/migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
