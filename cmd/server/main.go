package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/courtline/court-reservation/internal/app"
	"github.com/courtline/court-reservation/internal/config"
	"github.com/courtline/court-reservation/internal/db"
	"github.com/courtline/court-reservation/internal/db/migrations"
	"github.com/courtline/court-reservation/internal/notify"
	"github.com/courtline/court-reservation/internal/pkg/storage"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := setupLogger(cfg)
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init upload storage")
	}

	// Notifications go to RabbitMQ when configured, otherwise to the log.
	var sink notify.Dispatcher = notify.LogDispatcher{}
	if cfg.RabbitURL != "" {
		publisher, err := notify.NewRabbitPublisher(cfg.RabbitURL, cfg.NotifyExchange)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer publisher.Close()
		sink = publisher
	}
	notifier := notify.NewAsync(sink, cfg.NotifyTimeout)

	container := app.NewContainer(app.Config{
		IsProduction:           cfg.IsProduction,
		ProdOrigins:            cfg.ProdOrigins,
		Logger:                 logger,
		DBPool:                 pool,
		JWTSecret:              cfg.JWTSecret,
		JWTTTL:                 cfg.JWTAccessTokenTTL,
		BcryptCost:             cfg.BcryptCost,
		CooldownDays:           cfg.CooldownDays,
		AvailabilityRatePerMin: cfg.AvailabilityRatePerMin,
		MessageRatePerMin:      cfg.MessageRatePerMin,
		Notifier:               notifier,
		AdminEmail:             cfg.AdminEmail,
		Storage:                store,
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	// Let in-flight notifications finish before the publisher closes.
	notifier.Wait()

	logger.Info().Msg("server exited gracefully")
}

// setupLogger configures the global zerolog logger. Development gets a
// console writer; production logs JSON.
func setupLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "court-reservation").Logger()
	if !cfg.IsProduction {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	log.Logger = logger
	// log.Ctx falls back to this when a context carries no logger.
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}
