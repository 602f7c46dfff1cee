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

	"moneylens/internal/ai"
	"moneylens/internal/cache"
	"moneylens/internal/config"
	"moneylens/internal/database"
	"moneylens/internal/logger"
	"moneylens/internal/models"
	"moneylens/internal/observability"
	"moneylens/internal/resilience"
	"moneylens/internal/router"
	"moneylens/internal/services"
	"moneylens/internal/validator"
)

// @title           MoneyLens API
// @version         1.0
// @description     MoneyLens records what you earn, spend and save, and reports totals by month, year, category and tag.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, "moneylens-api", appConfig.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warnf("tracing shutdown error: %v", err)
		}
	}()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(database.DefaultMigrationsSource); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	var suggester services.CategorySuggester
	if appConfig.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiSuggester(ctx, appConfig.GeminiAPIKey, appConfig.GeminiModel, resilience.DefaultConfig())
		if err != nil {
			return fmt.Errorf("failed to init category suggester: %w", err)
		}
		suggester = gemini
	} else {
		log.Info("GEMINI_API_KEY not set; category suggestions disabled")
	}

	previews := cache.New[models.BulkPayload](appConfig.BulkPreviewTTL)
	defer previews.Close()

	validator.Register()
	handler := router.New(router.Deps{
		DB:        dbManager.DB(),
		Config:    appConfig,
		Metrics:   observability.NewMetrics(),
		Suggester: suggester,
		Previews:  previews,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting MoneyLens API on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
