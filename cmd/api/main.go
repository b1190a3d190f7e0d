package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/muralikrishna-27/aeroface-rec/internal/api"
	"github.com/muralikrishna-27/aeroface-rec/internal/config"
	"github.com/muralikrishna-27/aeroface-rec/internal/database"
	"github.com/muralikrishna-27/aeroface-rec/internal/face"
	"github.com/muralikrishna-27/aeroface-rec/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting AeroFace API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pool
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.HealthCheck(ctx, pool); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	// Detection and embedding providers
	detector, embedder, err := face.NewProviders(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create face providers: %w", err)
	}

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		RegistryRepo:   repository.NewRegistryRepository(pool),
		AttendanceRepo: repository.NewAttendanceRepository(pool),
		Detector:       detector,
		Embedder:       embedder,
		DB:             pool,
		Config:         cfg,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
