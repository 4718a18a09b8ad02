package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"

	"github.com/purnamahesh/albatross/adapter/postgres"
	"github.com/purnamahesh/albatross/adapter/rss"
	"github.com/purnamahesh/albatross/app"
	"github.com/purnamahesh/albatross/internal/config"
	"github.com/purnamahesh/albatross/rest"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	// One bounded pool shared by the ingestion loop and the REST handlers.
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := postgres.New(db)
	if err := repo.Ensure(ctx); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	fetcher := rss.NewFetcher(cfg.FetchTimeout, cfg.UserAgent)
	ingestor := app.NewIngestor(repo, repo, fetcher, cfg.FetchInterval, logger)
	if err := ingestor.Start(ctx); err != nil {
		return err
	}
	defer ingestor.Stop()

	e := echo.New()
	e.HideBanner = true
	rest.RegisterRoutes(e, rest.NewHandler(repo, repo, logger))

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("albatross started", "addr", cfg.HTTPAddr, "fetch_interval", cfg.FetchInterval)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("albatross stopped")
	return nil
}
