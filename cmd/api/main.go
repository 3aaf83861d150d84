// Package main is the entry point for the accounts API.
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

	"github.com/joho/godotenv"

	"github.com/99minutos/accounts-api/internal/api"
	"github.com/99minutos/accounts-api/internal/infrastructure/config"
	mongostore "github.com/99minutos/accounts-api/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/accounts-api/internal/infrastructure/db/redis"
	"github.com/99minutos/accounts-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Accounts API
// @version 1.0
// @description User registration, login and account deletion with bearer-token sessions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run starts the service and blocks until ctx is done or the server fails.
// Clients opened here are always closed before it returns.
func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "accounts-api",
	})

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer func() {
		if err := mongostore.Disconnect(client, shutdownTimeout); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect")
		}
	}()

	if err := mongostore.NewUserRepository(db, cfg.Mongo.Timeout).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:    cfg.Redis.Addr,
		DB:      cfg.Redis.DB,
		Timeout: cfg.Redis.Timeout,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Info().Msg("REDIS_ADDR not set, idempotent registration disabled")
	}

	e := api.NewRouter(api.NewDependencies(cfg, db, rdb, log))

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped unexpectedly: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
