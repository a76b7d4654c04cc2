package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storeapi/internal/config"
	"storeapi/internal/logger"
	"storeapi/internal/metrics"
	"storeapi/internal/server"
	"storeapi/internal/services"
	"storeapi/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// storeapi serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// --- Configuration ---
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; login and protected routes will fail until it is set")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// --- Store ---
	store, err := server.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Error("store connection failed", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("error closing store", zap.Error(err))
		}
	}()

	// --- Events ---
	var events services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			// Events are best effort; the API keeps serving without them.
			log.Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			defer mq.Close()
			events = mq
			if cfg.ConsumeEvents {
				if err := mq.ConsumeEvents(rabbitmq.AuditHandler(log)); err != nil {
					log.Warn("failed to start event consumer", zap.Error(err))
				}
			}
		}
	}

	// --- Services ---
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	users := services.NewUserService(store.Users, hasher, tokens, events, log)
	products := services.NewProductService(store.Products, events, log)

	app := server.New(server.Deps{
		Users:              users,
		Products:           products,
		Tokens:             tokens,
		Metrics:            metrics.New(),
		Log:                log,
		Ping:               store.Ping,
		HideInternalErrors: cfg.HideInternalErrors,
	})

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env), zap.String("store", store.Driver))
		listenErr <- app.Listen(cfg.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Warn("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}
