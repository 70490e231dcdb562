package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/localhands/gateway"
	"github.com/example/localhands/pkg/auth"
	"github.com/example/localhands/pkg/catalog"
	"github.com/example/localhands/pkg/config"
	"github.com/example/localhands/pkg/discovery"
	"github.com/example/localhands/pkg/orders"
	"github.com/example/localhands/pkg/repository"
)

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting LocalHands API",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB
	repo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := repo.Ping(pingCtx); err != nil {
		pingCancel()
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	pingCancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Redis cache, best effort
	cache := repository.NewCache(&cfg.Redis, logger)
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("Redis unavailable, cache reads will miss", zap.Error(err))
	}

	// Service discovery
	registry, err := discovery.NewServiceRegistry(&cfg.Etcd)
	if err != nil {
		logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		registry = nil
	}
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}
	if registry != nil {
		if err := registry.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		}
	}

	// Services
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	google := auth.NewGoogleVerifier(cfg.Auth.GoogleClientID)
	authSvc := auth.NewService(repo.Users(), tokens, google, logger.Named("auth"))
	catalogSvc := catalog.NewService(repo.Shops(), repo.Products(), repo.Users(), cache, logger.Named("catalog"))
	orderSvc := orders.NewService(repo.Orders(), repo.Products(), repo.Shops(), logger.Named("orders"))

	gw := gateway.NewGateway(cfg, logger, authSvc, catalogSvc, orderSvc)
	gw.SetupRoutes()

	gwErr := make(chan error, 1)
	go func() {
		if err := gw.Start(); err != nil {
			gwErr <- err
		}
	}()

	logger.Info("API started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-gwErr:
		logger.Fatal("API error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if registry != nil {
		if err := registry.Deregister(shutdownCtx, instance); err != nil {
			logger.Warn("Failed to deregister service", zap.Error(err))
		}
		registry.Close()
	}
	cache.Close()
	if err := repo.Close(shutdownCtx); err != nil {
		logger.Warn("Failed to close MongoDB connection", zap.Error(err))
	}

	logger.Info("API stopped")
}
