package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"svacron-metals/internal/cache"
	"svacron-metals/internal/config"
	"svacron-metals/internal/logging"
	"svacron-metals/internal/pubsub"
	"svacron-metals/internal/services/goldhistory"
	"svacron-metals/internal/services/metaldata"
	"svacron-metals/internal/services/profiles"
	"svacron-metals/internal/web"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

var version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to set up logging:", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config: ", err)
	}

	logger.Info("Starting Svacron Metals...")

	profileSet := profiles.LoadWithFallback(cfg.Metals.ProfilesFile, logger)

	history, err := goldhistory.Load()
	if err != nil {
		logger.Fatal("Failed to load gold history: ", err)
	}

	// Initialize cache
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metalCache, redisClient, err := cache.Open(ctx, cfg.Cache.Backend, &redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache: ", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize pub/sub
	publisher := pubsub.NewPublisher(redisClient, cfg.Redis.PubSubChannel, logger)

	// Initialize services
	client := metaldata.NewClient(metaldata.ClientConfig{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.RateBurst,
	}, logger)

	metalSvc := metaldata.NewService(client, metalCache, publisher, metaldata.ServiceOptions{
		TTL:      cfg.Cache.MetalTTL,
		Policy:   cfg.FailurePolicy(),
		Profiles: profileSet,
	}, logger)

	server, err := web.NewServer(metalSvc, profileSet, history, web.Options{
		Port:      cfg.Server.HTTPPort,
		PublicURL: cfg.Server.PublicURL,
		Locale:    cfg.Locale(),
		Version:   version,
		CacheTier: metalCache.Tier(),
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create HTTP server: ", err)
	}

	httpErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			httpErrChan <- err
		}
	}()

	if cfg.Metals.RefreshInterval > 0 {
		go metalSvc.StartRefresher(ctx, cfg.Metals.RefreshInterval)
	}

	logger.WithFields(logrus.Fields{
		"version":  version,
		"port":     cfg.Server.HTTPPort,
		"cache":    metalCache.Tier(),
		"policy":   metalSvc.Policy(),
		"locale":   cfg.Locale(),
		"api_base": cfg.API.BaseURL,
	}).Info("Svacron Metals started successfully")

	// Wait for shutdown signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("Received shutdown signal")
	case err := <-httpErrChan:
		logger.WithError(err).Error("HTTP server error")
	}

	logger.Info("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown incomplete")
	}

	logger.Info("Shutdown complete")
}
