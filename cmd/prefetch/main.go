package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"svacron-metals/internal/cache"
	"svacron-metals/internal/config"
	"svacron-metals/internal/logging"
	"svacron-metals/internal/prefetch"
	"svacron-metals/internal/services/metaldata"

	"github.com/go-redis/redis/v8"
)

func main() {
	// Command line flags
	metalsFlag := flag.String("metals", "all", "Comma-separated metals to warm (e.g., gold,silver) or 'all'")
	workers := flag.Int("workers", 3, "Number of parallel workers")
	timeout := flag.Duration("timeout", time.Minute, "Overall deadline for the warm run")
	flag.Parse()

	metals, err := prefetch.ParseMetals(*metalsFlag)
	if err != nil {
		fmt.Println("Error:", err)
		flag.Usage()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error: failed to load config:", err)
		os.Exit(1)
	}

	cfg.Logging.Format = "text"
	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Println("Error: failed to set up logging:", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	metalCache, redisClient, err := cache.Open(ctx, cfg.Cache.Backend, &redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}
	if metalCache.Tier() == cache.BackendMemory {
		logger.Warn("CACHE_BACKEND=memory: warmed data only lives for this process")
	}

	client := metaldata.NewClient(metaldata.ClientConfig{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.RateBurst,
	}, logger)

	job := &prefetch.Job{
		Metals:  metals,
		Workers: *workers,
		Strict:  cfg.FailurePolicy() == metaldata.FailPropagate,
	}

	logger.Infof("Warming cache: %s", job.String())

	warmer := prefetch.New(client, metalCache, cfg.Cache.MetalTTL, os.Stderr, logger)
	if _, err := warmer.Warm(ctx, job); err != nil {
		logger.Fatalf("Cache warm failed: %v", err)
	}

	logger.Info("Cache warm completed successfully")
}
