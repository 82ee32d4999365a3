package main

import (
	"context"
	"fmt"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/fs-auth/internal/cache"
	"github.com/yourusername/fs-auth/internal/config"
	"github.com/yourusername/fs-auth/internal/jobs"
)

func setupCache(ctx context.Context, cfg *config.Config) (*redis.Client, *cache.ProfileCache, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}

	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return redisClient, cache.NewProfileCache(redisClient, cfg.ProfileCacheTTL()), nil
}

func setupJobs(cfg *config.Config, profiles jobs.ProfileWarmer, logger *slog.Logger) (*jobs.Manager, error) {
	manager, err := jobs.NewManager(cfg.RedisURL, profiles, logger)
	if err != nil {
		return nil, err
	}
	return manager, nil
}
