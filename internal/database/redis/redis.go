package redis

import (
	"context"
	"fmt"
	"time"

	"gram-vidya/internal/config"

	"github.com/golang/glog"
	"github.com/redis/go-redis/v9"
)

// Connect returns nil without error when no address is configured.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		glog.Info("Redis not configured, quiz cache and chat relay are disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	glog.Infof("Connected to Redis at %s (db %d)", cfg.Address, cfg.DB)
	return client, nil
}
