package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/commerce-chat/internal/config"
	"github.com/wolfman30/commerce-chat/internal/conversation"
	"github.com/wolfman30/commerce-chat/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildOrderStatusLookup reads published order status from Redis when it is
// reachable and otherwise answers every lookup with the configured placeholder.
func BuildOrderStatusLookup(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) conversation.OrderStatusLookup {
	fallback := conversation.DefaultOrderStatus
	if cfg != nil && strings.TrimSpace(cfg.DefaultOrderStatus) != "" {
		fallback = cfg.DefaultOrderStatus
	}
	if redisClient == nil {
		return conversation.StaticOrderStatus(fallback)
	}
	if logger != nil {
		logger.Info("order status lookup backed by redis")
	}
	return conversation.NewRedisOrderStatusLookup(redisClient, fallback)
}
