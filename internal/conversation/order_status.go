package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultOrderStatus is the placeholder returned when no order store answers.
const DefaultOrderStatus = "En producción"

// OrderStatusLookup is a read-only view of order state. ref may be empty when
// the conversation did not mention an order number.
type OrderStatusLookup interface {
	OrderStatus(ctx context.Context, ref string) (string, error)
}

// StaticOrderStatus answers every lookup with the same status.
type StaticOrderStatus string

func (s StaticOrderStatus) OrderStatus(context.Context, string) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return DefaultOrderStatus, nil
	}
	return string(s), nil
}

const orderStatusKeyPrefix = "order_status:"

// RedisOrderStatusLookup reads statuses another system publishes under
// order_status:<ref>. It never writes.
type RedisOrderStatusLookup struct {
	client   redis.UniversalClient
	fallback string
}

// NewRedisOrderStatusLookup creates a lookup; fallback answers misses.
func NewRedisOrderStatusLookup(client redis.UniversalClient, fallback string) *RedisOrderStatusLookup {
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultOrderStatus
	}
	return &RedisOrderStatusLookup{client: client, fallback: fallback}
}

func (l *RedisOrderStatusLookup) OrderStatus(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || l.client == nil {
		return l.fallback, nil
	}
	status, err := l.client.Get(ctx, orderStatusKeyPrefix+ref).Result()
	if errors.Is(err, redis.Nil) {
		return l.fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("conversation: read order status %s: %w", ref, err)
	}
	return status, nil
}
