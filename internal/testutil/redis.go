package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/store"
)

// RedisContainer is a running Redis with a connected client.
type RedisContainer struct {
	Client *redis.Client
	Config config.RedisConfig
}

// NewRedisContainer starts redis:7-alpine and connects to it.
//
// Precondition: Docker must be available.
// Postcondition: Returns a connected client or fails the test.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ep := startContainer(t, "redis:7-alpine", "6379", nil, "Ready to accept connections", 1)

	cfg := config.RedisConfig{
		Addr:       fmt.Sprintf("%s:%d", ep.host, ep.port),
		SessionTTL: time.Hour,
	}
	client, err := store.NewRedisClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connecting to test redis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return &RedisContainer{Client: client, Config: cfg}
}
