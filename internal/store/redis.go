package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

// KeyPrefix namespaces session keys.
const KeyPrefix = "skirmish:session:"

// NewRedisClient connects to Redis and verifies the connection with PING.
//
// Precondition: cfg.Addr must be non-empty.
// Postcondition: Returns a connected client or an error.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStore keeps sessions as JSON strings with a sliding TTL. Every Put
// refreshes the expiry; a zero TTL disables expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps client.
//
// Precondition: client must be non-nil.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string { return KeyPrefix + id }

// Get loads and validates the session stored under id.
func (r *RedisStore) Get(ctx context.Context, id string) (*session.GameSession, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return Decode(data)
}

// Put writes s and resets its TTL.
func (r *RedisStore) Put(ctx context.Context, s *session.GameSession) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("setting session %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes id.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Health pings Redis.
func (r *RedisStore) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
