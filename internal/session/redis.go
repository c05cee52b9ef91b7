package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

const redisPrefix = "coach:session:"

// RedisOptions configures a Redis store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// TTL applies to records without an expiry; <= 0 means two hours.
	TTL time.Duration
}

// Redis is a Store that keeps each record as a JSON string with a TTL.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// DialRedis connects to Redis and verifies the connection with PING.
func DialRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("session: redis ping %s: %w", opts.Addr, err)
	}
	return NewRedis(rdb, opts.TTL), nil
}

// NewRedis wraps an existing client.
func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Redis{rdb: rdb, ttl: ttl, now: time.Now}
}

// Put stores s with the time it has left to live.
func (r *Redis) Put(ctx context.Context, s *domain.ConversationSession) error {
	ttl, ok := remaining(s, r.now(), r.ttl)
	if !ok {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(s.UserID, s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

// Get loads and decodes a record.
func (r *Redis) Get(ctx context.Context, userID, id string) (*domain.ConversationSession, error) {
	data, err := r.rdb.Get(ctx, r.key(userID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	var s domain.ConversationSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	if s.UserID != userID || s.Expired(r.now()) {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Delete removes a record.
func (r *Redis) Delete(ctx context.Context, userID, id string) error {
	if err := r.rdb.Del(ctx, r.key(userID, id)).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (r *Redis) Close() error { return r.rdb.Close() }

func (r *Redis) key(userID, id string) string { return redisPrefix + key(userID, id) }
