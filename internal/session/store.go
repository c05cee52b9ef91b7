// Package session holds the conversation hand-off records created when a
// practice chat ends and read back by the conversation review.
//
// Two backends implement Store: an in-process expiring LRU for single-node
// deployments and Redis for anything larger. Records are owned by the user
// that created them; a read by anyone else behaves like a miss.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

// ErrNotFound is returned for unknown, expired or foreign records.
var ErrNotFound = errors.New("session not found")

// Store persists conversation sessions for a limited time.
type Store interface {
	// Put stores s until s.ExpiresAt, replacing any record with the same ID.
	Put(ctx context.Context, s *domain.ConversationSession) error
	// Get returns the record with id owned by userID.
	Get(ctx context.Context, userID, id string) (*domain.ConversationSession, error)
	// Delete removes the record with id owned by userID. Missing records are
	// not an error.
	Delete(ctx context.Context, userID, id string) error
	// Close releases backend resources.
	Close() error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options configures New.
type Options struct {
	Backend    string
	TTL        time.Duration
	MaxEntries int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New builds the store named by opts.Backend. The Redis backend is pinged
// before it is returned.
func New(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendMemory:
		return NewMemory(opts.MaxEntries, opts.TTL), nil
	case BackendRedis:
		return DialRedis(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			TTL:      opts.TTL,
		})
	default:
		return nil, fmt.Errorf("session: unknown backend %q", opts.Backend)
	}
}

// remaining returns how long s should live from now, or false when it has
// already expired. A zero ExpiresAt gives fallback.
func remaining(s *domain.ConversationSession, now time.Time, fallback time.Duration) (time.Duration, bool) {
	if s.ExpiresAt.IsZero() {
		return fallback, true
	}
	d := s.ExpiresAt.Sub(now)
	return d, d > 0
}

func key(userID, id string) string { return userID + "/" + id }
