package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

// Memory is an in-process Store bounded by entry count and TTL. The oldest
// records are evicted first once the cache is full.
type Memory struct {
	cache *expirable.LRU[string, domain.ConversationSession]
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory returns a Memory store holding up to size records for ttl each.
// size <= 0 means 1024 and ttl <= 0 means two hours.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 1024
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Memory{
		cache: expirable.NewLRU[string, domain.ConversationSession](size, nil, ttl),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores a copy of s.
func (m *Memory) Put(_ context.Context, s *domain.ConversationSession) error {
	if _, ok := remaining(s, m.now(), m.ttl); !ok {
		return nil
	}
	m.cache.Add(key(s.UserID, s.ID), clone(s))
	return nil
}

// Get returns a copy of the stored record.
func (m *Memory) Get(_ context.Context, userID, id string) (*domain.ConversationSession, error) {
	s, ok := m.cache.Get(key(userID, id))
	if !ok || s.Expired(m.now()) {
		return nil, ErrNotFound
	}
	out := clone(&s)
	return &out, nil
}

// Delete removes the record.
func (m *Memory) Delete(_ context.Context, userID, id string) error {
	m.cache.Remove(key(userID, id))
	return nil
}

// Len reports the number of cached records, expired ones included until
// they are purged.
func (m *Memory) Len() int { return m.cache.Len() }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// clone copies s deeply enough that callers cannot mutate the cached value.
func clone(s *domain.ConversationSession) domain.ConversationSession {
	out := *s
	out.Messages = append([]domain.Message(nil), s.Messages...)
	if s.Persona != nil {
		p := *s.Persona
		out.Persona = &p
	}
	return out
}
