// Package services – SessionService
//
// This file implements SessionService, the hand-off between a finished
// practice chat and its review. Ending a chat stores the transcript, the
// persona and the feedback language as a short-lived ConversationSession;
// the review endpoint later reads it back by id and scores it.
//
// Records belong to the user that created them and expire after TTL.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/session"
)

// PersonaGetter resolves a stored persona for the user.
type PersonaGetter interface {
	Get(ctx context.Context, userID, id string) (*domain.Persona, error)
}

// Reviewer scores a finished conversation.
type Reviewer interface {
	ReviewConversation(ctx context.Context, in ConversationInput) (*domain.ConversationFeedback, error)
}

// EndInput describes a finished chat. When PersonaID is set the stored
// persona is used and Persona is ignored.
type EndInput struct {
	PersonaID   string
	PersonaName string
	Persona     *domain.Persona
	Language    string
	Messages    []domain.Message
}

// SessionService stores and reviews finished conversations.
type SessionService struct {
	Store    session.Store
	Personas PersonaGetter
	Reviewer Reviewer
	TTL      time.Duration

	now func() time.Time
}

// NewSessionService wires a SessionService. ttl <= 0 means two hours.
func NewSessionService(st session.Store, personas PersonaGetter, r Reviewer, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionService{Store: st, Personas: personas, Reviewer: r, TTL: ttl, now: time.Now}
}

// End validates in and stores it as a new session owned by userID.
//
// Errors: ErrEmptyTranscript, ErrInvalidRole, ErrInvalidInput (no persona
// name) and ErrPersonaNotFound for an unknown PersonaID.
func (s *SessionService) End(ctx context.Context, userID string, in EndInput) (*domain.ConversationSession, error) {
	ctx, span := otel.Tracer("services/SessionService").Start(ctx, "End",
		trace.WithAttributes(attribute.Int("messages", len(in.Messages))),
	)
	defer span.End()

	if len(in.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}
	if err := validateMessages(in.Messages); err != nil {
		return nil, err
	}

	persona := in.Persona
	if id := strings.TrimSpace(in.PersonaID); id != "" {
		p, err := s.Personas.Get(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		persona = p
	}

	name := strings.TrimSpace(in.PersonaName)
	if name == "" && persona != nil {
		name = strings.TrimSpace(persona.Name)
	}
	if name == "" {
		return nil, wrapInvalid("personaName is required")
	}

	lang := strings.TrimSpace(in.Language)
	if lang == "" {
		lang = persona.LanguageOrDefault()
	}

	now := s.now().UTC()
	rec := &domain.ConversationSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		PersonaName: name,
		Persona:     persona,
		Language:    CanonicalLanguage(lang),
		Messages:    cleanMessages(in.Messages),
		EndedAt:     now,
		ExpiresAt:   now.Add(s.TTL),
	}
	if persona != nil {
		rec.PersonaID = persona.ID
	}
	if err := s.Store.Put(ctx, rec); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", rec.ID))
	return rec, nil
}

// Get returns the session or ErrSessionNotFound.
func (s *SessionService) Get(ctx context.Context, userID, id string) (*domain.ConversationSession, error) {
	rec, err := s.Store.Get(ctx, userID, id)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return rec, err
}

// Review scores a stored session. The record is left in place so the review
// can be re-run until it expires.
func (s *SessionService) Review(ctx context.Context, userID, id string) (*domain.ConversationFeedback, error) {
	ctx, span := otel.Tracer("services/SessionService").Start(ctx, "Review",
		trace.WithAttributes(attribute.String("session.id", id)),
	)
	defer span.End()

	rec, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.Reviewer.ReviewConversation(ctx, ConversationInput{
		PersonaName: rec.PersonaName,
		Persona:     rec.Persona,
		Language:    rec.Language,
		Messages:    rec.Messages,
	})
}

// cleanMessages drops feedback the client attached and trims content.
func cleanMessages(in []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(in))
	for _, m := range in {
		out = append(out, domain.Message{
			ID:      m.ID,
			Role:    m.Role,
			Content: strings.TrimSpace(m.Content),
			Emoji:   m.Emoji,
		})
	}
	return out
}
