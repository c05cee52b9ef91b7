// Package services – ChatService
//
// This file implements ChatService, which produces the persona's
// in-character reply to the advisor. It validates the persona and the
// transcript, renders the role-play brief, trims the oldest history to the
// configured token budget, and opens a streamed completion. The caller owns
// the returned stream and relays it to the client.
//
// Observability: Reply is OpenTelemetry-instrumented with the persona and
// history sizes.
package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/llm"
	"github.com/tbourn/go-advisor-coach/internal/prompt"
)

// Completer is the completion-provider contract used by the services.
// *llm.Client implements it.
type Completer interface {
	Stream(ctx context.Context, req llm.Request) (*llm.Stream, error)
	CompleteJSON(ctx context.Context, req llm.Request, v any) error
}

// Defaults for the role-play completion.
const (
	DefaultChatTemperature = 0.8
	DefaultChatMaxTokens   = 500
)

// ChatInput is one chat turn: the persona to play and the transcript so far,
// ending with the advisor's latest message. Messages must be non-nil but may
// be empty.
type ChatInput struct {
	Persona  *domain.Persona
	Messages []domain.Message
}

// ChatService streams persona replies.
type ChatService struct {
	LLM   Completer
	Model string

	Temperature float64
	MaxTokens   int

	// HistoryBudget caps the transcript in tokens; <= 0 sends it whole.
	HistoryBudget int
	// Count measures tokens for HistoryBudget; nil uses prompt.CountTokens.
	Count prompt.Counter
}

// NewChatService returns a ChatService with the default sampling settings.
func NewChatService(c Completer, model string) *ChatService {
	return &ChatService{
		LLM:         c,
		Model:       model,
		Temperature: DefaultChatTemperature,
		MaxTokens:   DefaultChatMaxTokens,
	}
}

// Reply validates in and opens the streamed role-play completion.
//
// Errors:
//   - ErrInvalidInput (wrapped) for a missing or incomplete persona, a nil
//     transcript, or an unknown message role; no provider call is made.
//   - Whatever the Completer returns otherwise (llm.ErrMissingCredential,
//     *llm.UpstreamError, context errors).
func (s *ChatService) Reply(ctx context.Context, in ChatInput) (*llm.Stream, error) {
	ctx, span := otel.Tracer("services/ChatService").Start(ctx, "Reply",
		trace.WithAttributes(attribute.Int("messages", len(in.Messages))),
	)
	defer span.End()

	if err := validatePersona(in.Persona); err != nil {
		return nil, err
	}
	if in.Messages == nil {
		return nil, ErrMessagesRequired
	}
	if err := validateMessages(in.Messages); err != nil {
		return nil, err
	}

	history := prompt.TrimHistory(in.Messages, s.HistoryBudget, s.Count)
	span.SetAttributes(
		attribute.String("persona.name", in.Persona.Name),
		attribute.Int("messages.sent", len(history)),
	)

	return s.LLM.Stream(ctx, llm.Request{
		Model:       s.Model,
		System:      prompt.RolePlay(*in.Persona),
		Messages:    toWire(history),
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
}

// Mood classifies the finished reply for the emoji line.
func (s *ChatService) Mood(reply string) Mood {
	return DetectMood(reply)
}

// validatePersona wraps prompt.Validate failures as invalid input.
func validatePersona(p *domain.Persona) error {
	if err := prompt.Validate(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

// validateMessages rejects roles other than user and assistant.
func validateMessages(msgs []domain.Message) error {
	for i, m := range msgs {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			return fmt.Errorf("%w (message %d: %q)", ErrInvalidRole, i, m.Role)
		}
	}
	return nil
}

func toWire(msgs []domain.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: strings.TrimSpace(m.Content)})
	}
	return out
}
