// Package services – FeedbackService
//
// This file implements FeedbackService, which asks the completion provider
// for coaching scores in JSON mode and validates the returned object at the
// boundary. Fields that are missing or of the wrong type are replaced with
// safe defaults and logged; an unparseable response is an error
// (llm.MalformedError) rather than a partial result.
//
// Two shapes are produced:
//   - ScoreMessage: MessageFeedback for the advisor's latest message.
//   - ReviewConversation: the end-of-conversation ConversationFeedback.
//
// There is no retry, caching, or deduplication of identical requests.
package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/llm"
	"github.com/tbourn/go-advisor-coach/internal/playbook"
	"github.com/tbourn/go-advisor-coach/internal/prompt"
	"github.com/tbourn/go-advisor-coach/internal/utils"
)

// Feedback defaults applied when the model omits a field.
const (
	DefaultScore          = 70
	DefaultRecommendation = "Continue building rapport with the client."
	DefaultFeedbackTemp   = 0.7

	maxListItems     = 3
	maxReviewItems   = 4
	maxPenaltyPoints = 30
)

// MessageFeedbackInput is a request to score the advisor's latest message.
// AssistantMessage is the persona's reply to it and may be empty when the
// reply was aborted.
type MessageFeedbackInput struct {
	UserMessage      string
	AssistantMessage string
	History          []domain.Message
	Persona          *domain.Persona
}

// ConversationInput is a request to review a finished conversation.
// Persona is optional; PersonaName is not. An empty Language falls back to
// the persona's.
type ConversationInput struct {
	PersonaName string
	Persona     *domain.Persona
	Language    string
	Messages    []domain.Message
}

// FeedbackService produces coaching feedback.
type FeedbackService struct {
	LLM         Completer
	Model       string
	Temperature float64

	// Playbook supplies reference tips for per-message scoring; nil disables.
	Playbook *playbook.Playbook
	// GuidanceK is the number of tips attached to a prompt.
	GuidanceK int
}

// NewFeedbackService returns a FeedbackService with the default temperature
// and two playbook tips per message.
func NewFeedbackService(c Completer, model string, pb *playbook.Playbook) *FeedbackService {
	return &FeedbackService{
		LLM:         c,
		Model:       model,
		Temperature: DefaultFeedbackTemp,
		Playbook:    pb,
		GuidanceK:   2,
	}
}

// ScoreMessage evaluates in.UserMessage against the persona.
//
// Errors:
//   - ErrInvalidInput (wrapped) for a blank advisor message, an incomplete
//     persona, or an unknown role in the history.
//   - llm.ErrMissingCredential, *llm.UpstreamError, *llm.MalformedError from
//     the provider call.
func (s *FeedbackService) ScoreMessage(ctx context.Context, in MessageFeedbackInput) (*domain.MessageFeedback, error) {
	ctx, span := otel.Tracer("services/FeedbackService").Start(ctx, "ScoreMessage",
		trace.WithAttributes(attribute.Int("history", len(in.History))),
	)
	defer span.End()

	advisor := strings.TrimSpace(in.UserMessage)
	if advisor == "" {
		return nil, ErrEmptyAdvisorMessage
	}
	if err := validatePersona(in.Persona); err != nil {
		return nil, err
	}
	if err := validateMessages(in.History); err != nil {
		return nil, err
	}

	reply := strings.TrimSpace(in.AssistantMessage)
	guidance := s.Playbook.Guidance(advisor+" "+reply, s.GuidanceK)
	span.SetAttributes(attribute.Int("guidance", len(guidance)))

	p := prompt.Coaching(*in.Persona, advisor, reply, guidance)
	raw := map[string]any{}
	if err := s.LLM.CompleteJSON(ctx, s.request(p), &raw); err != nil {
		return nil, err
	}

	fb := normalizeMessageFeedback(ctx, raw)
	feedbackScore.WithLabelValues(kindMessage).Observe(float64(fb.Score))
	return fb, nil
}

// ReviewConversation evaluates the whole transcript.
//
// Errors:
//   - ErrInvalidInput (wrapped) for an empty transcript, a blank persona
//     name, or an unknown role.
//   - Provider errors as for ScoreMessage.
func (s *FeedbackService) ReviewConversation(ctx context.Context, in ConversationInput) (*domain.ConversationFeedback, error) {
	ctx, span := otel.Tracer("services/FeedbackService").Start(ctx, "ReviewConversation",
		trace.WithAttributes(attribute.Int("messages", len(in.Messages))),
	)
	defer span.End()

	if len(in.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}
	name := strings.TrimSpace(in.PersonaName)
	if name == "" && in.Persona != nil {
		name = strings.TrimSpace(in.Persona.Name)
	}
	if name == "" {
		return nil, wrapInvalid("personaName is required")
	}
	if err := validateMessages(in.Messages); err != nil {
		return nil, err
	}

	p := prompt.ConversationReview(name, in.Persona, in.Language, in.Messages)
	raw := map[string]any{}
	if err := s.LLM.CompleteJSON(ctx, s.request(p), &raw); err != nil {
		return nil, err
	}

	fb := normalizeConversationFeedback(ctx, raw)
	feedbackScore.WithLabelValues(kindConversation).Observe(float64(fb.OverallScore))
	return fb, nil
}

func (s *FeedbackService) request(p prompt.Prompt) llm.Request {
	return llm.Request{
		Model:       s.Model,
		System:      p.System,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: p.User}},
		Temperature: s.Temperature,
	}
}

// ---- boundary validation ----

// fields reads a decoded JSON object and logs every field it has to default.
type fields struct {
	log    *zerolog.Logger
	prefix string
	m      map[string]any
}

func newFields(ctx context.Context, m map[string]any) fields {
	return fields{log: zerolog.Ctx(ctx), m: m}
}

func (f fields) sub(key string) fields {
	obj, ok := f.m[key].(map[string]any)
	if !ok {
		if _, present := f.m[key]; present {
			f.defaulted(key, "not an object")
		}
		obj = map[string]any{}
	}
	return fields{log: f.log, prefix: f.prefix + key + ".", m: obj}
}

func (f fields) defaulted(key, why string) {
	f.log.Debug().Str("field", f.prefix+key).Str("reason", why).Msg("feedback field defaulted")
}

func (f fields) score(key string, lo, hi, def int) int {
	v, ok := f.m[key]
	if !ok {
		f.defaulted(key, "missing")
		return def
	}
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		f.defaulted(key, "not a number")
		return def
	}
	return utils.RoundScore(n, lo, hi)
}

func (f fields) str(key, def string) string {
	v, ok := f.m[key]
	if !ok {
		f.defaulted(key, "missing")
		return def
	}
	s, ok := v.(string)
	if !ok {
		f.defaulted(key, "not a string")
		return def
	}
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func (f fields) flag(key string) bool {
	v, ok := f.m[key]
	if !ok {
		f.defaulted(key, "missing")
		return false
	}
	b, ok := v.(bool)
	if !ok {
		f.defaulted(key, "not a boolean")
		return false
	}
	return b
}

// list returns the non-blank string entries of key, at most limit of them.
// Non-string entries are dropped. The result is never nil.
func (f fields) list(key string, limit int) []string {
	out := []string{}
	v, ok := f.m[key]
	if !ok {
		f.defaulted(key, "missing")
		return out
	}
	items, ok := v.([]any)
	if !ok {
		f.defaulted(key, "not an array")
		return out
	}
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

func normalizeMessageFeedback(ctx context.Context, raw map[string]any) *domain.MessageFeedback {
	f := newFields(ctx, raw)
	pen := f.sub("penalties")
	return &domain.MessageFeedback{
		Score:          f.score("score", 0, 100, DefaultScore),
		Strengths:      f.list("strengths", maxListItems),
		Improvements:   f.list("improvements", maxListItems),
		Recommendation: f.str("recommendation", DefaultRecommendation),
		Penalties: &domain.Penalties{
			OffTopic:       pen.flag("offTopic"),
			TooShort:       pen.flag("tooShort"),
			Unprofessional: pen.flag("unprofessional"),
			PenaltyPoints:  pen.score("penaltyPoints", 0, maxPenaltyPoints, 0),
		},
	}
}

func normalizeConversationFeedback(ctx context.Context, raw map[string]any) *domain.ConversationFeedback {
	f := newFields(ctx, raw)
	tone := f.sub("conversationTone")
	sat := f.sub("customerSatisfaction")

	return &domain.ConversationFeedback{
		OverallScore:        f.score("overallScore", 0, 100, DefaultScore),
		ConversationSummary: f.str("conversationSummary", ""),
		ConversationTone: domain.ConversationTone{
			AdvisorTone: tone.str("advisorTone", ""),
			ClientTone:  tone.str("clientTone", ""),
			Overall:     tone.str("overall", ""),
		},
		CustomerSatisfaction: domain.CustomerSatisfaction{
			Score:      sat.score("score", 0, 100, DefaultScore),
			Indicators: sat.list("indicators", maxReviewItems),
			Assessment: sat.str("assessment", ""),
		},
		Categories:   normalizeCategories(f),
		Strengths:    f.list("strengths", maxReviewItems),
		Improvements: f.list("improvements", maxReviewItems),
		Summary:      f.str("summary", ""),
	}
}

// normalizeCategories matches model categories to the fixed names
// case-insensitively and returns all six in display order. Unknown names
// are dropped; missing ones get the defaults.
func normalizeCategories(f fields) []domain.CategoryScore {
	byName := map[string]fields{}
	if items, ok := f.m["categories"].([]any); ok {
		for i, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			name, _ := obj["name"].(string)
			key := strings.ToLower(strings.TrimSpace(name))
			if _, dup := byName[key]; key == "" || dup {
				continue
			}
			byName[key] = fields{log: f.log, prefix: "categories[" + strconv.Itoa(i) + "].", m: obj}
		}
	} else {
		f.defaulted("categories", "missing or not an array")
	}

	out := make([]domain.CategoryScore, 0, len(domain.FeedbackCategories))
	for _, name := range domain.FeedbackCategories {
		c, ok := byName[strings.ToLower(name)]
		if !ok {
			f.defaulted("categories."+name, "missing")
			out = append(out, domain.CategoryScore{Name: name, Score: DefaultScore, Trend: domain.TrendNeutral})
			continue
		}
		out = append(out, domain.CategoryScore{
			Name:     name,
			Score:    c.score("score", 0, 100, DefaultScore),
			Feedback: c.str("feedback", ""),
			Trend:    trendOf(c),
		})
	}
	return out
}

func trendOf(c fields) string {
	switch t := strings.ToLower(c.str("trend", "")); t {
	case domain.TrendUp, domain.TrendDown, domain.TrendNeutral:
		return t
	default:
		return domain.TrendNeutral
	}
}
