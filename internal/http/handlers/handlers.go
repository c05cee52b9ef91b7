// Package handlers exposes the coaching API over HTTP.
//
// Handlers are transport-thin: they bind and check the request shape, call
// the application services, and translate results and errors into HTTP
// responses. The services validate the content.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/llm"
	"github.com/tbourn/go-advisor-coach/internal/services"
	"github.com/tbourn/go-advisor-coach/internal/utils"
)

//
// Service contracts (context-aware)
//

// ChatService produces streamed persona replies.
type ChatService interface {
	// Reply opens the in-character completion for the transcript.
	Reply(ctx context.Context, in services.ChatInput) (*llm.Stream, error)
	// Mood classifies a finished reply for the emoji line.
	Mood(reply string) services.Mood
}

// FeedbackService scores advisor messages and whole conversations.
type FeedbackService interface {
	ScoreMessage(ctx context.Context, in services.MessageFeedbackInput) (*domain.MessageFeedback, error)
	ReviewConversation(ctx context.Context, in services.ConversationInput) (*domain.ConversationFeedback, error)
}

// PersonaService manages the user's persona library.
type PersonaService interface {
	Create(ctx context.Context, userID string, in domain.Persona) (*domain.Persona, error)
	Get(ctx context.Context, userID, id string) (*domain.Persona, error)
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Persona, int64, error)
	Delete(ctx context.Context, userID, id string) error
	Templates() []domain.Persona
}

// SessionService stores finished conversations for review.
type SessionService interface {
	End(ctx context.Context, userID string, in services.EndInput) (*domain.ConversationSession, error)
	Get(ctx context.Context, userID, id string) (*domain.ConversationSession, error)
	Review(ctx context.Context, userID, id string) (*domain.ConversationFeedback, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints.
type Handlers struct {
	chatSvc     ChatService
	feedbackSvc FeedbackService
	personaSvc  PersonaService
	sessionSvc  SessionService

	// IdempotencyTTL is how long a persona Idempotency-Key is remembered.
	IdempotencyTTL time.Duration
}

// New constructs a Handlers bound to the given services.
func New(chat ChatService, feedback FeedbackService, personas PersonaService, sessions SessionService) *Handlers {
	return &Handlers{
		chatSvc:        chat,
		feedbackSvc:    feedback,
		personaSvc:     personas,
		sessionSvc:     sessions,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses page and page_size, defaulting to 1 and 20 and
// capping page_size at 100.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}
