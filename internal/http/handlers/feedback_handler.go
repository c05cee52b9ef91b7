// Feedback HTTP handlers.
//
//   - POST /feedback-realtime  (score the advisor's latest message)
//   - POST /feedback           (review a whole conversation)
//
// Both call the completion provider in JSON mode and return the validated
// feedback object. Nothing is stored.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/services"
)

// RealtimeFeedbackRequest is the JSON payload of POST /feedback-realtime.
type RealtimeFeedbackRequest struct {
	// UserMessage is the advisor message to score.
	UserMessage string `json:"userMessage" example:"What worries you most about investing?"`
	// AssistantMessage is the persona's reply to it; may be empty.
	AssistantMessage    string           `json:"assistantMessage" example:"Honestly, losing what I've saved."`
	ConversationHistory []domain.Message `json:"conversationHistory"`
	Persona             *domain.Persona  `json:"persona"`
}

// MessageFeedbackResponse wraps a per-message score.
type MessageFeedbackResponse struct {
	Feedback *domain.MessageFeedback `json:"feedback"`
}

// ConversationPayload is a finished conversation to review.
type ConversationPayload struct {
	PersonaName string           `json:"personaName" example:"Dana"`
	Persona     *domain.Persona  `json:"persona,omitempty"`
	Language    string           `json:"language,omitempty" example:"English"`
	Messages    []domain.Message `json:"messages"`
}

// ConversationFeedbackRequest is the JSON payload of POST /feedback.
type ConversationFeedbackRequest struct {
	Conversation *ConversationPayload `json:"conversation"`
}

// ConversationFeedbackResponse wraps a conversation review.
type ConversationFeedbackResponse struct {
	Feedback *domain.ConversationFeedback `json:"feedback"`
}

// FeedbackRealtime godoc
// @ID          feedbackRealtime
// @Summary     Score the latest advisor message
// @Description Rates the advisor's newest message against the persona: score, strengths, improvements, a recommendation and penalties. Missing fields in the model output are filled with defaults.
// @Tags        Feedback
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RealtimeFeedbackRequest  true  "Message to score"
//
// @Success     200  {object}  handlers.MessageFeedbackResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Blank message, invalid persona or role"
// @Failure     500  {object}  handlers.ErrorResponse  "configuration_error, upstream_error or malformed_response"
// @Router      /feedback-realtime [post]
func (h *Handlers) FeedbackRealtime(c *gin.Context) {
	var req RealtimeFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Persona == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "persona is required")
		return
	}

	fb, err := h.feedbackSvc.ScoreMessage(c.Request.Context(), services.MessageFeedbackInput{
		UserMessage:      req.UserMessage,
		AssistantMessage: req.AssistantMessage,
		History:          req.ConversationHistory,
		Persona:          req.Persona,
	})
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, MessageFeedbackResponse{Feedback: fb})
}

// ConversationFeedback godoc
// @ID          conversationFeedback
// @Summary     Review a finished conversation
// @Description Produces the end-of-conversation report: overall score, tone, customer satisfaction and the six category scores, written in the conversation language.
// @Tags        Feedback
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ConversationFeedbackRequest  true  "Conversation to review"
//
// @Success     200  {object}  handlers.ConversationFeedbackResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Empty transcript or missing persona name"
// @Failure     500  {object}  handlers.ErrorResponse  "configuration_error, upstream_error or malformed_response"
// @Router      /feedback [post]
func (h *Handlers) ConversationFeedback(c *gin.Context) {
	var req ConversationFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Conversation == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation is required")
		return
	}

	conv := req.Conversation
	lang := ""
	if strings.TrimSpace(conv.Language) != "" {
		lang = services.CanonicalLanguage(conv.Language)
	}
	fb, err := h.feedbackSvc.ReviewConversation(c.Request.Context(), services.ConversationInput{
		PersonaName: conv.PersonaName,
		Persona:     conv.Persona,
		Language:    lang,
		Messages:    conv.Messages,
	})
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ConversationFeedbackResponse{Feedback: fb})
}
