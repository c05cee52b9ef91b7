// Conversation hand-off handlers.
//
//   - POST /conversations                (store a finished chat)
//   - GET  /conversations/{id}           (read it back)
//   - POST /conversations/{id}/feedback  (review the stored chat)
//
// A stored conversation is private to its user and expires after the
// configured session TTL.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/http/middleware"
	"github.com/tbourn/go-advisor-coach/internal/services"
)

// EndConversationRequest is the JSON payload of POST /conversations. With
// personaId the stored persona is used; otherwise persona is taken inline.
type EndConversationRequest struct {
	PersonaID   string           `json:"personaId,omitempty" format:"uuid"`
	PersonaName string           `json:"personaName" example:"Dana"`
	Persona     *domain.Persona  `json:"persona,omitempty"`
	Language    string           `json:"language,omitempty" example:"Thai"`
	Messages    []domain.Message `json:"messages"`
}

// SessionResponse wraps a stored conversation.
type SessionResponse struct {
	Session *domain.ConversationSession `json:"session"`
}

// EndConversation godoc
// @ID          endConversation
// @Summary     Store a finished conversation
// @Description Saves the transcript, persona and feedback language so the review page can fetch them by id.
// @Tags        Conversations
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.EndConversationRequest  true  "Finished conversation"
//
// @Success     201  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Empty transcript, bad role or missing persona name"
// @Failure     404  {object}  handlers.ErrorResponse  "Persona not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations [post]
func (h *Handlers) EndConversation(c *gin.Context) {
	var req EndConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	rec, err := h.sessionSvc.End(c.Request.Context(), middleware.UserID(c), services.EndInput{
		PersonaID:   req.PersonaID,
		PersonaName: req.PersonaName,
		Persona:     req.Persona,
		Language:    req.Language,
		Messages:    req.Messages,
	})
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusCreated, SessionResponse{Session: rec})
}

// GetConversation godoc
// @ID          getConversation
// @Summary     Get a stored conversation
// @Tags        Conversations
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Conversation ID (UUID)" format(uuid)
//
// @Success     200  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown or expired conversation"
// @Router      /conversations/{id} [get]
func (h *Handlers) GetConversation(c *gin.Context) {
	id, valid := sessionID(c)
	if !valid {
		return
	}
	rec, err := h.sessionSvc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, SessionResponse{Session: rec})
}

// ReviewConversation godoc
// @ID          reviewConversation
// @Summary     Review a stored conversation
// @Description Runs the end-of-conversation review on a stored transcript. The record stays available until it expires.
// @Tags        Conversations
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Conversation ID (UUID)" format(uuid)
//
// @Success     200  {object}  handlers.ConversationFeedbackResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown or expired conversation"
// @Failure     500  {object}  handlers.ErrorResponse  "configuration_error, upstream_error or malformed_response"
// @Router      /conversations/{id}/feedback [post]
func (h *Handlers) ReviewConversation(c *gin.Context) {
	id, valid := sessionID(c)
	if !valid {
		return
	}
	fb, err := h.sessionSvc.Review(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ConversationFeedbackResponse{Feedback: fb})
}

func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return "", false
	}
	return id, true
}
