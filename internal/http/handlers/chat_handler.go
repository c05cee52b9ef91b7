// Chat HTTP handler.
//
//   - POST /chat  (streamed persona reply)
//
// The reply is written with the line protocol of internal/stream as it
// arrives from the provider. Errors found before the first byte produce the
// JSON error envelope. Once streaming has started the status is already
// committed, so a failure aborts the connection instead and the client sees
// a body without the finish line.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/http/middleware"
	"github.com/tbourn/go-advisor-coach/internal/services"
	"github.com/tbourn/go-advisor-coach/internal/stream"
)

// HeaderDataStream marks responses that use the line protocol.
const HeaderDataStream = "X-Vercel-AI-Data-Stream"

// ChatRequest is the JSON payload of POST /chat. Messages must be present
// and may be empty; the last entry is the advisor's newest message.
type ChatRequest struct {
	Messages []domain.Message `json:"messages"`
	Persona  *domain.Persona  `json:"persona"`
}

// PostChat godoc
// @ID          postChat
// @Summary     Stream the persona's reply
// @Description Plays the persona as the client and streams the reply. Each line is "<tag>:<json>": "0" carries a text fragment, "emoji" the client's mood, and a final "d" line marks a clean end. A body without the "d" line was cut short.
// @Tags        Chat
// @Accept      json
// @Produce     plain
//
// @Param       body  body  handlers.ChatRequest  true  "Transcript and persona"
//
// @Success     200  {string}  string  "0:\"Hello\"\nemoji:\"🙂\"\nd:{\"finishReason\":\"stop\"}"
// @Header      200  {string}  X-Vercel-AI-Data-Stream  "v1"
// @Header      200  {string}  Content-Language         "BCP-47 tag of the persona language"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid persona or messages"
// @Failure     500  {object}  handlers.ErrorResponse  "configuration_error, client_init_failed or upstream_error"
// @Router      /chat [post]
func (h *Handlers) PostChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.Persona == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "persona is required")
		return
	}

	ctx := c.Request.Context()
	src, err := h.chatSvc.Reply(ctx, services.ChatInput{Persona: req.Persona, Messages: req.Messages})
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	defer src.Close()

	hdr := c.Writer.Header()
	hdr.Set("Content-Type", "text/plain; charset=utf-8")
	hdr.Set(HeaderDataStream, "v1")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("X-Accel-Buffering", "no")
	if tag, ok := services.LanguageTag(req.Persona.LanguageOrDefault()); ok {
		hdr.Set("Content-Language", tag.String())
	}
	c.Status(http.StatusOK)

	res, err := stream.Relay(ctx, c.Writer, src)
	if err == nil {
		err = stream.WriteEmoji(c.Writer, h.chatSvc.Mood(res.Text).Emoji())
	}
	if err == nil {
		err = stream.WriteFinish(c.Writer)
	}
	if err == nil {
		return
	}

	lg := middleware.LoggerFrom(c)
	switch {
	case ctx.Err() != nil:
		lg.Info().Int("fragments", res.Fragments).Msg("client went away mid-reply")
		middleware.StreamAborted(c)
	case !c.Writer.Written():
		for _, k := range []string{"Content-Type", HeaderDataStream, "Content-Language", "X-Accel-Buffering"} {
			hdr.Del(k)
		}
		failService(c, err, ErrCodeUpstream)
	default:
		lg.Error().Err(err).
			Int("fragments", res.Fragments).
			Int("bytes", res.Bytes).
			Msg("reply stream failed")
		middleware.StreamAborted(c)
		panic(http.ErrAbortHandler)
	}
}
