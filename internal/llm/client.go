// Package llm is a small client for OpenAI-compatible chat completion APIs.
//
// It offers the two request shapes the coach needs: a streamed completion
// whose text fragments are consumed through an iterator (Stream), and a
// single-shot JSON-mode completion decoded into a caller value
// (CompleteJSON). Provider failures surface as *UpstreamError, unusable JSON
// as *MalformedError, and a missing API key as ErrMissingCredential before any
// network I/O.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Wire roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// maxResponseBody caps the size of a non-streamed response body.
const maxResponseBody = 4 << 20

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each request, including the whole life of a stream.
	// Zero means no client-side deadline.
	Timeout time.Duration
	// HTTPClient overrides the transport; nil uses a default client.
	HTTPClient *http.Client
}

// Message is one chat message on the wire.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion request. System, when set, is sent as the
// first message.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client talks to one provider endpoint. It is safe for concurrent use.
type Client struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
	http     *http.Client
	initErr  error
}

// New builds a client from cfg. A blank API key is accepted here and reported
// per call as ErrMissingCredential.
//
// When the configuration is unusable New returns an error wrapping
// ErrClientInit together with a non-nil client whose Ready and request methods
// report the same error, so a server can keep running and answer with it.
func New(cfg Config) (*Client, error) {
	c := &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		timeout: cfg.Timeout,
		http:    cfg.HTTPClient,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	switch {
	case err != nil:
		c.initErr = fmt.Errorf("%w: base url: %v", ErrClientInit, err)
	case u.Scheme != "http" && u.Scheme != "https":
		c.initErr = fmt.Errorf("%w: base url %q must be http or https", ErrClientInit, base)
	case u.Host == "":
		c.initErr = fmt.Errorf("%w: base url %q has no host", ErrClientInit, base)
	}
	c.endpoint = base + "/chat/completions"
	return c, c.initErr
}

// Ready reports whether requests can be attempted: ErrClientInit (wrapped)
// when construction failed, ErrMissingCredential when no key is configured,
// nil otherwise.
func (c *Client) Ready() error {
	if c.initErr != nil {
		return c.initErr
	}
	if c.apiKey == "" {
		return ErrMissingCredential
	}
	return nil
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

func (r Request) wire() chatRequest {
	msgs := make([]Message, 0, len(r.Messages)+1)
	if r.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: r.System})
	}
	msgs = append(msgs, r.Messages...)
	return chatRequest{
		Model:       r.Model,
		Messages:    msgs,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	}
}

// Stream opens a streamed completion. The returned Stream must be closed.
// The connection stays bound to ctx: cancelling it ends the stream at the
// next fragment boundary.
func (c *Client) Stream(ctx context.Context, req Request) (*Stream, error) {
	start := time.Now()
	if err := c.Ready(); err != nil {
		observe(modeStream, outcomeConfig, start)
		return nil, err
	}

	ctx, span := otel.Tracer("llm/Client").Start(ctx, "Stream",
		trace.WithAttributes(
			attribute.String("llm.model", req.Model),
			attribute.Int("llm.messages", len(req.Messages)),
		),
	)

	body := req.wire()
	body.Stream = true

	reqCtx, cancel := c.withTimeout(ctx)
	resp, err := c.post(reqCtx, body)
	if err != nil {
		err = transportError(ctx, reqCtx, err)
		cancel()
		endSpan(span, err)
		observe(modeStream, outcomeOf(err), start)
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetail))
		_ = resp.Body.Close()
		cancel()
		err = mapHTTPError(resp.StatusCode, raw)
		endSpan(span, err)
		observe(modeStream, outcomeUpstream, start)
		return nil, err
	}

	return newStream(ctx, reqCtx, cancel, resp.Body, func(err error) {
		endSpan(span, err)
		observe(modeStream, outcomeOf(err), start)
	}), nil
}

// CompleteJSON runs a JSON-mode completion and decodes the returned object
// into v. Content that is not valid JSON gets one repair pass; if it still
// does not decode the error is a *MalformedError carrying the raw content.
func (c *Client) CompleteJSON(ctx context.Context, req Request, v any) error {
	start := time.Now()
	if err := c.Ready(); err != nil {
		observe(modeJSON, outcomeConfig, start)
		return err
	}

	ctx, span := otel.Tracer("llm/Client").Start(ctx, "CompleteJSON",
		trace.WithAttributes(
			attribute.String("llm.model", req.Model),
			attribute.Int("llm.messages", len(req.Messages)),
		),
	)
	err := c.completeJSON(ctx, req, v)
	endSpan(span, err)
	observe(modeJSON, outcomeOf(err), start)
	return err
}

func (c *Client) completeJSON(ctx context.Context, req Request, v any) error {
	body := req.wire()
	body.ResponseFormat = &responseFormat{Type: "json_object"}

	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.post(reqCtx, body)
	if err != nil {
		return transportError(ctx, reqCtx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return transportError(ctx, reqCtx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return mapHTTPError(resp.StatusCode, raw)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return &MalformedError{Raw: clip(string(raw), maxErrorDetail), Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Choices) == 0 {
		return &MalformedError{Raw: clip(string(raw), maxErrorDetail), Err: errors.New("no choices in response")}
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return &MalformedError{Err: errors.New("empty content")}
	}
	return decodeContent(ctx, content, v)
}

// decodeContent unmarshals content into v, repairing it once when needed.
func decodeContent(ctx context.Context, content string, v any) error {
	err := json.Unmarshal([]byte(content), v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		// Well-formed JSON of the wrong shape; repair cannot help.
		return &MalformedError{Raw: content, Err: err}
	}

	fixed, rerr := jsonrepair.JSONRepair(content)
	if rerr != nil {
		return &MalformedError{Raw: content, Err: err}
	}
	if err2 := json.Unmarshal([]byte(fixed), v); err2 != nil {
		return &MalformedError{Raw: content, Err: err2}
	}
	zerolog.Ctx(ctx).Debug().Int("raw_len", len(content)).Msg("llm: repaired malformed JSON completion")
	return nil
}

func (c *Client) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	return c.http.Do(httpReq)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

// transportError classifies a failed round trip. Caller cancellation is
// returned as the caller's context error; everything else, including the
// client deadline, becomes an *UpstreamError.
func transportError(parent, reqCtx context.Context, err error) error {
	if perr := parent.Err(); perr != nil {
		return perr
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &UpstreamError{Type: "timeout", Message: "completion request timed out", Detail: err.Error()}
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue
	}
	return &UpstreamError{Message: err.Error()}
}

func outcomeOf(err error) string {
	var me *MalformedError
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	case errors.As(err, &me):
		return outcomeMalformed
	default:
		return outcomeUpstream
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
