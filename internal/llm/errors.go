package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMissingCredential is returned before any network call when no API
	// key is configured.
	ErrMissingCredential = errors.New("OPENAI_API_KEY is not configured")

	// ErrClientInit reports that the client could not be constructed from
	// its configuration. The concrete error wraps the cause.
	ErrClientInit = errors.New("completion client initialization failed")
)

// UpstreamError is a failed provider call: a non-2xx response, a transport
// failure, or the request deadline expiring. Message is the provider's own
// message when one was returned.
type UpstreamError struct {
	StatusCode int
	Type       string
	Message    string
	Detail     string
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode > 0 && e.Type != "":
		return fmt.Sprintf("upstream %d %s: %s", e.StatusCode, e.Type, e.Message)
	case e.StatusCode > 0:
		return fmt.Sprintf("upstream %d: %s", e.StatusCode, e.Message)
	default:
		return "upstream: " + e.Message
	}
}

// MalformedError is returned when the provider answered successfully but the
// content is not the JSON object that was asked for, even after repair.
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return "malformed completion: " + e.Err.Error()
	}
	return "malformed completion"
}

func (e *MalformedError) Unwrap() error { return e.Err }

// maxErrorDetail caps how much of a provider error body is kept as Detail.
const maxErrorDetail = 4 << 10

// mapHTTPError converts a non-2xx provider response into an *UpstreamError,
// pulling type and message from the OpenAI error envelope when present.
func mapHTTPError(status int, body []byte) error {
	var envelope struct {
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	ue := &UpstreamError{StatusCode: status, Detail: clip(string(body), maxErrorDetail)}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		ue.Type = envelope.Error.Type
		ue.Message = envelope.Error.Message
	}
	if ue.Message == "" {
		ue.Message = clip(strings.TrimSpace(string(body)), 512)
	}
	if ue.Message == "" {
		ue.Message = http.StatusText(status)
	}
	return ue
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
