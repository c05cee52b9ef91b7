package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// ---------- helpers ----------

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func sseChunk(text string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"delta": map[string]any{"content": text}}},
	})
	return "data: " + string(b) + "\n\n"
}

func jsonCompletion(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func drain(s *Stream) []string {
	var out []string
	for s.Next() {
		out = append(out, s.Text())
	}
	return out
}

// ---------- New / Ready ----------

func TestNew_ValidatesBaseURL(t *testing.T) {
	for _, base := range []string{"ftp://example.com", "http://", "::bad"} {
		c, err := New(Config{APIKey: "k", BaseURL: base})
		if !errors.Is(err, ErrClientInit) {
			t.Fatalf("%q: expected ErrClientInit, got %v", base, err)
		}
		if c == nil || !errors.Is(c.Ready(), ErrClientInit) {
			t.Fatalf("%q: client should report the init error from Ready", base)
		}
	}
}

func TestNew_DefaultsAndTrailingSlash(t *testing.T) {
	c, err := New(Config{APIKey: " k "})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.endpoint != DefaultBaseURL+"/chat/completions" {
		t.Fatalf("endpoint = %q", c.endpoint)
	}
	if c.apiKey != "k" || c.Ready() != nil {
		t.Fatalf("expected trimmed key and a ready client")
	}
}

func TestMissingCredential_NoNetworkCall(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !errors.Is(c.Ready(), ErrMissingCredential) {
		t.Fatalf("Ready should report the missing key")
	}
	if _, err := c.Stream(context.Background(), Request{Model: "m"}); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("Stream: expected ErrMissingCredential, got %v", err)
	}
	var v map[string]any
	if err := c.CompleteJSON(context.Background(), Request{Model: "m"}, &v); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("CompleteJSON: expected ErrMissingCredential, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Fatalf("expected no upstream calls, got %d", n)
	}
}

// ---------- Stream ----------

func TestStream_RelaysFragmentsInOrder(t *testing.T) {
	var got chatRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, ": keep-alive\n\n")
		io.WriteString(w, sseChunk("Hello"))
		io.WriteString(w, `data: {"choices":[{"delta":{"role":"assistant"}}]}`+"\n\n")
		io.WriteString(w, sseChunk(", world"))
		io.WriteString(w, "data: not-json\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
		io.WriteString(w, sseChunk("after done"))
	})

	s, err := c.Stream(context.Background(), Request{
		Model:       "gpt-4o-mini",
		System:      "be a client",
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		Temperature: 0.8,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer s.Close()

	frags := drain(s)
	if strings.Join(frags, "|") != "Hello|, world" {
		t.Fatalf("fragments = %q", frags)
	}
	if s.Err() != nil {
		t.Fatalf("clean end expected, got %v", s.Err())
	}
	if s.Next() {
		t.Fatalf("stream must not restart")
	}

	if !got.Stream || got.MaxTokens != 500 || got.Temperature != 0.8 || got.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected request body: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != RoleSystem || got.Messages[1].Content != "hi" {
		t.Fatalf("system message should lead the history: %+v", got.Messages)
	}
	if got.ResponseFormat != nil {
		t.Fatalf("stream requests must not ask for JSON mode")
	}
}

func TestStream_UpstreamStatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"type":"insufficient_quota","message":"You exceeded your current quota"}}`)
	})

	_, err := c.Stream(context.Background(), Request{Model: "m"})
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UpstreamError, got %T %v", err, err)
	}
	if ue.StatusCode != 429 || ue.Type != "insufficient_quota" || ue.Message != "You exceeded your current quota" {
		t.Fatalf("provider details should pass through unmodified: %+v", ue)
	}
	if !strings.Contains(ue.Detail, "insufficient_quota") {
		t.Fatalf("raw body should be kept as detail: %q", ue.Detail)
	}
}

func TestStream_ErrorEventMidStream(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseChunk("partial"))
		io.WriteString(w, `data: {"error":{"type":"server_error","message":"overloaded"}}`+"\n\n")
	})
	s, err := c.Stream(context.Background(), Request{Model: "m"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer s.Close()

	if frags := drain(s); len(frags) != 1 || frags[0] != "partial" {
		t.Fatalf("fragments = %q", frags)
	}
	var ue *UpstreamError
	if !errors.As(s.Err(), &ue) || ue.Message != "overloaded" {
		t.Fatalf("expected upstream error event, got %v", s.Err())
	}
}

func TestStream_CancelStopsDelivery(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fl := w.(http.Flusher)
		io.WriteString(w, sseChunk("one"))
		io.WriteString(w, sseChunk("two"))
		fl.Flush()
		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		io.WriteString(w, sseChunk("three"))
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := c.Stream(ctx, Request{Model: "m"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer s.Close()

	var got []string
	for s.Next() {
		got = append(got, s.Text())
		if len(got) == 2 {
			cancel()
		}
	}
	if len(got) != 2 {
		t.Fatalf("expected exactly the 2 delivered fragments, got %q", got)
	}
	if !errors.Is(s.Err(), context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", s.Err())
	}
}

func TestStream_TimeoutIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Stream(context.Background(), Request{Model: "m"})
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Type != "timeout" {
		t.Fatalf("expected timeout UpstreamError, got %T %v", err, err)
	}
}

func TestStream_CloseIsIdempotent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, sseChunk("x"))
	})
	s, err := c.Stream(context.Background(), Request{Model: "m"})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_ = s.Close()
	if s.Next() {
		t.Fatalf("closed stream must not yield")
	}
}

// ---------- CompleteJSON ----------

func TestCompleteJSON_DecodesAndUsesJSONMode(t *testing.T) {
	var got chatRequest
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, jsonCompletion(`{"score": 82, "strengths": ["empathy"]}`))
	})

	var out struct {
		Score     int      `json:"score"`
		Strengths []string `json:"strengths"`
	}
	if err := c.CompleteJSON(context.Background(), Request{Model: "m", System: "sys", Temperature: 0.7}, &out); err != nil {
		t.Fatalf("CompleteJSON: %v", err)
	}
	if out.Score != 82 || len(out.Strengths) != 1 {
		t.Fatalf("unexpected decode: %+v", out)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" || got.Stream {
		t.Fatalf("expected json_object non-streaming request: %+v", got)
	}
}

func TestCompleteJSON_RepairsOnce(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, jsonCompletion("{\"score\": 75, \"recommendation\": \"Ask more questions\",}"))
	})
	var out map[string]any
	if err := c.CompleteJSON(context.Background(), Request{Model: "m"}, &out); err != nil {
		t.Fatalf("trailing comma should be repaired, got %v", err)
	}
	if out["score"].(float64) != 75 {
		t.Fatalf("unexpected repaired value: %v", out)
	}
}

func TestCompleteJSON_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty choices": `{"choices": []}`,
		"empty content": jsonCompletion("   "),
		"wrong shape":   jsonCompletion(`["not", "an", "object"]`),
		"not json body": `<html>gateway</html>`,
	}
	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})
			var out map[string]any
			err := c.CompleteJSON(context.Background(), Request{Model: "m"}, &out)
			var me *MalformedError
			if !errors.As(err, &me) {
				t.Fatalf("expected *MalformedError, got %T %v", err, err)
			}
		})
	}
}

func TestCompleteJSON_UpstreamError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, "Incorrect API key provided")
	})
	var out map[string]any
	err := c.CompleteJSON(context.Background(), Request{Model: "m"}, &out)
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != 401 || ue.Message != "Incorrect API key provided" {
		t.Fatalf("expected 401 passthrough, got %v", err)
	}
}

func TestCompleteJSON_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close() // nothing listening any more

	c, err := New(Config{APIKey: "k", BaseURL: base})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out map[string]any
	err = c.CompleteJSON(context.Background(), Request{Model: "m"}, &out)
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != 0 || ue.Message == "" {
		t.Fatalf("expected transport UpstreamError, got %T %v", err, err)
	}
}

// ---------- errors ----------

func TestMapHTTPError_Fallbacks(t *testing.T) {
	err := mapHTTPError(http.StatusBadGateway, nil)
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("empty body should fall back to status text: %v", err)
	}
	if got := (&UpstreamError{StatusCode: 500, Type: "t", Message: "m"}).Error(); got != "upstream 500 t: m" {
		t.Fatalf("Error() = %q", got)
	}
	if got := (&UpstreamError{Message: "dial"}).Error(); got != "upstream: dial" {
		t.Fatalf("Error() = %q", got)
	}
	me := &MalformedError{Err: fmt.Errorf("boom")}
	if !strings.Contains(me.Error(), "boom") || errors.Unwrap(me) == nil {
		t.Fatalf("MalformedError should expose its cause")
	}
}
