package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/llm"
	"github.com/tbourn/go-advisor-coach/internal/services"
)

func TestFeedbackRealtime_OK(t *testing.T) {
	fb := &stubFeedback{msg: &domain.MessageFeedback{
		Score:          82,
		Strengths:      []string{"Asked about goals"},
		Improvements:   []string{},
		Recommendation: "Tie the fund to her tuition goal.",
		Penalties:      &domain.Penalties{},
	}}
	r := newEngine(New(nil, fb, nil, nil))

	w := doJSON(t, r, "POST", "/feedback-realtime", map[string]any{
		"userMessage":         "What are you saving for?",
		"assistantMessage":    "My daughter's tuition.",
		"conversationHistory": []domain.Message{{Role: domain.RoleUser, Content: "Hi"}},
		"persona":             testPersona(),
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var got MessageFeedbackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Feedback == nil || got.Feedback.Score != 82 {
		t.Fatalf("unexpected feedback: %+v", got.Feedback)
	}
	if fb.msgIn.UserMessage != "What are you saving for?" || len(fb.msgIn.History) != 1 || fb.msgIn.Persona.Name != "Dana" {
		t.Fatalf("service input not passed through: %+v", fb.msgIn)
	}
}

func TestFeedbackRealtime_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   any
		err    error
		status int
		code   string
	}{
		{"bad json", "{", nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"no persona", map[string]any{"userMessage": "hi"}, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"blank message", map[string]any{"persona": testPersona()}, services.ErrEmptyAdvisorMessage, http.StatusBadRequest, ErrCodeBadRequest},
		{"no key", map[string]any{"persona": testPersona(), "userMessage": "hi"}, llm.ErrMissingCredential, http.StatusInternalServerError, ErrCodeConfiguration},
		{"garbage", map[string]any{"persona": testPersona(), "userMessage": "hi"}, &llm.MalformedError{Raw: "nope"}, http.StatusInternalServerError, ErrCodeMalformed},
	}
	for _, tc := range cases {
		r := newEngine(New(nil, &stubFeedback{err: tc.err}, nil, nil))
		w := doJSON(t, r, "POST", "/feedback-realtime", tc.body, nil)
		if w.Code != tc.status {
			t.Fatalf("%s: status = %d body=%s", tc.name, w.Code, w.Body.String())
		}
		if e := decodeError(t, w); e.Code != tc.code {
			t.Fatalf("%s: code = %q", tc.name, e.Code)
		}
	}
}

func TestConversationFeedback_CanonicalizesLanguage(t *testing.T) {
	fb := &stubFeedback{conv: &domain.ConversationFeedback{OverallScore: 64}}
	r := newEngine(New(nil, fb, nil, nil))

	w := doJSON(t, r, "POST", "/feedback", map[string]any{
		"conversation": map[string]any{
			"personaName": "Dana",
			"language":    "th",
			"messages":    []domain.Message{{Role: domain.RoleUser, Content: "Hello"}},
		},
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var got ConversationFeedbackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.Feedback.OverallScore != 64 {
		t.Fatalf("decode: %v %+v", err, got)
	}
	if fb.convIn.Language != "Thai" || fb.convIn.PersonaName != "Dana" {
		t.Fatalf("unexpected input: %+v", fb.convIn)
	}

	doJSON(t, r, "POST", "/feedback", map[string]any{
		"conversation": map[string]any{"personaName": "Dana", "messages": []domain.Message{{Role: domain.RoleUser, Content: "x"}}},
	}, nil)
	if fb.convIn.Language != "" {
		t.Fatalf("a blank language is left for the prompt to default, got %q", fb.convIn.Language)
	}
}

func TestConversationFeedback_Errors(t *testing.T) {
	r := newEngine(New(nil, &stubFeedback{}, nil, nil))
	if w := doJSON(t, r, "POST", "/feedback", map[string]any{}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("missing conversation: %d", w.Code)
	}

	up := &llm.UpstreamError{StatusCode: 401, Type: "invalid_request_error", Message: "Incorrect API key"}
	r = newEngine(New(nil, &stubFeedback{err: up}, nil, nil))
	w := doJSON(t, r, "POST", "/feedback", map[string]any{
		"conversation": map[string]any{"personaName": "Dana", "messages": []domain.Message{{Role: domain.RoleUser, Content: "x"}}},
	}, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if e := decodeError(t, w); e.Code != ErrCodeUpstream || e.Message != "Incorrect API key" {
		t.Fatalf("envelope = %+v", e)
	}
}
