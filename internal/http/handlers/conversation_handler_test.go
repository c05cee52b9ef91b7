package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/http/middleware"
	"github.com/tbourn/go-advisor-coach/internal/services"
	"github.com/tbourn/go-advisor-coach/internal/session"
)

func newSessionHandlers(t *testing.T, fb *stubFeedback) (*Handlers, *services.PersonaService) {
	t.Helper()
	ps := newPersonaService(t)
	ss := services.NewSessionService(session.NewMemory(16, time.Hour), ps, fb, time.Hour)
	return New(nil, fb, ps, ss), ps
}

func transcript() []domain.Message {
	return []domain.Message{
		{Role: domain.RoleUser, Content: " Hello Dana "},
		{Role: domain.RoleAssistant, Content: "Hi, I'm nervous about this."},
	}
}

func decodeSession(t *testing.T, b []byte) *domain.ConversationSession {
	t.Helper()
	var resp SessionResponse
	if err := json.Unmarshal(b, &resp); err != nil || resp.Session == nil {
		t.Fatalf("decode session: %v (%s)", err, b)
	}
	return resp.Session
}

func TestEndConversation_InlinePersonaRoundTrip(t *testing.T) {
	h, _ := newSessionHandlers(t, &stubFeedback{})
	r := newEngine(h)

	w := doJSON(t, r, "POST", "/conversations", map[string]any{
		"persona":  testPersona(),
		"language": "thai",
		"messages": transcript(),
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	rec := decodeSession(t, w.Body.Bytes())
	if rec.PersonaName != "Dana" || rec.Language != "Thai" || rec.Messages[0].Content != "Hello Dana" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got := doJSON(t, r, "GET", "/conversations/"+rec.ID, nil, nil)
	if got.Code != http.StatusOK || decodeSession(t, got.Body.Bytes()).ID != rec.ID {
		t.Fatalf("read back: %d %s", got.Code, got.Body.String())
	}
	if w := doJSON(t, r, "GET", "/conversations/"+rec.ID, nil, map[string]string{middleware.HeaderUserID: "u2"}); w.Code != http.StatusNotFound {
		t.Fatalf("sessions are private: %d", w.Code)
	}
}

func TestEndConversation_StoredPersona(t *testing.T) {
	h, ps := newSessionHandlers(t, &stubFeedback{})
	r := newEngine(h)

	p, err := ps.Create(context.Background(), middleware.DefaultUserID, *testPersona())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w := doJSON(t, r, "POST", "/conversations", map[string]any{"personaId": p.ID, "messages": transcript()}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if rec := decodeSession(t, w.Body.Bytes()); rec.PersonaID != p.ID || rec.Language != "English" {
		t.Fatalf("stored persona not used: %+v", rec)
	}

	w = doJSON(t, r, "POST", "/conversations", map[string]any{"personaId": uuid.NewString(), "messages": transcript()}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown persona: %d", w.Code)
	}
}

func TestEndConversation_Invalid(t *testing.T) {
	h, _ := newSessionHandlers(t, &stubFeedback{})
	r := newEngine(h)
	cases := map[string]any{
		"bad json":    "{",
		"no messages": map[string]any{"personaName": "Dana"},
		"no name":     map[string]any{"messages": transcript()},
		"bad role":    map[string]any{"personaName": "Dana", "messages": []domain.Message{{Role: "tool", Content: "x"}}},
	}
	for name, body := range cases {
		if w := doJSON(t, r, "POST", "/conversations", body, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d body=%s", name, w.Code, w.Body.String())
		}
	}
}

func TestReviewConversation(t *testing.T) {
	fb := &stubFeedback{conv: &domain.ConversationFeedback{OverallScore: 77}}
	h, _ := newSessionHandlers(t, fb)
	r := newEngine(h)

	rec := decodeSession(t, doJSON(t, r, "POST", "/conversations", map[string]any{
		"personaName": "Dana",
		"messages":    transcript(),
	}, nil).Body.Bytes())

	w := doJSON(t, r, "POST", "/conversations/"+rec.ID+"/feedback", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp ConversationFeedbackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Feedback.OverallScore != 77 {
		t.Fatalf("decode: %v %+v", err, resp)
	}
	if fb.convIn.PersonaName != "Dana" || len(fb.convIn.Messages) != 2 || fb.convIn.Language != "English" {
		t.Fatalf("reviewer input: %+v", fb.convIn)
	}

	if w := doJSON(t, r, "POST", "/conversations/"+uuid.NewString()+"/feedback", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown session: %d", w.Code)
	}
	if w := doJSON(t, r, "POST", "/conversations/nope/feedback", nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}
}
