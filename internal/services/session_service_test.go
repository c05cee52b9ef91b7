package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/session"
)

type stubPersonas struct {
	p   *domain.Persona
	err error
}

func (s stubPersonas) Get(_ context.Context, _, _ string) (*domain.Persona, error) {
	return s.p, s.err
}

type recordingReviewer struct {
	got ConversationInput
	out *domain.ConversationFeedback
	err error
}

func (r *recordingReviewer) ReviewConversation(_ context.Context, in ConversationInput) (*domain.ConversationFeedback, error) {
	r.got = in
	return r.out, r.err
}

func transcript() []domain.Message {
	return []domain.Message{
		{Role: domain.RoleUser, Content: " Hello Dana "},
		{Role: domain.RoleAssistant, Content: "Hi!", Feedback: &domain.MessageFeedback{Score: 80}},
	}
}

func TestSessionService_EndAndGet(t *testing.T) {
	st := session.NewMemory(8, time.Hour)
	svc := NewSessionService(st, stubPersonas{}, &recordingReviewer{}, 30*time.Minute)
	fixed := time.Now().UTC().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	rec, err := svc.End(context.Background(), "u1", EndInput{
		Persona:  testPersona(),
		Language: "th",
		Messages: transcript(),
	})
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if rec.ID == "" || rec.PersonaName != "Dana" || rec.Language != "Thai" || rec.PersonaID != "p1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.ExpiresAt.Equal(fixed.Add(30 * time.Minute)) {
		t.Fatalf("ExpiresAt = %v", rec.ExpiresAt)
	}
	if rec.Messages[0].Content != "Hello Dana" || rec.Messages[1].Feedback != nil {
		t.Fatalf("messages should be cleaned: %+v", rec.Messages)
	}

	got, err := svc.Get(context.Background(), "u1", rec.ID)
	if err != nil || got.ID != rec.ID {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := svc.Get(context.Background(), "u2", rec.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("foreign read should be not found, got %v", err)
	}
}

func TestSessionService_EndResolvesStoredPersona(t *testing.T) {
	stored := testPersona()
	stored.ID, stored.Name, stored.Language = "stored-1", "Stored Dana", "Thai"
	svc := NewSessionService(session.NewMemory(8, time.Hour), stubPersonas{p: stored}, &recordingReviewer{}, 0)

	rec, err := svc.End(context.Background(), "u1", EndInput{
		PersonaID: "stored-1",
		Persona:   testPersona(),
		Messages:  transcript(),
	})
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if rec.PersonaName != "Stored Dana" || rec.PersonaID != "stored-1" || rec.Language != "Thai" {
		t.Fatalf("stored persona should win: %+v", rec)
	}

	svc.Personas = stubPersonas{err: ErrPersonaNotFound}
	if _, err := svc.End(context.Background(), "u1", EndInput{PersonaID: "x", Messages: transcript()}); !errors.Is(err, ErrPersonaNotFound) {
		t.Fatalf("unknown persona id: %v", err)
	}
}

func TestSessionService_EndValidation(t *testing.T) {
	svc := NewSessionService(session.NewMemory(8, time.Hour), stubPersonas{}, &recordingReviewer{}, 0)
	ctx := context.Background()

	if _, err := svc.End(ctx, "u1", EndInput{PersonaName: "Dana"}); !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("empty transcript: %v", err)
	}
	if _, err := svc.End(ctx, "u1", EndInput{Messages: transcript()}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("missing name: %v", err)
	}
	bad := []domain.Message{{Role: "system", Content: "x"}}
	if _, err := svc.End(ctx, "u1", EndInput{PersonaName: "Dana", Messages: bad}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("bad role: %v", err)
	}

	rec, err := svc.End(ctx, "u1", EndInput{PersonaName: "Dana", Messages: transcript()})
	if err != nil || rec.Language != domain.DefaultLanguage || rec.Persona != nil {
		t.Fatalf("name-only session = %+v, %v", rec, err)
	}
}

func TestSessionService_Review(t *testing.T) {
	rv := &recordingReviewer{out: &domain.ConversationFeedback{OverallScore: 77}}
	svc := NewSessionService(session.NewMemory(8, time.Hour), stubPersonas{}, rv, 0)
	ctx := context.Background()

	rec, err := svc.End(ctx, "u1", EndInput{PersonaName: "Dana", Language: "English", Messages: transcript()})
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	fb, err := svc.Review(ctx, "u1", rec.ID)
	if err != nil || fb.OverallScore != 77 {
		t.Fatalf("Review = %+v, %v", fb, err)
	}
	if rv.got.PersonaName != "Dana" || len(rv.got.Messages) != 2 || rv.got.Language != "English" {
		t.Fatalf("reviewer input = %+v", rv.got)
	}

	if _, err := svc.Review(ctx, "u1", "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("missing session: %v", err)
	}
	if _, err := svc.Get(ctx, "u1", rec.ID); err != nil {
		t.Fatalf("review must not consume the record: %v", err)
	}
}
