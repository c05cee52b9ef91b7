package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

func somchai() domain.Persona {
	return domain.Persona{
		Name:       "Somchai",
		Age:        "45",
		Occupation: "Rice farmer",
		Income:     "฿400,000",
		Assets:     "฿2,000,000",
		Risk:       domain.RiskConservative,
		Lifestyle:  "Careful saver, supports two children",
		Language:   "Thai",
	}
}

func TestValidate(t *testing.T) {
	ok := somchai()
	if err := Validate(&ok); err != nil {
		t.Fatalf("valid persona rejected: %v", err)
	}

	cases := map[string]*domain.Persona{
		"persona":    nil,
		"name":       {Occupation: "Teacher"},
		"occupation": {Name: "Ana", Occupation: "   "},
	}
	for field, p := range cases {
		err := Validate(p)
		if !errors.Is(err, ErrInvalidPersona) {
			t.Fatalf("%s: expected ErrInvalidPersona, got %v", field, err)
		}
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("%s: error should name the field: %v", field, err)
		}
	}
}

func TestRolePlay_EmbedsProfileAndLanguage(t *testing.T) {
	out := RolePlay(somchai())

	for _, want := range []string{
		"Somchai", "Rice farmer", "฿400,000", "฿2,000,000", "Careful saver",
		"Respond only in Thai", "2-4 sentences",
		"Conservative:", "Moderate:", "Aggressive:",
		"You are the CLIENT",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("role-play prompt missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Gender: Not specified") {
		t.Fatalf("blank gender should render as Not specified")
	}
}

func TestRolePlay_DefaultsAndDeterminism(t *testing.T) {
	p := domain.Persona{Name: "Ana", Occupation: "Nurse", Risk: domain.RiskModerate}
	a, b := RolePlay(p), RolePlay(p)
	if a != b {
		t.Fatalf("RolePlay is not deterministic")
	}
	if !strings.Contains(a, "Respond only in English") || !strings.Contains(a, "Age: Not specified") {
		t.Fatalf("expected English and Not specified defaults:\n%s", a)
	}
}

func TestCoaching(t *testing.T) {
	p := Coaching(somchai(), "What are your goals?", "ฉันอยากเก็บเงินไว้เกษียณ", nil)

	if p.System != coachingSystem {
		t.Fatalf("unexpected system message: %q", p.System)
	}
	for _, want := range []string{
		`"What are your goals?"`,
		"ฉันอยากเก็บเงินไว้เกษียณ",
		`"penaltyPoints"`, "5-10", "3-7", "10-15", "never exceeds 30",
		"start at 100",
		"Write every string value in Thai.",
	} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("coaching prompt missing %q:\n%s", want, p.User)
		}
	}
	if strings.Contains(p.User, "COACHING REFERENCE") {
		t.Fatalf("no guidance should add no reference section")
	}

	g := Coaching(somchai(), "hi", "hello", []string{"  ", "Ask open questions first."})
	if !strings.Contains(g.User, "COACHING REFERENCE:\n- Ask open questions first.\n") {
		t.Fatalf("guidance not rendered:\n%s", g.User)
	}
	if strings.Contains(g.User, "-   \n") {
		t.Fatalf("blank guidance should be dropped")
	}
}

func TestConversationReview(t *testing.T) {
	msgs := []domain.Message{
		{Role: domain.RoleUser, Content: "Hello, how can I help?"},
		{Role: domain.RoleAssistant, Content: "I want safe funds."},
	}
	per := somchai()
	p := ConversationReview("Somchai", &per, "", msgs)

	if p.System != reviewSystem {
		t.Fatalf("unexpected system message: %q", p.System)
	}
	if !strings.Contains(p.User, "Advisor: Hello, how can I help?\n\nClient: I want safe funds.") {
		t.Fatalf("transcript not rendered:\n%s", p.User)
	}
	if !strings.Contains(p.User, "Name: Somchai\n- Age: 45\n- Gender: Not specified\n- Occupation: Rice farmer\n") {
		t.Fatalf("persona profile missing:\n%s", p.User)
	}
	if !strings.Contains(p.User, "- Risk Tolerance: Conservative\n- Profile: Careful saver, supports two children\n- Language: Thai\n") {
		t.Fatalf("persona profile incomplete:\n%s", p.User)
	}
	for _, c := range domain.FeedbackCategories {
		if !strings.Contains(p.User, `"name": "`+c+`"`) {
			t.Fatalf("category %q missing", c)
		}
	}
	if !strings.HasSuffix(p.User, "Write all text values in Thai.") {
		t.Fatalf("language directive should come from the persona")
	}

	noPersona := ConversationReview("Ana", nil, "Spanish", msgs)
	if !strings.Contains(noPersona.User, "Name: Ana\n\nCONVERSATION TRANSCRIPT") {
		t.Fatalf("nil persona should render name only:\n%s", noPersona.User)
	}
	if !strings.HasSuffix(noPersona.User, "Write all text values in Spanish.") {
		t.Fatalf("explicit language should win")
	}
}

func TestConversationReview_OmitsStorageFields(t *testing.T) {
	per := somchai()
	per.ID = "5f0c1f7e-2b7a-4b7e-9a55-0f6d3c1d9e21"
	per.UserID = "advisor-7"

	p := ConversationReview("Somchai", &per, "", nil)
	for _, leak := range []string{per.ID, per.UserID, "0001-01-01", "created", "updated", "user_id", "{"} {
		if strings.Contains(strings.SplitN(p.User, "CONVERSATION TRANSCRIPT", 2)[0], leak) {
			t.Errorf("persona section leaks %q:\n%s", leak, p.User)
		}
	}
}

func TestTranscript_Empty(t *testing.T) {
	if got := Transcript(nil); got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}
