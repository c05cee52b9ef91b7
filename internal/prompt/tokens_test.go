package prompt

import (
	"testing"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

func TestEstimateFast(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"a", 1},
		{"one two three", 3},
		{"abcdefghijklmnopqrstuvwxyz", 6},
		{"สวัสดีครับ", 2},
	}
	for _, c := range cases {
		if got := EstimateFast(c.in); got != c.want {
			t.Fatalf("EstimateFast(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

// words charges one token per message for predictable budgets.
func words(string) int { return 1 }

func msgs(n int) []domain.Message {
	out := make([]domain.Message, n)
	for i := range out {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		out[i] = domain.Message{Role: role, Content: string(rune('a' + i))}
	}
	return out
}

func TestTrimHistory_DisabledOrShort(t *testing.T) {
	in := msgs(4)
	if got := TrimHistory(in, 0, words); len(got) != 4 {
		t.Fatalf("budget 0 should not trim, got %d", len(got))
	}
	if got := TrimHistory(in, -1, words); len(got) != 4 {
		t.Fatalf("negative budget should not trim, got %d", len(got))
	}
	if got := TrimHistory(in[:1], 1, words); len(got) != 1 {
		t.Fatalf("single message must be kept")
	}
	if got := TrimHistory(nil, 10, words); len(got) != 0 {
		t.Fatalf("nil in, nil out")
	}
}

func TestTrimHistory_DropsOldestFirst(t *testing.T) {
	in := msgs(5) // each costs 1 + perMessageOverhead = 5
	got := TrimHistory(in, 12, words)
	if len(got) != 2 {
		t.Fatalf("expected 2 messages to fit a budget of 12, got %d", len(got))
	}
	if got[0].Content != "d" || got[1].Content != "e" {
		t.Fatalf("expected the newest messages, got %+v", got)
	}
	if in[0].Content != "a" || len(in) != 5 {
		t.Fatalf("input must not be modified")
	}
}

func TestTrimHistory_AlwaysKeepsLatest(t *testing.T) {
	in := msgs(3)
	got := TrimHistory(in, 1, words)
	if len(got) != 1 || got[0].Content != "c" {
		t.Fatalf("latest message must survive an undersized budget, got %+v", got)
	}
}
