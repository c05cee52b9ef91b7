package prompt

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

// Counter returns the number of tokens in a piece of text.
type Counter func(text string) int

// perMessageOverhead approximates the role/separator tokens the chat format
// adds around every message.
const perMessageOverhead = 4

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// CountTokens counts tokens with the cl100k_base encoding. The encoding is
// loaded on first use; if it cannot be loaded EstimateFast is used instead.
func CountTokens(text string) int {
	encOnce.Do(func() {
		if e, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			enc = e
		}
	})
	if enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return EstimateFast(text)
}

// EstimateFast returns max(runes/4, words), and at least 1 for non-blank text.
func EstimateFast(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := len([]rune(trimmed)) / 4
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}

// TrimHistory drops the oldest messages until the remainder fits budget
// tokens. The most recent message is always kept, even when it alone exceeds
// the budget. A budget <= 0 disables trimming. A nil counter uses
// CountTokens. The input slice is not modified.
func TrimHistory(msgs []domain.Message, budget int, count Counter) []domain.Message {
	if budget <= 0 || len(msgs) <= 1 {
		return msgs
	}
	if count == nil {
		count = CountTokens
	}

	total := 0
	start := len(msgs)
	for i := len(msgs) - 1; i >= 0; i-- {
		cost := count(msgs[i].Content) + perMessageOverhead
		if total+cost > budget && i < len(msgs)-1 {
			break
		}
		total += cost
		start = i
	}
	return msgs[start:]
}
