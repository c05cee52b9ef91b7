// Package playbook holds the coaching playbook: short, topic-tagged tips that
// are matched against an advisor message and handed to the feedback prompt as
// reference material.
//
// A playbook is loaded from Markdown. Each "#" heading opens a topic and
// every paragraph below it becomes one tip of that topic. Matching uses the
// Jaccard similarity of the query tokens and the tip tokens (heading
// included): score = |Q ∩ T| / |Q ∪ T|. A Playbook is immutable once built
// and safe for concurrent use.
package playbook

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Tip is a single piece of coaching guidance.
type Tip struct {
	Topic string
	Text  string
}

// Match is a ranked tip.
type Match struct {
	Tip   Tip
	Score float64
}

// Option configures loading.
type Option func(*config)

type config struct {
	minTipRunes int
	stopwords   map[string]struct{}
	maxTips     int
}

func defaultConfig() config {
	return config{
		minTipRunes: 20,
		stopwords:   defaultStopwords,
	}
}

// WithMinTipRunes drops paragraphs shorter than n runes. Negative n is ignored.
func WithMinTipRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minTipRunes = n
		}
	}
}

// WithStopwords replaces the default stop-word list. An empty list disables
// stop-word removal.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				m[w] = struct{}{}
			}
		}
		c.stopwords = m
	}
}

// WithMaxTips caps the number of tips kept, in document order.
func WithMaxTips(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxTips = n
		}
	}
}

type entry struct {
	tip    Tip
	tokens map[string]struct{}
	runes  int
}

// Playbook is a searchable set of tips. The zero value is an empty playbook.
type Playbook struct {
	cfg     config
	entries []entry
}

// Load reads the Markdown playbook at path. On error the returned playbook
// is empty but usable.
func Load(path string, opts ...Option) (*Playbook, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return &Playbook{cfg: defaultConfig()}, err
	}
	return FromReader(bytes.NewReader(b), opts...)
}

// FromReader builds a playbook from Markdown read from r.
func FromReader(r io.Reader, opts ...Option) (*Playbook, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	all, err := io.ReadAll(r)
	if err != nil {
		return &Playbook{cfg: cfg}, err
	}
	return build(parseMarkdown(string(all)), cfg), nil
}

// FromTips builds a playbook from tips directly.
func FromTips(tips []Tip, opts ...Option) *Playbook {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return build(tips, cfg)
}

// Len returns the number of tips.
func (p *Playbook) Len() int {
	if p == nil {
		return 0
	}
	return len(p.entries)
}

// TopK returns up to k best-matching tips, best first. Ties prefer the
// shorter tip, then lexical order. k <= 0 means 3.
func (p *Playbook) TopK(query string, k int) []Match {
	if p.Len() == 0 || strings.TrimSpace(query) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	q := tokenize(query, p.cfg.stopwords)
	if len(q) == 0 {
		return nil
	}

	type scored struct {
		e     *entry
		score float64
	}
	buf := make([]scored, 0, min(k*4, len(p.entries)))
	for i := range p.entries {
		e := &p.entries[i]
		over := overlap(q, e.tokens)
		if over == 0 {
			continue
		}
		union := len(q) + len(e.tokens) - over
		buf = append(buf, scored{e: e, score: float64(over) / float64(union)})
	}
	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].e.runes != buf[b].e.runes {
			return buf[a].e.runes < buf[b].e.runes
		}
		return buf[a].e.tip.Text < buf[b].e.tip.Text
	})

	k = min(k, len(buf))
	out := make([]Match, k)
	for i := 0; i < k; i++ {
		out[i] = Match{Tip: buf[i].e.tip, Score: buf[i].score}
	}
	return out
}

// Guidance returns the text of the k best tips for query, prefixed with
// their topic.
func (p *Playbook) Guidance(query string, k int) []string {
	matches := p.TopK(query, k)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Tip.Topic != "" {
			out = append(out, m.Tip.Topic+": "+m.Tip.Text)
			continue
		}
		out = append(out, m.Tip.Text)
	}
	return out
}

func build(tips []Tip, cfg config) *Playbook {
	entries := make([]entry, 0, len(tips))
	for _, t := range tips {
		t.Topic = strings.TrimSpace(normalizeWhitespace(t.Topic))
		t.Text = strings.TrimSpace(normalizeWhitespace(t.Text))
		n := utf8.RuneCountInString(t.Text)
		if t.Text == "" || (cfg.minTipRunes > 0 && n < cfg.minTipRunes) {
			continue
		}
		toks := tokenize(t.Topic+" "+t.Text, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		entries = append(entries, entry{tip: t, tokens: toks, runes: n})
		if cfg.maxTips > 0 && len(entries) >= cfg.maxTips {
			break
		}
	}
	return &Playbook{cfg: cfg, entries: entries}
}

var (
	headingRE   = regexp.MustCompile(`^#{1,6}\s+(.*?)\s*#*\s*$`)
	listItemRE  = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+`)
	paraSplitRE = regexp.MustCompile(`\n\s*\n`)
)

// parseMarkdown splits a document into tips. List items are tips of their
// own; other paragraphs are kept whole.
func parseMarkdown(doc string) []Tip {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	var (
		tips  []Tip
		topic string
	)
	for _, block := range paraSplitRE.Split(doc, -1) {
		var para []string
		flush := func() {
			if len(para) > 0 {
				tips = append(tips, Tip{Topic: topic, Text: strings.Join(para, " ")})
				para = para[:0]
			}
		}
		for _, line := range strings.Split(block, "\n") {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
			case headingRE.MatchString(trimmed):
				flush()
				topic = headingRE.FindStringSubmatch(trimmed)[1]
			case listItemRE.MatchString(line):
				flush()
				para = append(para, listItemRE.ReplaceAllString(line, ""))
			default:
				para = append(para, trimmed)
			}
		}
		flush()
	}
	return tips
}

var wordRE = regexp.MustCompile(`[\p{L}\p{M}]+\p{N}*|\p{N}+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var defaultStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {},
	"you": {}, "your": {}, "i": {}, "me": {}, "my": {}, "we": {}, "our": {},
	"do": {}, "does": {}, "can": {}, "what": {}, "how": {}, "about": {},
}
