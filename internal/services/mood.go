package services

import (
	"strings"
	"unicode"
)

// Mood is the client's apparent state of mind after a reply.
type Mood string

// Recognised moods. MoodNeutral is returned when nothing scores high enough.
const (
	MoodNeutral   Mood = "neutral"
	MoodWorried   Mood = "worried"
	MoodSkeptical Mood = "skeptical"
	MoodConfused  Mood = "confused"
	MoodPleased   Mood = "pleased"
)

// Emoji returns the face shown next to the persona's reply.
func (m Mood) Emoji() string {
	switch m {
	case MoodWorried:
		return "😟"
	case MoodSkeptical:
		return "🤨"
	case MoodConfused:
		return "😕"
	case MoodPleased:
		return "😊"
	default:
		return "🙂"
	}
}

// moodThreshold is the minimum score for a non-neutral mood.
const moodThreshold = 0.3

type moodKeyword struct {
	keyword string
	weight  float64
}

// wholeWord reports whether kw is a single Latin word, matched against reply
// tokens. Phrases, punctuated entries and Thai (written without spaces) are
// matched as substrings.
func (kw moodKeyword) wholeWord() bool {
	for _, r := range kw.keyword {
		if (r < 'a' || r > 'z') && r != '\'' {
			return false
		}
	}
	return kw.keyword != ""
}

// moodOrder fixes evaluation order so ties resolve deterministically.
var moodOrder = []Mood{MoodWorried, MoodSkeptical, MoodConfused, MoodPleased}

var moodLexicon = map[Mood][]moodKeyword{
	MoodWorried: {
		{"worried", 0.4}, {"worry", 0.4}, {"nervous", 0.4}, {"afraid", 0.4}, {"scared", 0.4},
		{"lose", 0.3}, {"losing", 0.3}, {"loss", 0.3}, {"losses", 0.3}, {"risky", 0.3},
		{"concerned", 0.3}, {"anxious", 0.4}, {"can't afford", 0.4},
		{"กังวล", 0.4}, {"กลัว", 0.4}, {"ขาดทุน", 0.3},
	},
	MoodSkeptical: {
		{"not sure", 0.3}, {"really?", 0.4}, {"doubt", 0.4}, {"skeptical", 0.5},
		{"doubts", 0.4}, {"too good to be true", 0.5}, {"guarantee", 0.3},
		{"guaranteed", 0.3}, {"prove", 0.3},
		{"why should i", 0.4}, {"hidden fees", 0.4},
		{"จริงหรือ", 0.4}, {"ไม่แน่ใจ", 0.3},
	},
	MoodConfused: {
		{"confused", 0.5}, {"don't understand", 0.5}, {"what do you mean", 0.5},
		{"what is", 0.3}, {"explain", 0.3}, {"unclear", 0.4}, {"lost me", 0.4},
		{"ไม่เข้าใจ", 0.5}, {"หมายความว่า", 0.4},
	},
	MoodPleased: {
		{"thank", 0.3}, {"thanks", 0.3}, {"great", 0.3}, {"sounds good", 0.4}, {"helpful", 0.3},
		{"makes sense", 0.4}, {"perfect", 0.3}, {"appreciate", 0.3},
		{"excited", 0.3}, {"ขอบคุณ", 0.3}, {"ดีมาก", 0.4},
	},
}

// DetectMood scores reply against a small bilingual lexicon. Single English
// words must match a whole token of the reply, so "close" does not count as
// "lose"; phrases and Thai entries match anywhere. Repeated
// exclamation marks strengthen the leading mood; question marks lean towards
// confusion. Scores below the threshold give MoodNeutral.
func DetectMood(reply string) Mood {
	lower := strings.ToLower(strings.ReplaceAll(reply, "\u2019", "'"))
	tokens := map[string]struct{}{}
	for _, t := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	}) {
		tokens[strings.Trim(t, "'")] = struct{}{}
	}

	scores := make(map[Mood]float64, len(moodOrder))
	for _, m := range moodOrder {
		for _, kw := range moodLexicon[m] {
			hit := false
			if kw.wholeWord() {
				_, hit = tokens[kw.keyword]
			} else {
				hit = strings.Contains(lower, kw.keyword)
			}
			if hit {
				scores[m] += kw.weight
			}
		}
	}

	if q := strings.Count(reply, "?"); q >= 3 {
		scores[MoodConfused] += 0.1
	}

	top, topScore := MoodNeutral, 0.0
	for _, m := range moodOrder {
		if scores[m] > topScore {
			top, topScore = m, scores[m]
		}
	}
	if n := strings.Count(reply, "!"); n >= 2 && top != MoodNeutral {
		topScore += min(float64(n)*0.1, 0.2)
	}
	if topScore < moodThreshold {
		return MoodNeutral
	}
	return top
}
