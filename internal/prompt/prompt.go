// Package prompt renders the instructions sent to the completion provider.
//
// Every builder is pure and deterministic: the same persona and transcript
// always produce byte-identical text. Builders assume their input has been
// checked with Validate; they never fail.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

// ErrInvalidPersona is returned by Validate when a required persona field is
// blank. The returned error wraps it together with the field name.
var ErrInvalidPersona = errors.New("invalid persona")

// Prompt is a system instruction plus the user-turn payload for a single
// structured completion.
type Prompt struct {
	System string
	User   string
}

const notSpecified = "Not specified"

// System messages of the two structured requests.
const (
	coachingSystem = "You are an expert financial advisory coach. Provide constructive, specific feedback in valid JSON format only."
	reviewSystem   = "You are an expert financial advisory coach. Always respond with valid JSON only."
)

// Validate checks the fields every builder relies on.
func Validate(p *domain.Persona) error {
	if p == nil {
		return fmt.Errorf("%w: persona is required", ErrInvalidPersona)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPersona)
	}
	if strings.TrimSpace(p.Occupation) == "" {
		return fmt.Errorf("%w: occupation is required", ErrInvalidPersona)
	}
	return nil
}

// RolePlay returns the system prompt that makes the model play p as a client
// seeking advice on mutual funds.
func RolePlay(p domain.Persona) string {
	lang := p.LanguageOrDefault()

	var b strings.Builder
	fmt.Fprintf(&b, "You are roleplaying as %s, a client seeking financial advice about mutual fund investments. Your profile:\n\n", p.Name)
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Age: %s\n", orNotSpecified(string(p.Age)))
	fmt.Fprintf(&b, "- Gender: %s\n", orNotSpecified(p.Gender))
	fmt.Fprintf(&b, "- Occupation: %s\n", p.Occupation)
	fmt.Fprintf(&b, "- Annual Income: %s\n", p.Income)
	fmt.Fprintf(&b, "- Total Assets: %s\n", p.Assets)
	fmt.Fprintf(&b, "- Risk Tolerance: %s\n", p.Risk)
	fmt.Fprintf(&b, "- Lifestyle & Personality: %s\n", p.Lifestyle)
	fmt.Fprintf(&b, "- Language Preference: %s\n\n", lang)

	b.WriteString("IMPORTANT INSTRUCTIONS:\n")
	b.WriteString("1. You are the CLIENT, not the advisor. The user is your financial advisor.\n")
	b.WriteString("2. Stay in character at all times and never acknowledge being an AI.\n")
	b.WriteString("3. You are seeking advice on mutual fund investments.\n")
	b.WriteString("4. Show realistic concerns, questions, and emotions based on your profile.\n")
	b.WriteString("5. Ask about fees, risks, returns, and how the investments fit your situation.\n")
	b.WriteString("6. Express doubts or ask for clarification when something is unclear.\n")
	b.WriteString("7. React according to your risk tolerance:\n")
	fmt.Fprintf(&b, "   - %s: prefer stability, worry about losses, ask about safe options.\n", domain.RiskConservative)
	fmt.Fprintf(&b, "   - %s: balance growth and safety, open to some risk.\n", domain.RiskModerate)
	fmt.Fprintf(&b, "   - %s: seek high returns, willing to take risks, interested in growth funds.\n", domain.RiskAggressive)
	fmt.Fprintf(&b, "8. Respond only in %s. Never switch to another language.\n", lang)
	b.WriteString("9. Keep responses concise and natural (2-4 sentences typically).\n")
	b.WriteString("10. Share your goals, timeline, and concerns when appropriate.\n\n")

	fmt.Fprintf(&b, "Remember: You are %s, a real person looking for financial guidance. Respond naturally as this character would.", p.Name)
	return b.String()
}

// Coaching builds the per-message evaluation of advisorMsg, the latest
// advisor turn, given the persona's in-character clientReply. Guidance
// snippets, when present, are appended as reference material.
func Coaching(p domain.Persona, advisorMsg, clientReply string, guidance []string) Prompt {
	lang := p.LanguageOrDefault()

	var b strings.Builder
	b.WriteString("You are an expert financial advisory coach evaluating an advisor's communication with a client.\n\n")

	b.WriteString("CLIENT PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Name)
	fmt.Fprintf(&b, "- Age: %s\n", orNotSpecified(string(p.Age)))
	fmt.Fprintf(&b, "- Gender: %s\n", orNotSpecified(p.Gender))
	fmt.Fprintf(&b, "- Occupation: %s\n", p.Occupation)
	fmt.Fprintf(&b, "- Income: %s\n", p.Income)
	fmt.Fprintf(&b, "- Assets: %s\n", p.Assets)
	fmt.Fprintf(&b, "- Risk Tolerance: %s\n", p.Risk)
	fmt.Fprintf(&b, "- Profile: %s\n\n", p.Lifestyle)

	fmt.Fprintf(&b, "ADVISOR'S MESSAGE:\n\"%s\"\n\n", advisorMsg)
	fmt.Fprintf(&b, "CLIENT'S RESPONSE:\n\"%s\"\n\n", clientReply)

	b.WriteString(`Evaluate the advisor's message and return a JSON object with this exact structure:
{
  "score": <number 0-100>,
  "strengths": ["<1-3 specific strengths>"],
  "improvements": ["<1-3 specific improvements>"],
  "recommendation": "<one actionable recommendation>",
  "penalties": {
    "offTopic": <true|false>,
    "tooShort": <true|false>,
    "unprofessional": <true|false>,
    "penaltyPoints": <number 0-30>
  }
}

Evaluation criteria:
- Building rapport and empathy
- Understanding client needs and risk tolerance
- Clear communication about mutual funds
- Asking relevant questions
- Professional tone
- Addressing client concerns

Penalty policy (each penalty is independent; the total never exceeds 30 points):
- offTopic: the message ignores the client's financial situation or question, deduct 5-10 points.
- tooShort: the message is too brief to be helpful, deduct 3-7 points.
- unprofessional: the message is rude, dismissive, or makes inappropriate promises, deduct 10-15 points.

Scoring rule: start at 100, add credit for strengths, subtract penaltyPoints, and keep the result between 0 and 100.
`)
	fmt.Fprintf(&b, "\nWrite every string value in %s.\n", lang)

	if g := nonBlank(guidance); len(g) > 0 {
		b.WriteString("\nCOACHING REFERENCE:\n")
		for _, s := range g {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	return Prompt{System: coachingSystem, User: b.String()}
}

// ConversationReview builds the end-of-conversation evaluation over the full
// transcript. persona may be nil; the name alone then identifies the client.
// An empty language falls back to the persona's, then to English.
func ConversationReview(name string, persona *domain.Persona, language string, msgs []domain.Message) Prompt {
	lang := strings.TrimSpace(language)
	if lang == "" {
		lang = persona.LanguageOrDefault()
	}

	var b strings.Builder
	b.WriteString("You are an expert financial advisory coach evaluating an advisor's practice conversation with a client persona.\n\n")

	b.WriteString("CLIENT PERSONA:\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	if persona != nil {
		fmt.Fprintf(&b, "- Age: %s\n", orNotSpecified(string(persona.Age)))
		fmt.Fprintf(&b, "- Gender: %s\n", orNotSpecified(persona.Gender))
		fmt.Fprintf(&b, "- Occupation: %s\n", persona.Occupation)
		fmt.Fprintf(&b, "- Income: %s\n", persona.Income)
		fmt.Fprintf(&b, "- Assets: %s\n", persona.Assets)
		fmt.Fprintf(&b, "- Risk Tolerance: %s\n", persona.Risk)
		fmt.Fprintf(&b, "- Profile: %s\n", persona.Lifestyle)
		fmt.Fprintf(&b, "- Language: %s\n", persona.LanguageOrDefault())
	}

	b.WriteString("\nCONVERSATION TRANSCRIPT:\n")
	b.WriteString(Transcript(msgs))
	b.WriteString("\n\n")

	b.WriteString("Analyze the advisor's performance comprehensively and return a JSON object with the following structure:\n\n")
	b.WriteString(reviewShape())

	b.WriteString(`
Evaluation Guidelines:
1. CONVERSATION SUMMARY: Provide a brief overview of what was discussed and how the conversation flowed.
2. CONVERSATION TONE: Analyze the tone of both the advisor and client.
3. CUSTOMER SATISFACTION: Assess how satisfied the client appeared based on their responses.
4. PERFORMANCE CATEGORIES: Evaluate across the six areas listed above.
5. STRENGTHS & IMPROVEMENTS: Identify 3-4 key strengths and 3-4 areas for improvement.
6. OVERALL SUMMARY: Provide a comprehensive summary of the advisor's performance.

Be constructive, specific, and actionable in your feedback.
`)
	fmt.Fprintf(&b, "Write all text values in %s.", lang)

	return Prompt{System: reviewSystem, User: b.String()}
}

// Transcript renders msgs as "Advisor: ..." and "Client: ..." lines separated
// by blank lines.
func Transcript(msgs []domain.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		role := "Client"
		if m.Role == domain.RoleUser {
			role = "Advisor"
		}
		lines = append(lines, role+": "+m.Content)
	}
	return strings.Join(lines, "\n\n")
}

func reviewShape() string {
	var b strings.Builder
	b.WriteString(`{
  "overallScore": <number 0-100>,
  "conversationSummary": "<brief summary of conversation flow and key topics>",
  "conversationTone": {
    "advisorTone": "<description of advisor's tone>",
    "clientTone": "<description of client's tone and engagement>",
    "overall": "<overall tone assessment>"
  },
  "customerSatisfaction": {
    "score": <number 0-100>,
    "indicators": ["<indicator 1>", "<indicator 2>"],
    "assessment": "<overall satisfaction assessment>"
  },
  "categories": [
`)
	for i, name := range domain.FeedbackCategories {
		fmt.Fprintf(&b, "    {\n      \"name\": %q,\n      \"score\": <number 0-100>,\n      \"feedback\": \"<detailed feedback>\",\n      \"trend\": \"up|down|neutral\"\n    }", name)
		if i < len(domain.FeedbackCategories)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(`  ],
  "strengths": ["<strength 1>", "<strength 2>"],
  "improvements": ["<improvement 1>", "<improvement 2>"],
  "summary": "<comprehensive performance summary>"
}
`)
	return b.String()
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
