package domain

// Message roles. Anything else is rejected at the service boundary.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a practice conversation. User messages are written
// by the advisor; assistant messages are the persona's in-character replies.
type Message struct {
	ID       string           `json:"id,omitempty"`
	Role     string           `json:"role"`
	Content  string           `json:"content"`
	Feedback *MessageFeedback `json:"feedback,omitempty"`
	Emoji    string           `json:"emoji,omitempty"`
}

// Penalties records the coaching-rule deductions for a single advisor message.
type Penalties struct {
	OffTopic       bool `json:"offTopic"`
	TooShort       bool `json:"tooShort"`
	Unprofessional bool `json:"unprofessional"`
	PenaltyPoints  int  `json:"penaltyPoints"`
}

// MessageFeedback is the coaching result for one advisor message.
// Strengths and Improvements are never nil once normalized.
type MessageFeedback struct {
	Score          int        `json:"score"`
	Strengths      []string   `json:"strengths"`
	Improvements   []string   `json:"improvements"`
	Recommendation string     `json:"recommendation"`
	Penalties      *Penalties `json:"penalties,omitempty"`
}

// ConversationTone describes the tone of both parties across a conversation.
type ConversationTone struct {
	AdvisorTone string `json:"advisorTone"`
	ClientTone  string `json:"clientTone"`
	Overall     string `json:"overall"`
}

// CustomerSatisfaction is the model's estimate of how satisfied the client
// persona ended up.
type CustomerSatisfaction struct {
	Score      int      `json:"score"`
	Indicators []string `json:"indicators"`
	Assessment string   `json:"assessment"`
}

// Category trends.
const (
	TrendUp      = "up"
	TrendDown    = "down"
	TrendNeutral = "neutral"
)

// CategoryScore is one row of the end-of-conversation scorecard.
type CategoryScore struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Trend    string `json:"trend"`
}

// FeedbackCategories lists the scorecard categories in display order.
var FeedbackCategories = []string{
	"Rapport Building",
	"Active Listening",
	"Needs Assessment",
	"Product Knowledge",
	"Communication Clarity",
	"Objection Handling",
}

// ConversationFeedback is the end-of-conversation report.
type ConversationFeedback struct {
	OverallScore         int                  `json:"overallScore"`
	ConversationSummary  string               `json:"conversationSummary"`
	ConversationTone     ConversationTone     `json:"conversationTone"`
	CustomerSatisfaction CustomerSatisfaction `json:"customerSatisfaction"`
	Categories           []CategoryScore      `json:"categories"`
	Strengths            []string             `json:"strengths"`
	Improvements         []string             `json:"improvements"`
	Summary              string               `json:"summary"`
}
