package domain

import "time"

// ConversationSession is the hand-off record created when a practice chat
// ends and consumed by the conversation review. It lives in the session
// store only until ExpiresAt.
type ConversationSession struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	PersonaID   string    `json:"personaId,omitempty"`
	PersonaName string    `json:"personaName"`
	Persona     *Persona  `json:"persona,omitempty"`
	Language    string    `json:"language"`
	Messages    []Message `json:"messages"`
	EndedAt     time.Time `json:"endedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *ConversationSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
