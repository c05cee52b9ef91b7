// Package domain defines the persistence models and value types of the
// advisor practice coach: personas stored with GORM, and the conversation and
// feedback shapes exchanged with the completion provider and API clients.
package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Risk tolerance levels recognised by the role-play prompt.
const (
	RiskConservative = "Conservative"
	RiskModerate     = "Moderate"
	RiskAggressive   = "Aggressive"
)

// DefaultLanguage is used whenever a persona does not name one.
const DefaultLanguage = "English"

// Age is a free-form age. Clients send it either as a JSON number or a
// string; both decode to the same textual value.
type Age string

// UnmarshalJSON accepts a JSON string, number, or null.
func (a *Age) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Age(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*a = Age(strconv.FormatInt(i, 10))
		return nil
	}
	*a = Age(n.String())
	return nil
}

// Persona is a simulated advisory client authored by a user.
//
// Personas are immutable after creation; the only mutation is a soft delete.
// Income and Assets are display strings (e.g. "$85,000") and are embedded in
// prompts verbatim.
type Persona struct {
	ID         string         `json:"id"                gorm:"type:char(36);primaryKey"`
	UserID     string         `json:"userId,omitempty"  gorm:"type:varchar(64);not null;index:idx_user_personas,priority:1"`
	Name       string         `json:"name"              gorm:"type:varchar(120);not null"`
	Age        Age            `json:"age,omitempty"     gorm:"type:varchar(16)"`
	Gender     string         `json:"gender,omitempty"  gorm:"type:varchar(32)"`
	Occupation string         `json:"occupation"        gorm:"type:varchar(120);not null"`
	Income     string         `json:"income"            gorm:"type:varchar(64)"`
	Assets     string         `json:"assets"            gorm:"type:varchar(64)"`
	Risk       string         `json:"risk"              gorm:"type:varchar(16);not null;check:risk IN ('Conservative','Moderate','Aggressive')"`
	Lifestyle  string         `json:"lifestyle"         gorm:"type:text"`
	Language   string         `json:"language"          gorm:"type:varchar(32);not null;default:'English'"`
	CreatedAt  time.Time      `json:"createdAt"         gorm:"index:idx_user_personas,priority:2"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-"                 gorm:"index"`
}

// TableName returns the database table name for Persona.
func (Persona) TableName() string { return "personas" }

// LanguageOrDefault returns the persona language, or DefaultLanguage when
// the persona is nil or names none.
func (p *Persona) LanguageOrDefault() string {
	if p == nil || p.Language == "" {
		return DefaultLanguage
	}
	return p.Language
}
