// Package services – PersonaService
//
// This file implements PersonaService, which manages the user's library of
// practice personas. It normalizes and validates persona fields before they
// are stored, enforces ownership on reads and deletes, and serves the preset
// persona templates.
//
// Personas are immutable after creation; the only mutation is a soft delete.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

// PersonaRepo defines the repository contract required by PersonaService.
type PersonaRepo interface {
	// CreatePersona inserts a new persona row.
	CreatePersona(ctx context.Context, db *gorm.DB, p *domain.Persona) (*domain.Persona, error)

	// GetPersona fetches a persona by id, ensuring it belongs to the user.
	GetPersona(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Persona, error)

	// CountPersonas returns the number of live personas for pagination.
	CountPersonas(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// ListPersonasPage returns a page of the user's personas, newest first.
	ListPersonasPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Persona, error)

	// DeletePersona soft-deletes a persona owned by the user.
	DeletePersona(ctx context.Context, db *gorm.DB, id, userID string) error
}

// PersonaService provides the persona library operations.
type PersonaService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the persona repository used by this service.
	Repo PersonaRepo

	// FieldMaxLen caps short text fields by rune length.
	FieldMaxLen int
	// LifestyleMaxLen caps the free-form lifestyle description.
	LifestyleMaxLen int

	templates []domain.Persona
}

// NewPersonaService constructs a PersonaService serving the built-in
// templates.
func NewPersonaService(db *gorm.DB, r PersonaRepo) *PersonaService {
	return &PersonaService{
		DB:              db,
		Repo:            r,
		FieldMaxLen:     120,
		LifestyleMaxLen: 2000,
		templates:       DefaultTemplates(),
	}
}

// SetTemplates replaces the template list. An empty list restores the
// built-in presets.
func (s *PersonaService) SetTemplates(ts []domain.Persona) {
	if len(ts) == 0 {
		ts = DefaultTemplates()
	}
	s.templates = ts
}

// Templates returns a copy of the preset personas.
func (s *PersonaService) Templates() []domain.Persona {
	out := make([]domain.Persona, len(s.templates))
	copy(out, s.templates)
	return out
}

// Create validates and stores a new persona owned by userID. Server-managed
// fields in in (ID, owner, timestamps) are ignored.
func (s *PersonaService) Create(ctx context.Context, userID string, in domain.Persona) (*domain.Persona, error) {
	p, err := s.Normalize(in)
	if err != nil {
		return nil, err
	}
	p.UserID = userID
	return s.Repo.CreatePersona(ctx, s.DB, &p)
}

// Normalize returns a cleaned copy of in: whitespace trimmed and collapsed,
// long fields clipped, risk title-cased and checked, and the language
// defaulted and canonicalized. Server-managed fields are cleared.
func (s *PersonaService) Normalize(in domain.Persona) (domain.Persona, error) {
	p := domain.Persona{
		Name:       s.clip(squash(in.Name), s.FieldMaxLen),
		Age:        domain.Age(s.clip(squash(string(in.Age)), 16)),
		Gender:     s.clip(squash(in.Gender), 32),
		Occupation: s.clip(squash(in.Occupation), s.FieldMaxLen),
		Income:     s.clip(squash(in.Income), 64),
		Assets:     s.clip(squash(in.Assets), 64),
		Lifestyle:  s.clip(strings.TrimSpace(in.Lifestyle), s.LifestyleMaxLen),
		Language:   CanonicalLanguage(in.Language),
	}
	risk, err := NormalizeRisk(in.Risk)
	if err != nil {
		return domain.Persona{}, err
	}
	p.Risk = risk

	if err := validatePersona(&p); err != nil {
		return domain.Persona{}, err
	}
	return p, nil
}

// Get returns one persona owned by userID.
func (s *PersonaService) Get(ctx context.Context, userID, id string) (*domain.Persona, error) {
	p, err := s.Repo.GetPersona(ctx, s.DB, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPersonaNotFound
	}
	return p, err
}

// ListPage returns a page of the user's personas and the total count.
// Invalid page/pageSize values fall back to 1 and 20.
func (s *PersonaService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Persona, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountPersonas(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Persona{}, 0, nil
	}

	items, err := s.Repo.ListPersonasPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// Delete soft-deletes a persona owned by userID.
func (s *PersonaService) Delete(ctx context.Context, userID, id string) error {
	err := s.Repo.DeletePersona(ctx, s.DB, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPersonaNotFound
	}
	return err
}

// NormalizeRisk title-cases r and checks it against the known levels.
func NormalizeRisk(r string) (string, error) {
	t := cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(r)))
	switch t {
	case domain.RiskConservative, domain.RiskModerate, domain.RiskAggressive:
		return t, nil
	default:
		return "", ErrInvalidRisk
	}
}

func (s *PersonaService) clip(v string, n int) string {
	if n > 0 && utf8.RuneCountInString(v) > n {
		return string([]rune(v)[:n])
	}
	return v
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
