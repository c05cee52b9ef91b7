package services

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

// DefaultTemplates returns the built-in preset personas.
func DefaultTemplates() []domain.Persona {
	return []domain.Persona{
		{
			ID:         "tech-entrepreneur",
			Name:       "Tech Entrepreneur",
			Occupation: "Software Company CEO",
			Income:     "$500,000",
			Assets:     "$2,500,000",
			Risk:       domain.RiskAggressive,
			Lifestyle:  "Fast-paced, innovation-focused, values growth over stability",
			Language:   domain.DefaultLanguage,
		},
		{
			ID:         "retired-teacher",
			Name:       "Retired Teacher",
			Occupation: "Retired Educator",
			Income:     "$45,000",
			Assets:     "$800,000",
			Risk:       domain.RiskConservative,
			Lifestyle:  "Stable, community-oriented, values security and legacy",
			Language:   domain.DefaultLanguage,
		},
		{
			ID:         "young-professional",
			Name:       "Young Professional",
			Occupation: "Marketing Manager",
			Income:     "$85,000",
			Assets:     "$150,000",
			Risk:       domain.RiskModerate,
			Lifestyle:  "Career-focused, social, balancing present enjoyment with future planning",
			Language:   domain.DefaultLanguage,
		},
	}
}

type templateFile struct {
	Persona []templateEntry `toml:"persona"`
}

type templateEntry struct {
	ID         string `toml:"id"`
	Name       string `toml:"name"`
	Age        string `toml:"age"`
	Gender     string `toml:"gender"`
	Occupation string `toml:"occupation"`
	Income     string `toml:"income"`
	Assets     string `toml:"assets"`
	Risk       string `toml:"risk"`
	Lifestyle  string `toml:"lifestyle"`
	Language   string `toml:"language"`
}

// LoadTemplates reads persona templates from a TOML file of [[persona]]
// tables. Every entry is normalized like a user-created persona; unknown
// keys and invalid entries are errors.
func LoadTemplates(path string) ([]domain.Persona, error) {
	var f templateFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("persona templates: %w", err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, 0, len(und))
		for _, k := range und {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("persona templates: unknown keys %s", strings.Join(keys, ", "))
	}

	norm := &PersonaService{FieldMaxLen: 120, LifestyleMaxLen: 2000}
	out := make([]domain.Persona, 0, len(f.Persona))
	seen := make(map[string]struct{}, len(f.Persona))
	for i, e := range f.Persona {
		p, err := norm.Normalize(domain.Persona{
			Name:       e.Name,
			Age:        domain.Age(e.Age),
			Gender:     e.Gender,
			Occupation: e.Occupation,
			Income:     e.Income,
			Assets:     e.Assets,
			Risk:       e.Risk,
			Lifestyle:  e.Lifestyle,
			Language:   e.Language,
		})
		if err != nil {
			return nil, fmt.Errorf("persona templates: entry %d: %w", i+1, err)
		}
		p.ID = strings.TrimSpace(e.ID)
		if p.ID == "" {
			p.ID = slug(p.Name)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("persona templates: duplicate id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// slug lower-cases s and joins its words with hyphens.
func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
