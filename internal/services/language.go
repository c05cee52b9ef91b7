package services

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

var (
	languageNamer = display.English.Languages()
	tagRE         = regexp.MustCompile(`^[A-Za-z]{2,3}(?:[-_][A-Za-z0-9]{2,8})*$`)
)

// CanonicalLanguage maps a language tag such as "th" or "pt-BR" to its
// English name and title-cases free-form names. Blank input gives
// domain.DefaultLanguage.
func CanonicalLanguage(s string) string {
	s = squash(s)
	if s == "" {
		return domain.DefaultLanguage
	}
	if tagRE.MatchString(s) {
		if tag, err := language.Parse(s); err == nil && tag != language.Und {
			if name := languageNamer.Name(tag); name != "" {
				return name
			}
		}
	}
	return cases.Title(language.English).String(strings.ToLower(s))
}

// knownLanguages are the tags LanguageTag can resolve from a display name.
var knownLanguages = []language.Tag{
	language.Afrikaans, language.Amharic, language.Arabic, language.Azerbaijani,
	language.Bulgarian, language.Bengali, language.Catalan, language.Czech,
	language.Danish, language.German, language.Greek, language.English,
	language.AmericanEnglish, language.BritishEnglish, language.Spanish,
	language.LatinAmericanSpanish, language.Estonian, language.Persian,
	language.Finnish, language.Filipino, language.French,
	language.CanadianFrench, language.Gujarati, language.Hebrew, language.Hindi,
	language.Croatian, language.Hungarian, language.Armenian,
	language.Indonesian, language.Icelandic, language.Italian,
	language.Japanese, language.Georgian, language.Kazakh, language.Khmer,
	language.Kannada, language.Korean, language.Kirghiz, language.Lao,
	language.Lithuanian, language.Latvian, language.Macedonian,
	language.Malayalam, language.Mongolian, language.Marathi, language.Malay,
	language.Burmese, language.Nepali, language.Dutch, language.Norwegian,
	language.Punjabi, language.Polish, language.Portuguese,
	language.BrazilianPortuguese, language.EuropeanPortuguese,
	language.Romanian, language.Russian, language.Sinhala, language.Slovak,
	language.Slovenian, language.Albanian, language.Serbian,
	language.Swedish, language.Swahili, language.Tamil, language.Telugu,
	language.Thai, language.Turkish, language.Ukrainian, language.Urdu,
	language.Uzbek, language.Vietnamese, language.Chinese,
	language.SimplifiedChinese, language.TraditionalChinese, language.Zulu,
}

var (
	tagsByNameOnce sync.Once
	tagsByName     map[string]language.Tag
)

// LanguageTag resolves a display name ("Thai", "Brazilian Portuguese") or a
// tag ("pt-BR") to a BCP-47 tag. Unknown names report false.
func LanguageTag(name string) (language.Tag, bool) {
	tagsByNameOnce.Do(func() {
		tagsByName = make(map[string]language.Tag, len(knownLanguages))
		for _, t := range knownLanguages {
			tagsByName[strings.ToLower(languageNamer.Name(t))] = t
		}
	})

	name = squash(name)
	if name == "" {
		return language.English, true
	}
	if t, ok := tagsByName[strings.ToLower(name)]; ok {
		return t, true
	}
	if tagRE.MatchString(name) {
		if t, err := language.Parse(name); err == nil && t != language.Und {
			return t, true
		}
	}
	return language.Und, false
}
