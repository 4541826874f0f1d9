// Package models defines the domain types for Hotlines.
package models

import (
	"fmt"
	"strings"

	"github.com/starford/hotlines/internal/apperr"
)

// Language is a supported UI locale.
type Language string

// Supported languages. Order is the toggle cycle order; the first entry is the default.
const (
	LangHebrew  Language = "he"
	LangEnglish Language = "en"
	LangRussian Language = "ru"
)

// Languages lists every supported language in cycle order.
var Languages = []Language{LangHebrew, LangEnglish, LangRussian}

// DefaultLanguage is used when no valid preference is stored.
const DefaultLanguage = LangHebrew

// rtlLanguage is the only language rendered right-to-left.
const rtlLanguage = LangHebrew

// ParseLanguage returns the Language for code, ignoring case and surrounding space.
func ParseLanguage(code string) (Language, bool) {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	if l.Valid() {
		return l, true
	}
	return "", false
}

// Valid reports whether l is one of Languages.
func (l Language) Valid() bool {
	for _, s := range Languages {
		if s == l {
			return true
		}
	}
	return false
}

// Next returns the language that follows l in the cycle.
// Unsupported values restart the cycle at the default language.
func (l Language) Next() Language {
	for i, s := range Languages {
		if s == l {
			return Languages[(i+1)%len(Languages)]
		}
	}
	return DefaultLanguage
}

// Direction returns the text direction, "rtl" or "ltr".
func (l Language) Direction() string {
	if l == rtlLanguage {
		return "rtl"
	}
	return "ltr"
}

// Tag returns the locale tag used for the document lang attribute.
func (l Language) Tag() string {
	return string(l)
}

// Category is a contact's domain category.
type Category string

// Categories of the directory.
const (
	CategoryEmergency  Category = "EMERGENCY"
	CategoryHealth     Category = "HEALTH"
	CategoryUtility    Category = "UTILITY"
	CategorySecurity   Category = "SECURITY"
	CategoryWelfare    Category = "WELFARE"
	CategoryGovernment Category = "GOVERNMENT"

	// CategoryAll is the filter sentinel matching every category. It is never a record category.
	CategoryAll Category = "ALL"
)

// Categories lists every record category in display order.
var Categories = []Category{
	CategoryEmergency,
	CategoryHealth,
	CategoryUtility,
	CategorySecurity,
	CategoryWelfare,
	CategoryGovernment,
}

// Valid reports whether c is a record category (CategoryAll is not).
func (c Category) Valid() bool {
	for _, s := range Categories {
		if s == c {
			return true
		}
	}
	return false
}

// ParseCategoryFilter parses a filter value. Empty input means CategoryAll.
func ParseCategoryFilter(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if c == "" || c == CategoryAll {
		return CategoryAll, nil
	}
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", apperr.ErrInvalidCategory, s)
	}
	return c, nil
}

// LocalizedText maps every supported language to a display string.
type LocalizedText map[Language]string

// Get returns the text for lang, falling back to the default language.
func (t LocalizedText) Get(lang Language) string {
	if s, ok := t[lang]; ok {
		return s
	}
	return t[DefaultLanguage]
}

// Values returns the text of every supported language in Languages order.
func (t LocalizedText) Values() []string {
	out := make([]string, 0, len(Languages))
	for _, l := range Languages {
		if s, ok := t[l]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Missing returns the supported languages that have no entry in t.
func (t LocalizedText) Missing() []Language {
	var out []Language
	for _, l := range Languages {
		if strings.TrimSpace(t[l]) == "" {
			out = append(out, l)
		}
	}
	return out
}

// Contact is one directory entry.
type Contact struct {
	ID          string        `yaml:"id" json:"id"`
	Number      string        `yaml:"number" json:"number"`
	Name        LocalizedText `yaml:"name" json:"name"`
	Description LocalizedText `yaml:"description" json:"description"`
	Category    Category      `yaml:"category" json:"category"`
	Color       string        `yaml:"color" json:"color"`
	Icon        string        `yaml:"icon" json:"icon"`
	Keywords    []string      `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// DialURL returns the tel: target for the contact's number.
func (c Contact) DialURL() string {
	return "tel:" + c.Number
}

// Preferences are the persisted user preferences.
type Preferences struct {
	Language Language `json:"language"`
	DarkMode bool     `json:"dark_mode"`
}

// DefaultPreferences returns the preferences used when nothing valid is stored.
func DefaultPreferences() Preferences {
	return Preferences{Language: DefaultLanguage, DarkMode: true}
}

// Criteria is the current search text and category selection.
type Criteria struct {
	SearchTerm string   `json:"search_term"`
	Category   Category `json:"category"`
}

// DefaultCriteria returns the reset state: empty term, all categories.
func DefaultCriteria() Criteria {
	return Criteria{Category: CategoryAll}
}

// WithCategory selects c and clears the search term.
func (c Criteria) WithCategory(cat Category) Criteria {
	return Criteria{Category: cat}
}

// IsDefault reports whether the criteria match every record trivially.
func (c Criteria) IsDefault() bool {
	return strings.TrimSpace(c.SearchTerm) == "" && (c.Category == CategoryAll || c.Category == "")
}

// CategoryLabels maps every category to its localized display label.
type CategoryLabels map[Category]LocalizedText
