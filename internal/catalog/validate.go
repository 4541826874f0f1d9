package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/hotlines/internal/models"
)

// Palette is the closed set of color tokens a contact may carry.
var Palette = []string{
	"red", "blue", "orange", "yellow", "green", "purple", "indigo",
	"pink", "rose", "teal", "stone", "sky", "slate",
}

// Icons is the set of icon tokens the page knows how to draw.
var Icons = []string{
	"Shield", "Ambulance", "Flame", "Zap", "Siren", "ShieldAlert", "Building2",
	"PhoneCall", "HeartHandshake", "Lock", "Stethoscope", "Activity", "Ear",
	"Heart", "Landmark",
}

const (
	fallbackColor = "gray"
	fallbackIcon  = "Phone"
)

// dial strings: digits with an optional leading * for short codes.
var numberRe = regexp.MustCompile(`^\*?[0-9]+$`)

// ColorOf returns the contact's color token, or the neutral fallback when it is not in Palette.
func ColorOf(c models.Contact) string {
	for _, p := range Palette {
		if p == c.Color {
			return p
		}
	}
	return fallbackColor
}

// IconOf returns the contact's icon token, or the generic phone icon when unknown.
func IconOf(c models.Contact) string {
	for _, i := range Icons {
		if i == c.Icon {
			return i
		}
	}
	return fallbackIcon
}

// localized is a rule requiring a LocalizedText entry for every supported language.
var localized = validation.By(func(value interface{}) error {
	t, ok := value.(models.LocalizedText)
	if !ok {
		return errors.New("must be localized text")
	}
	if missing := t.Missing(); len(missing) > 0 {
		langs := make([]string, len(missing))
		for i, l := range missing {
			langs[i] = string(l)
		}
		return fmt.Errorf("missing translation for %s", strings.Join(langs, ", "))
	}
	return nil
})

func categoryValues() []interface{} {
	out := make([]interface{}, len(models.Categories))
	for i, c := range models.Categories {
		out[i] = c
	}
	return out
}

func paletteValues() []interface{} {
	out := make([]interface{}, len(Palette))
	for i, p := range Palette {
		out[i] = p
	}
	return out
}

func validateContact(c *models.Contact) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required),
		validation.Field(&c.Number, validation.Required, validation.Match(numberRe)),
		validation.Field(&c.Name, validation.Required, localized),
		validation.Field(&c.Description, validation.Required, localized),
		validation.Field(&c.Category, validation.Required, validation.In(categoryValues()...)),
		validation.Field(&c.Color, validation.Required, validation.In(paletteValues()...)),
		validation.Field(&c.Keywords, validation.Each(validation.Required)),
	)
}

// Validate checks the data-integrity invariants of a catalog: unique ids,
// total localization, known categories and colors, and a label for every category.
func Validate(contacts []models.Contact, labels models.CategoryLabels) error {
	if len(contacts) == 0 {
		return errors.New("no contacts")
	}
	for _, cat := range models.Categories {
		t, ok := labels[cat]
		if !ok {
			return fmt.Errorf("category %s: missing label", cat)
		}
		if missing := t.Missing(); len(missing) > 0 {
			return fmt.Errorf("category %s: missing label translation for %v", cat, missing)
		}
	}
	for cat := range labels {
		if !cat.Valid() {
			return fmt.Errorf("label for unknown category %q", cat)
		}
	}

	seen := make(map[string]struct{}, len(contacts))
	for i := range contacts {
		c := &contacts[i]
		if err := validateContact(c); err != nil {
			return fmt.Errorf("contact %d (%q): %w", i, c.ID, err)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("contact %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
