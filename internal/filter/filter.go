// Package filter implements the directory's search and category filter.
package filter

import (
	"strings"

	"github.com/starford/hotlines/internal/models"
)

// Filter returns the contacts matching c, in catalog order.
//
// An empty (or whitespace-only) term with CategoryAll returns contacts itself,
// not a copy. Otherwise the result is a new slice, empty when nothing matches.
func Filter(contacts []models.Contact, labels models.CategoryLabels, c models.Criteria) []models.Contact {
	term := normalize(c.SearchTerm)
	cat := c.Category
	if cat == "" {
		cat = models.CategoryAll
	}
	if term == "" && cat == models.CategoryAll {
		return contacts
	}

	out := make([]models.Contact, 0)
	for _, contact := range contacts {
		if matchesCategory(contact, cat) && matchesTerm(contact, labels, term) {
			out = append(out, contact)
		}
	}
	return out
}

// Matches reports whether a single contact satisfies c.
func Matches(contact models.Contact, labels models.CategoryLabels, c models.Criteria) bool {
	cat := c.Category
	if cat == "" {
		cat = models.CategoryAll
	}
	return matchesCategory(contact, cat) && matchesTerm(contact, labels, normalize(c.SearchTerm))
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

func matchesCategory(contact models.Contact, cat models.Category) bool {
	return cat == models.CategoryAll || contact.Category == cat
}

// matchesTerm expects term already normalized. All fields carry equal weight.
func matchesTerm(contact models.Contact, labels models.CategoryLabels, term string) bool {
	if term == "" {
		return true
	}
	return anyContains(contact.Name.Values(), term) ||
		anyContains(contact.Description.Values(), term) ||
		contains(contact.Number, term) ||
		anyContains(contact.Keywords, term) ||
		anyContains(labels[contact.Category].Values(), term)
}

func anyContains(values []string, term string) bool {
	for _, v := range values {
		if contains(v, term) {
			return true
		}
	}
	return false
}

func contains(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}
