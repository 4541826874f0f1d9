package mcpserver

import (
	"strings"

	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/models"
)

// SearchGuide returns a Markdown description of how the directory is searched,
// listing every category in English.
func SearchGuide(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(`# Hotlines Search Guide

The directory lists emergency and public-service phone numbers in Israel.

## Matching

- The query is trimmed and compared case-insensitively as a substring.
- It is matched against the contact's name and description in every language
  (Hebrew, English, Russian), its dial number, its keywords and its category labels.
- An empty query matches everything.
- A category narrows the results; ` + "`ALL`" + ` (or no category) applies no narrowing.
- Results keep directory order.

## Languages

` + "`he`" + ` (default, right-to-left), ` + "`en`" + `, ` + "`ru`" + `.

## Categories

`)
	for _, c := range models.Categories {
		b.WriteString("- `" + string(c) + "`: " + cat.CategoryLabel(c, models.LangEnglish) + "\n")
	}
	b.WriteString(`
## Dialing

Numbers are digits, optionally with a leading ` + "`*`" + ` for short codes.
Dial them as ` + "`tel:<number>`" + `.
`)
	return b.String()
}
