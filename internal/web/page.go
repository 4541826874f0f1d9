package web

import (
	"html/template"

	"github.com/starford/hotlines/internal/action"
	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/i18n"
	"github.com/starford/hotlines/internal/models"
	"github.com/starford/hotlines/internal/prefs"
)

type categoryButton struct {
	ID     string
	Label  string
	Active bool
}

type card struct {
	ID            string
	Name          string
	Description   string
	Number        string
	DialURL       template.URL
	NumberTitle   string
	DialPrompt    string
	CategoryLabel string
	Color         string
	Icon          string
	ShareCapable  bool
	Share         action.SharePayload
	ActionLabel   string
}

type pageData struct {
	Attrs         prefs.DocumentAttributes
	T             map[string]string
	ViewID        string
	Search        string
	Category      string
	Categories    []categoryButton
	Cards         []card
	NoResults     bool
	DarkMode      bool
	FeedbackEmail string
}

// primaryLabel is the text of a card's share/copy button for state.
func primaryLabel(lang models.Language, ctl *action.Controller, state action.State) string {
	if state == action.Confirming {
		return i18n.T(lang, i18n.NumberCopied)
	}
	if ctl.ShareCapable() {
		return i18n.T(lang, i18n.Share)
	}
	return i18n.T(lang, i18n.Copy)
}

func categoryButtons(cat *catalog.Catalog, lang models.Language, selected models.Category) []categoryButton {
	out := make([]categoryButton, 0, len(models.Categories)+1)
	out = append(out, categoryButton{
		ID:     string(models.CategoryAll),
		Label:  i18n.T(lang, i18n.All),
		Active: selected == models.CategoryAll,
	})
	for _, c := range models.Categories {
		out = append(out, categoryButton{
			ID:     string(c),
			Label:  cat.CategoryLabel(c, lang),
			Active: selected == c,
		})
	}
	return out
}

func cardFor(cat *catalog.Catalog, lang models.Language, ctl *action.Controller) card {
	c := ctl.Contact()
	return card{
		ID:            c.ID,
		Name:          c.Name.Get(lang),
		Description:   c.Description.Get(lang),
		Number:        c.Number,
		// Numbers are validated digits with an optional leading star.
		DialURL:       template.URL(c.DialURL()),
		NumberTitle:   i18n.T(lang, i18n.CallNow) + " " + c.Number,
		DialPrompt:    ctl.DialPrompt(),
		CategoryLabel: cat.CategoryLabel(c.Category, lang),
		Color:         catalog.ColorOf(c),
		Icon:          catalog.IconOf(c),
		ShareCapable:  ctl.ShareCapable(),
		Share:         ctl.SharePayload(),
		ActionLabel:   primaryLabel(lang, ctl, ctl.State()),
	}
}
