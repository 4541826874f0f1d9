package prefs

import "github.com/starford/hotlines/internal/models"

// DocumentAttributes are the root-element attributes derived from preferences.
type DocumentAttributes struct {
	Dir        string `json:"dir"`
	Lang       string `json:"lang"`
	ThemeClass string `json:"theme_class"`
}

// Attributes maps preferences to document attributes. It depends only on p.
func Attributes(p models.Preferences) DocumentAttributes {
	a := DocumentAttributes{
		Dir:  p.Language.Direction(),
		Lang: p.Language.Tag(),
	}
	if p.DarkMode {
		a.ThemeClass = ThemeDark
	}
	return a
}
