package api

import (
	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/models"
	"github.com/starford/hotlines/internal/prefs"
)

// ContactItem is a contact rendered in one language.
type ContactItem struct {
	ID            string   `json:"id" example:"100" validate:"required"`
	Number        string   `json:"number" example:"100" validate:"required"`
	Name          string   `json:"name" example:"Israel Police" validate:"required"`
	Description   string   `json:"description" example:"Police Emergency Hotline" validate:"required"`
	Category      string   `json:"category" example:"EMERGENCY" validate:"required"`
	CategoryLabel string   `json:"category_label" example:"Emergency" validate:"required"`
	Color         string   `json:"color" example:"blue" validate:"required"`
	Icon          string   `json:"icon" example:"Shield" validate:"required"`
	DialURL       string   `json:"dial_url" example:"tel:100" validate:"required"`
	Keywords      []string `json:"keywords,omitempty"`
}

// ContactListResponse wraps a filter result.
type ContactListResponse struct {
	Contacts []ContactItem `json:"contacts" validate:"required"`
	Total    int           `json:"total" example:"21" validate:"required"`
}

// CategoryItem is one category with its label.
type CategoryItem struct {
	ID    string `json:"id" example:"HEALTH" validate:"required"`
	Label string `json:"label" example:"Health Funds" validate:"required"`
}

// PreferencesResponse describes the current preferences and the page attributes they produce.
type PreferencesResponse struct {
	Language   string                   `json:"language" example:"he" validate:"required"`
	DarkMode   bool                     `json:"dark_mode" example:"true"`
	Attributes prefs.DocumentAttributes `json:"attributes" validate:"required"`
}

func contactItem(cat *catalog.Catalog, c models.Contact, lang models.Language) ContactItem {
	return ContactItem{
		ID:            c.ID,
		Number:        c.Number,
		Name:          c.Name.Get(lang),
		Description:   c.Description.Get(lang),
		Category:      string(c.Category),
		CategoryLabel: cat.CategoryLabel(c.Category, lang),
		Color:         catalog.ColorOf(c),
		Icon:          catalog.IconOf(c),
		DialURL:       c.DialURL(),
		Keywords:      c.Keywords,
	}
}
