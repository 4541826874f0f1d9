package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/prefs"
)

// RouterConfig tunes the API router.
type RouterConfig struct {
	RPS   float64
	Burst int
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(cat *catalog.Catalog, store *prefs.Store, cfg RouterConfig) chi.Router {
	h := NewHandler(cat, store)

	r := chi.NewRouter()
	r.Use(RateLimit(cfg.RPS, cfg.Burst))

	r.Get("/contacts", h.ListContacts)
	r.Get("/contacts/{id}", h.GetContact)
	r.Get("/categories", h.ListCategories)
	r.Get("/preferences", h.GetPreferences)

	return r
}
