package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hotlines/internal/apperr"
	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/filter"
	"github.com/starford/hotlines/internal/models"
	"github.com/starford/hotlines/internal/prefs"
)

// Handler holds API route handlers.
type Handler struct {
	catalog *catalog.Catalog
	prefs   *prefs.Store
}

// NewHandler creates a new Handler.
func NewHandler(cat *catalog.Catalog, store *prefs.Store) *Handler {
	return &Handler{catalog: cat, prefs: store}
}

// language resolves ?lang=, defaulting to the stored preference.
func (h *Handler) language(r *http.Request) (models.Language, error) {
	code := r.URL.Query().Get("lang")
	if code == "" {
		return h.prefs.Current().Language, nil
	}
	lang, ok := models.ParseLanguage(code)
	if !ok {
		return "", apperr.ErrInvalidLanguage
	}
	return lang, nil
}

func (h *Handler) etag(w http.ResponseWriter) {
	w.Header().Set("ETag", `"`+h.catalog.Fingerprint()+`"`)
}

// ListContacts handles GET /api/contacts.
//
//	@Summary		Filter the directory
//	@Tags			contacts
//	@Produce		json
//	@Param			q			query		string	false	"Search term"
//	@Param			category	query		string	false	"Category or ALL"
//	@Param			lang		query		string	false	"Language"	Enums(he, en, ru)
//	@Success		200			{object}	ContactListResponse
//	@Failure		400			{object}	errResponse
//	@Router			/contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	cat, err := models.ParseCategoryFilter(q.Get("category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown category"))
		return
	}
	lang, err := h.language(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported language"))
		return
	}

	results := filter.Filter(h.catalog.Contacts(), h.catalog.Labels(), models.Criteria{
		SearchTerm: q.Get("q"),
		Category:   cat,
	})
	items := make([]ContactItem, 0, len(results))
	for _, c := range results {
		items = append(items, contactItem(h.catalog, c, lang))
	}

	h.etag(w)
	writeJSON(w, http.StatusOK, ContactListResponse{Contacts: items, Total: len(items)})
}

// GetContact handles GET /api/contacts/{id}.
//
//	@Summary		Get a single contact
//	@Tags			contacts
//	@Produce		json
//	@Param			id		path		string	true	"Contact id"
//	@Param			lang	query		string	false	"Language"	Enums(he, en, ru)
//	@Success		200		{object}	ContactItem
//	@Failure		404		{object}	errResponse
//	@Router			/contacts/{id} [get]
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lang, err := h.language(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported language"))
		return
	}
	c, err := h.catalog.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get contact failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.etag(w)
	writeJSON(w, http.StatusOK, contactItem(h.catalog, c, lang))
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List categories in display order
//	@Tags			contacts
//	@Produce		json
//	@Param			lang	query		string	false	"Language"	Enums(he, en, ru)
//	@Success		200		{array}		CategoryItem
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	lang, err := h.language(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("unsupported language"))
		return
	}
	out := make([]CategoryItem, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, CategoryItem{ID: string(c), Label: h.catalog.CategoryLabel(c, lang)})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPreferences handles GET /api/preferences.
//
//	@Summary		Current language and theme
//	@Tags			preferences
//	@Produce		json
//	@Success		200	{object}	PreferencesResponse
//	@Router			/preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, _ *http.Request) {
	p := h.prefs.Current()
	writeJSON(w, http.StatusOK, PreferencesResponse{
		Language:   string(p.Language),
		DarkMode:   p.DarkMode,
		Attributes: prefs.Attributes(p),
	})
}
