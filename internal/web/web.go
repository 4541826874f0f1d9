// Package web renders the directory page and dispatches card actions.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/hotlines/internal/action"
	"github.com/starford/hotlines/internal/apperr"
	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/clock"
	"github.com/starford/hotlines/internal/filter"
	"github.com/starford/hotlines/internal/i18n"
	"github.com/starford/hotlines/internal/models"
	"github.com/starford/hotlines/internal/prefs"
	"github.com/starford/hotlines/internal/session"
	"github.com/starford/hotlines/internal/sse"
)

//go:embed templates/page.html
var templates embed.FS

// Options configures the page handler.
type Options struct {
	// TrustedHosts are hosts served over plain HTTP that still count as secure contexts.
	TrustedHosts  []string
	BaseURL       string
	FeedbackEmail string
	ConfirmWindow time.Duration
	Clock         clock.Clock
	Logger        *slog.Logger
}

// Handler serves the directory page.
type Handler struct {
	catalog *catalog.Catalog
	prefs   *prefs.Store
	broker  *sse.Broker
	views   *session.Registry
	opts    Options
	page    *template.Template
}

// NewHandler creates a Handler.
func NewHandler(cat *catalog.Catalog, store *prefs.Store, broker *sse.Broker, views *session.Registry, opts Options) (*Handler, error) {
	page, err := template.ParseFS(templates, "templates/page.html")
	if err != nil {
		return nil, err
	}
	if opts.TrustedHosts == nil {
		opts.TrustedHosts = DefaultTrustedHosts
	}
	if opts.ConfirmWindow <= 0 {
		opts.ConfirmWindow = action.DefaultConfirmWindow
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		catalog: cat,
		prefs:   store,
		broker:  broker,
		views:   views,
		opts:    opts,
		page:    page,
	}, nil
}

// NewRouter mounts the page routes.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Page)
	r.Get("/events", h.Events)

	r.Post("/prefs/language/toggle", h.ToggleLanguage)
	r.Post("/prefs/theme/toggle", h.ToggleTheme)

	r.Post("/views/{view}/close", h.CloseView)
	r.Post("/views/{view}/cards/{card}/{action}", h.CardAction)

	return r
}

func criteriaFrom(values url.Values) models.Criteria {
	cat, err := models.ParseCategoryFilter(values.Get("category"))
	if err != nil {
		cat = models.CategoryAll
	}
	return models.Criteria{SearchTerm: values.Get("q"), Category: cat}
}

func (h *Handler) pageURL(r *http.Request) string {
	if h.opts.BaseURL != "" {
		return h.opts.BaseURL
	}
	scheme := "http"
	if secureContext(r, nil) {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

// Page handles GET /. Every render replaces the caller's previous view.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := criteriaFrom(q)
	p := h.prefs.Current()
	lang := p.Language

	view := h.views.Replace(q.Get("view"), criteria, lang)
	probe := shareProbe(r, h.opts.TrustedHosts)
	pageURL := h.pageURL(r)

	results := filter.Filter(h.catalog.Contacts(), h.catalog.Labels(), criteria)
	cards := make([]card, 0, len(results))
	for _, c := range results {
		ctl := action.New(c, lang, capabilitiesFor(h.broker, view.ID, c.ID, probe),
			action.WithClock(h.opts.Clock),
			action.WithConfirmWindow(h.opts.ConfirmWindow),
			action.WithLogger(h.opts.Logger),
			action.WithPageURL(pageURL),
		)
		ctl.OnChange(h.notifyState(view.ID, lang, ctl))
		view.Mount(ctl)
		cards = append(cards, cardFor(h.catalog, lang, ctl))
	}

	data := pageData{
		Attrs:         prefs.Attributes(p),
		T:             i18n.Default.Table(lang),
		ViewID:        view.ID,
		Search:        criteria.SearchTerm,
		Category:      string(criteria.Category),
		Categories:    categoryButtons(h.catalog, lang, criteria.Category),
		Cards:         cards,
		NoResults:     len(cards) == 0,
		DarkMode:      p.DarkMode,
		FeedbackEmail: h.opts.FeedbackEmail,
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		h.opts.Logger.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) notifyState(viewID string, lang models.Language, ctl *action.Controller) func(action.State) {
	return func(s action.State) {
		h.broker.Publish(viewID, sse.Event{
			Type: EventCardState,
			Data: map[string]string{
				"card":  ctl.Contact().ID,
				"state": s.String(),
				"label": primaryLabel(lang, ctl, s),
			},
		})
	}
}

// Events handles GET /events?view=<id>.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("view")
	if _, err := h.views.Get(id); err != nil {
		http.Error(w, "unknown view", http.StatusNotFound)
		return
	}
	h.broker.ServeTopic(w, r, id)
}

// Active reports whether a page is listening on view id.
func (h *Handler) Active(id string) bool {
	return h.broker.ClientCount(id) > 0
}

// ToggleLanguage handles POST /prefs/language/toggle.
func (h *Handler) ToggleLanguage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.prefs.ToggleLanguage(); err != nil {
		h.opts.Logger.Error("toggle language failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.redirectBack(w, r)
}

// ToggleTheme handles POST /prefs/theme/toggle.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if _, err := h.prefs.ToggleTheme(); err != nil {
		h.opts.Logger.Error("toggle theme failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.redirectBack(w, r)
}

// redirectBack sends the browser to the page it came from, keeping its filter.
func (h *Handler) redirectBack(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	v := url.Values{}
	for _, k := range []string{"view", "q", "category"} {
		if s := r.PostFormValue(k); s != "" {
			v.Set(k, s)
		}
	}
	target := "/"
	if len(v) > 0 {
		target += "?" + v.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// CloseView handles POST /views/{view}/close, sent when the page goes away.
func (h *Handler) CloseView(w http.ResponseWriter, r *http.Request) {
	h.views.Remove(chi.URLParam(r, "view"))
	w.WriteHeader(http.StatusNoContent)
}

// CardAction handles POST /views/{view}/cards/{card}/{action}.
func (h *Handler) CardAction(w http.ResponseWriter, r *http.Request) {
	view, err := h.views.Get(chi.URLParam(r, "view"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	ctl, err := view.Card(chi.URLParam(r, "card"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx := r.Context()
	switch chi.URLParam(r, "action") {
	case "primary":
		ctl.Primary(ctx)
	case "copy":
		ctl.Copy(ctx)
	case "call":
		ctl.Call(ctx)
	case "dial":
		ctl.DialNumber(ctx, answered(r.FormValue("answer")))
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// answered turns the page's reply to the dial prompt into a Confirmer.
func answered(answer string) action.Confirmer {
	yes, err := strconv.ParseBool(answer)
	if err != nil {
		yes = strings.EqualFold(answer, "yes")
	}
	return action.ConfirmFunc(func(_ context.Context, _ string) bool { return yes })
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnknownView):
		http.Error(w, "unknown view", http.StatusNotFound)
	case errors.Is(err, apperr.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		h.opts.Logger.Error("card action failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
