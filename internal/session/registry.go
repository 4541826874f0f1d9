// Package session tracks the rendered pages ("views") of the shell and the
// card controllers mounted on each of them.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/hotlines/internal/action"
	"github.com/starford/hotlines/internal/apperr"
	"github.com/starford/hotlines/internal/clock"
	"github.com/starford/hotlines/internal/models"
)

// DefaultIdleTTL is how long a view survives without requests or a live stream.
const DefaultIdleTTL = 30 * time.Minute

// View is one rendered page.
type View struct {
	ID       string
	Criteria models.Criteria
	Lang     models.Language

	mu       sync.Mutex
	cards    map[string]*action.Controller
	order    []string
	lastSeen time.Time
	closed   bool
}

// Mount attaches ctl to the view, replacing any card with the same contact id.
// Mounting on a closed view unmounts ctl immediately.
func (v *View) Mount(ctl *action.Controller) {
	id := ctl.Contact().ID

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		ctl.Unmount()
		return
	}
	prev, exists := v.cards[id]
	v.cards[id] = ctl
	if !exists {
		v.order = append(v.order, id)
	}
	v.mu.Unlock()

	if exists {
		prev.Unmount()
	}
}

// Card returns the controller mounted for contact id.
func (v *View) Card(id string) (*action.Controller, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ctl, ok := v.cards[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return ctl, nil
}

// Cards returns the mounted controllers in mount order.
func (v *View) Cards() []*action.Controller {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*action.Controller, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.cards[id])
	}
	return out
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

// close unmounts every card. It is idempotent.
func (v *View) close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	cards := v.cards
	v.cards = map[string]*action.Controller{}
	v.order = nil
	v.mu.Unlock()

	for _, ctl := range cards {
		ctl.Unmount()
	}
}

// Registry owns all live views.
type Registry struct {
	clock  clock.Clock
	ttl    time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	views map[string]*View
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithIdleTTL sets the eviction threshold.
func WithIdleTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.ttl = d
		}
	}
}

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		clock:  clock.Real{},
		ttl:    DefaultIdleTTL,
		logger: slog.Default(),
		views:  make(map[string]*View),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new view for criteria rendered in lang.
func (r *Registry) Create(criteria models.Criteria, lang models.Language) *View {
	v := &View{
		ID:       uuid.NewString(),
		Criteria: criteria,
		Lang:     lang,
		cards:    make(map[string]*action.Controller),
		lastSeen: r.clock.Now(),
	}
	r.mu.Lock()
	r.views[v.ID] = v
	r.mu.Unlock()
	return v
}

// Replace closes the view previous (if it is still registered) and creates a
// fresh one. It is used when a page is re-rendered.
func (r *Registry) Replace(previous string, criteria models.Criteria, lang models.Language) *View {
	if previous != "" {
		r.Remove(previous)
	}
	return r.Create(criteria, lang)
}

// Get returns the view with id and marks it as seen.
func (r *Registry) Get(id string) (*View, error) {
	r.mu.Lock()
	v, ok := r.views[id]
	r.mu.Unlock()
	if !ok {
		return nil, apperr.ErrUnknownView
	}
	v.touch(r.clock.Now())
	return v, nil
}

// Remove closes and forgets the view. Unknown ids are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	v, ok := r.views[id]
	delete(r.views, id)
	r.mu.Unlock()
	if ok {
		v.close()
	}
}

// Len returns the number of live views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep evicts views idle for longer than the TTL. A view for which active
// reports true is treated as seen now. It returns the number evicted.
func (r *Registry) Sweep(active func(id string) bool) int {
	now := r.clock.Now()

	r.mu.Lock()
	var stale []*View
	for id, v := range r.views {
		if active != nil && active(id) {
			v.touch(now)
			continue
		}
		if now.Sub(v.idleSince()) >= r.ttl {
			stale = append(stale, v)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, v := range stale {
		v.close()
	}
	if len(stale) > 0 {
		r.logger.Debug("evicted idle views", slog.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done, then closes all views.
func (r *Registry) Run(ctx context.Context, interval time.Duration, active func(id string) bool) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Sweep(active)
		}
	}
}

// Close unmounts every card of every view.
func (r *Registry) Close() {
	r.mu.Lock()
	views := r.views
	r.views = make(map[string]*View)
	r.mu.Unlock()

	for _, v := range views {
		v.close()
	}
}
