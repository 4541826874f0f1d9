// Package action implements the per-card interaction state machine:
// share, copy with a debounced confirmation, and dialing.
package action

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/hotlines/internal/clock"
	"github.com/starford/hotlines/internal/i18n"
	"github.com/starford/hotlines/internal/models"
)

// DefaultConfirmWindow is how long the "copied" confirmation stays visible after the last copy.
const DefaultConfirmWindow = 2000 * time.Millisecond

// State is the confirmation state of a card.
type State int

const (
	Idle State = iota
	Confirming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithConfirmWindow overrides DefaultConfirmWindow.
func WithConfirmWindow(d time.Duration) Option {
	return func(ctl *Controller) {
		if d > 0 {
			ctl.window = d
		}
	}
}

// WithLogger sets the logger used for swallowed capability failures.
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) { ctl.logger = l }
}

// WithPageURL sets the URL included in share payloads.
func WithPageURL(u string) Option {
	return func(ctl *Controller) { ctl.pageURL = u }
}

// Controller owns the interaction state of one mounted card.
//
// Capability calls are made without holding the lock. A generation counter
// ensures that a superseded or cancelled timer never transitions the state.
// Change notifications are delivered by one goroutine at a time and always
// end on the current state, so a late expiry cannot overwrite a newer copy.
type Controller struct {
	contact models.Contact
	lang    models.Language
	caps    Capabilities
	clock   clock.Clock
	window  time.Duration
	logger  *slog.Logger
	pageURL string

	shareCapable bool

	mu        sync.Mutex
	state     State
	timer     clock.Timer
	gen       uint64
	unmounted bool
	onChange  func(State)
	notifying bool
	notified  State
}

// New mounts a card controller. The share probe runs exactly once, here.
func New(contact models.Contact, lang models.Language, caps Capabilities, opts ...Option) *Controller {
	c := &Controller{
		contact: contact,
		lang:    lang,
		caps:    caps,
		clock:   clock.Real{},
		window:  DefaultConfirmWindow,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.shareCapable = caps.Sharer != nil && caps.Probe != nil && caps.Probe.CanShare()
	return c
}

// Contact returns the card's record.
func (c *Controller) Contact() models.Contact { return c.contact }

// ShareCapable reports the result of the mount-time share probe.
func (c *Controller) ShareCapable() bool { return c.shareCapable }

// State returns the current confirmation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnChange registers fn to be called after every state transition.
// fn runs outside the controller lock and is never called concurrently with itself.
// It may call back into the Controller.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) name() string        { return c.contact.Name.Get(c.lang) }
func (c *Controller) description() string { return c.contact.Description.Get(c.lang) }

// CopyText is the clipboard payload: "<name>: <number>".
func (c *Controller) CopyText() string {
	return c.name() + ": " + c.contact.Number
}

// SharePayload is the payload Primary shares.
func (c *Controller) SharePayload() SharePayload {
	return SharePayload{
		Title: c.name(),
		Text:  fmt.Sprintf("%s: %s\n%s", c.name(), c.contact.Number, c.description()),
		URL:   c.pageURL,
	}
}

// DialPrompt is the confirmation question shown before dialing from the number text.
func (c *Controller) DialPrompt() string {
	return fmt.Sprintf("%s %s?", i18n.T(c.lang, i18n.DialConfirm), c.contact.Number)
}

func (c *Controller) isUnmounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unmounted
}

// Primary shares the contact when sharing is available, otherwise copies it.
// A failed share is logged and swallowed; it neither copies nor changes state.
func (c *Controller) Primary(ctx context.Context) {
	if c.isUnmounted() {
		return
	}
	if !c.shareCapable {
		c.Copy(ctx)
		return
	}
	if err := c.caps.Sharer.Share(ctx, c.SharePayload()); err != nil {
		c.logger.Debug("share failed",
			slog.String("contact", c.contact.ID),
			slog.String("error", err.Error()))
	}
}

// Copy writes the contact to the clipboard and shows the confirmation,
// restarting the dismissal window if it is already showing.
func (c *Controller) Copy(ctx context.Context) {
	if c.isUnmounted() {
		return
	}
	if c.caps.Clipboard != nil {
		if err := c.caps.Clipboard.WriteText(ctx, c.CopyText()); err != nil {
			c.logger.Debug("clipboard write failed",
				slog.String("contact", c.contact.ID),
				slog.String("error", err.Error()))
		}
	}

	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.state = Confirming
	c.timer = c.clock.AfterFunc(c.window, func() { c.expire(gen) })
	c.mu.Unlock()

	c.notify()
}

func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	if c.unmounted || gen != c.gen || c.state != Confirming {
		c.mu.Unlock()
		return
	}
	c.state = Idle
	c.timer = nil
	c.mu.Unlock()

	c.notify()
}

// notify delivers the current state if it differs from the last delivered one.
// A caller arriving while another delivery is in flight leaves the work to it;
// the active deliverer loops until the delivered state catches up.
func (c *Controller) notify() {
	c.mu.Lock()
	if c.notifying {
		c.mu.Unlock()
		return
	}
	c.notifying = true
	for {
		s, fn := c.state, c.onChange
		if s == c.notified || fn == nil {
			c.notified = s
			c.notifying = false
			c.mu.Unlock()
			return
		}
		c.notified = s
		c.mu.Unlock()
		fn(s)
		c.mu.Lock()
	}
}

// DialNumber asks for confirmation and dials only on a yes.
// It reports whether a dial was started.
func (c *Controller) DialNumber(ctx context.Context, confirm Confirmer) bool {
	if c.isUnmounted() || confirm == nil {
		return false
	}
	if !confirm.Confirm(ctx, c.DialPrompt()) {
		return false
	}
	c.dial(ctx)
	return true
}

// Call dials immediately. This is the call button; it has no confirmation step.
func (c *Controller) Call(ctx context.Context) {
	if c.isUnmounted() {
		return
	}
	c.dial(ctx)
}

func (c *Controller) dial(ctx context.Context) {
	if c.caps.Dialer == nil {
		return
	}
	if err := c.caps.Dialer.Dial(ctx, c.contact.Number); err != nil {
		c.logger.Debug("dial failed",
			slog.String("contact", c.contact.ID),
			slog.String("error", err.Error()))
	}
}

// Unmount cancels any pending dismissal. Later actions and timer callbacks are ignored.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unmounted {
		return
	}
	c.unmounted = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.onChange = nil
}
