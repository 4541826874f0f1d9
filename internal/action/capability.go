package action

import "context"

// SharePayload is handed to the platform share sheet.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Sharer opens the native share sheet.
type Sharer interface {
	Share(ctx context.Context, p SharePayload) error
}

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Dialer starts a phone call to number.
type Dialer interface {
	Dial(ctx context.Context, number string) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, message string) bool
}

// ShareProbe reports whether native sharing is available in the current context.
type ShareProbe interface {
	CanShare() bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, message string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, message string) bool { return f(ctx, message) }

// ProbeFunc adapts a function to ShareProbe.
type ProbeFunc func() bool

// CanShare calls f.
func (f ProbeFunc) CanShare() bool { return f() }

// Capabilities bundles the platform services a card uses. Nil members are
// treated as unavailable: sharing falls back to copy, the others become no-ops.
type Capabilities struct {
	Sharer    Sharer
	Clipboard Clipboard
	Dialer    Dialer
	Probe     ShareProbe
}
