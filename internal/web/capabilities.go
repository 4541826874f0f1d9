package web

import (
	"context"
	"fmt"

	"github.com/starford/hotlines/internal/action"
	"github.com/starford/hotlines/internal/apperr"
	"github.com/starford/hotlines/internal/models"
	"github.com/starford/hotlines/internal/sse"
)

// Event types pushed to a page.
const (
	EventShare     = "share.request"
	EventClipboard = "clipboard.write"
	EventDial      = "dial.request"
	EventCardState = "card.state"
)

// publisher is the part of the SSE broker the capabilities need.
type publisher interface {
	Publish(topic string, event sse.Event) int
}

// pageCapabilities forwards platform requests to the page open on a view.
type pageCapabilities struct {
	pub  publisher
	view string
	card string
}

func (p pageCapabilities) send(typ string, data map[string]any) error {
	data["card"] = p.card
	if p.pub.Publish(p.view, sse.Event{Type: typ, Data: data}) == 0 {
		return fmt.Errorf("%s for view %s: %w", typ, p.view, apperr.ErrNoSubscriber)
	}
	return nil
}

func (p pageCapabilities) Share(_ context.Context, payload action.SharePayload) error {
	return p.send(EventShare, map[string]any{
		"title": payload.Title,
		"text":  payload.Text,
		"url":   payload.URL,
	})
}

func (p pageCapabilities) WriteText(_ context.Context, text string) error {
	return p.send(EventClipboard, map[string]any{"text": text})
}

func (p pageCapabilities) Dial(_ context.Context, number string) error {
	return p.send(EventDial, map[string]any{"url": models.Contact{Number: number}.DialURL()})
}

// capabilitiesFor builds the capability set of one card on a view.
func capabilitiesFor(pub publisher, view, card string, probe action.ShareProbe) action.Capabilities {
	pc := pageCapabilities{pub: pub, view: view, card: card}
	return action.Capabilities{
		Sharer:    pc,
		Clipboard: pc,
		Dialer:    pc,
		Probe:     probe,
	}
}
