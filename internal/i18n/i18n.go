// Package i18n holds the interface strings of the directory page.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/starford/hotlines/internal/models"
)

// Message keys.
const (
	AppTitle          = "appTitle"
	AppSubtitle       = "appSubtitle"
	SearchPlaceholder = "searchPlaceholder"
	CallNow           = "callNow"
	Share             = "share"
	Copy              = "copy"
	NumberCopied      = "numberCopied"
	NoResults         = "noResults"
	ClearFilter       = "clearFilter"
	Disclaimer        = "disclaimer"
	All               = "all"
	DialConfirm       = "dialConfirm"
	SendFeedback      = "sendFeedback"
	ChangeLanguage    = "changeLanguage"
	ToggleTheme       = "toggleTheme"
)

// Keys lists every message the page uses.
var Keys = []string{
	AppTitle, AppSubtitle, SearchPlaceholder, CallNow, Share, Copy, NumberCopied,
	NoResults, ClearFilter, Disclaimer, All, DialConfirm, SendFeedback,
	ChangeLanguage, ToggleTheme,
}

//go:embed messages.yaml
var messagesYAML []byte

// Bundle is a read-only message table.
type Bundle struct {
	messages map[string]models.LocalizedText
}

// Default is the bundle compiled into the binary.
var Default = mustParse(messagesYAML)

// Parse decodes a message table and checks that every key in Keys has all languages.
func Parse(data []byte) (*Bundle, error) {
	var m map[string]models.LocalizedText
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("i18n: parse: %w", err)
	}
	for _, k := range Keys {
		t, ok := m[k]
		if !ok {
			return nil, fmt.Errorf("i18n: missing message %q", k)
		}
		if missing := t.Missing(); len(missing) > 0 {
			return nil, fmt.Errorf("i18n: message %q: missing %v", k, missing)
		}
	}
	return &Bundle{messages: m}, nil
}

func mustParse(data []byte) *Bundle {
	b, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return b
}

// T returns the text of key in lang. Unknown keys render as the key itself.
func (b *Bundle) T(lang models.Language, key string) string {
	t, ok := b.messages[key]
	if !ok {
		return key
	}
	return t.Get(lang)
}

// Table returns every message in lang, keyed by message key.
func (b *Bundle) Table(lang models.Language) map[string]string {
	out := make(map[string]string, len(b.messages))
	for k, t := range b.messages {
		out[k] = t.Get(lang)
	}
	return out
}

// MessageKeys returns the bundle's keys, sorted.
func (b *Bundle) MessageKeys() []string {
	out := make([]string, 0, len(b.messages))
	for k := range b.messages {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// T looks up key in the Default bundle.
func T(lang models.Language, key string) string {
	return Default.T(lang, key)
}
