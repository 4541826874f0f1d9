// Package prefs holds the process-wide language and theme preferences.
package prefs

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/hotlines/internal/apperr"
	"github.com/starford/hotlines/internal/kv"
	"github.com/starford/hotlines/internal/models"
)

// Persisted keys and theme values.
const (
	KeyLanguage = "lang"
	KeyTheme    = "theme"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Store keeps the current preferences in memory and writes every change
// through to the key-value provider before returning.
type Store struct {
	kv     kv.Provider
	logger *slog.Logger

	mu      sync.RWMutex
	current models.Preferences
}

// Open loads the stored preferences from p.
func Open(p kv.Provider, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{kv: p, logger: logger}
	s.current = s.Load()
	return s
}

// Load reads the persisted preferences. Absent, unreadable or unrecognized
// values fall back to the defaults: the first supported language and dark mode.
func (s *Store) Load() models.Preferences {
	out := models.DefaultPreferences()

	if v, ok, err := s.kv.Get(KeyLanguage); err != nil {
		s.logger.Warn("prefs: read language failed", slog.String("error", err.Error()))
	} else if ok {
		if l := models.Language(v); l.Valid() {
			out.Language = l
		}
	}

	if v, ok, err := s.kv.Get(KeyTheme); err != nil {
		s.logger.Warn("prefs: read theme failed", slog.String("error", err.Error()))
	} else if ok {
		switch v {
		case ThemeDark:
			out.DarkMode = true
		case ThemeLight:
			out.DarkMode = false
		}
	}
	return out
}

// Current returns the active preferences.
func (s *Store) Current() models.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetLanguage persists and activates lang.
func (s *Store) SetLanguage(lang models.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: %q", apperr.ErrInvalidLanguage, lang)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLanguage(lang)
}

func (s *Store) setLanguage(lang models.Language) error {
	if err := s.kv.Set(KeyLanguage, string(lang)); err != nil {
		return fmt.Errorf("prefs: persist language: %w", err)
	}
	s.current.Language = lang
	return nil
}

// SetDarkMode persists and activates the theme.
func (s *Store) SetDarkMode(dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDarkMode(dark)
}

func (s *Store) setDarkMode(dark bool) error {
	v := ThemeLight
	if dark {
		v = ThemeDark
	}
	if err := s.kv.Set(KeyTheme, v); err != nil {
		return fmt.Errorf("prefs: persist theme: %w", err)
	}
	s.current.DarkMode = dark
	return nil
}

// ToggleLanguage advances exactly one step in the language cycle and returns the new language.
func (s *Store) ToggleLanguage() (models.Language, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current.Language.Next()
	if err := s.setLanguage(next); err != nil {
		return "", err
	}
	return next, nil
}

// ToggleTheme flips dark mode and returns the new value.
func (s *Store) ToggleTheme() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := !s.current.DarkMode
	if err := s.setDarkMode(next); err != nil {
		return false, err
	}
	return next, nil
}
