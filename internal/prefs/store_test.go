package prefs

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/starford/hotlines/internal/apperr"
	"github.com/starford/hotlines/internal/kv"
	"github.com/starford/hotlines/internal/models"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoad_EmptyStoreDefaults(t *testing.T) {
	s := Open(kv.NewMemory(), quiet)
	got := s.Current()
	if got.Language != models.LangHebrew || !got.DarkMode {
		t.Errorf("defaults = %+v, want he/dark", got)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	m := kv.NewMemory()
	_ = m.Set(KeyLanguage, "klingon")
	_ = m.Set(KeyTheme, "sepia")
	got := Open(m, quiet).Current()
	if got != models.DefaultPreferences() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestLoad_NonCanonicalLanguageFallsBack(t *testing.T) {
	for _, v := range []string{" RU ", "EN", "ru\n"} {
		m := kv.NewMemory()
		_ = m.Set(KeyLanguage, v)
		if got := Open(m, quiet).Current().Language; got != models.LangHebrew {
			t.Errorf("stored %q loaded as %s, want he", v, got)
		}
	}
}

func TestLoad_StoredValues(t *testing.T) {
	m := kv.NewMemory()
	_ = m.Set(KeyLanguage, "ru")
	_ = m.Set(KeyTheme, "light")
	got := Open(m, quiet).Current()
	if got.Language != models.LangRussian || got.DarkMode {
		t.Errorf("got %+v, want ru/light", got)
	}
}

func TestSetters_PersistSynchronously(t *testing.T) {
	m := kv.NewMemory()
	s := Open(m, quiet)

	if err := s.SetLanguage(models.LangEnglish); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDarkMode(false); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := m.Get(KeyLanguage); v != "en" {
		t.Errorf("stored lang = %q", v)
	}
	if v, _, _ := m.Get(KeyTheme); v != "light" {
		t.Errorf("stored theme = %q", v)
	}

	reloaded := Open(m, quiet).Current()
	if reloaded.Language != models.LangEnglish || reloaded.DarkMode {
		t.Errorf("reloaded = %+v", reloaded)
	}
}

func TestSetLanguage_RejectsUnsupported(t *testing.T) {
	m := kv.NewMemory()
	s := Open(m, quiet)
	err := s.SetLanguage("fr")
	if !errors.Is(err, apperr.ErrInvalidLanguage) {
		t.Fatalf("err = %v, want ErrInvalidLanguage", err)
	}
	if _, ok, _ := m.Get(KeyLanguage); ok {
		t.Error("rejected language was persisted")
	}
}

func TestToggleLanguage_CycleClosure(t *testing.T) {
	s := Open(kv.NewMemory(), quiet)
	start := s.Current().Language
	seen := []models.Language{}
	for i := 0; i < len(models.Languages); i++ {
		l, err := s.ToggleLanguage()
		if err != nil {
			t.Fatal(err)
		}
		seen = append(seen, l)
	}
	if s.Current().Language != start {
		t.Errorf("after %d toggles language = %s, want %s", len(models.Languages), s.Current().Language, start)
	}
	if seen[0] != models.LangEnglish || seen[1] != models.LangRussian || seen[2] != models.LangHebrew {
		t.Errorf("cycle = %v, want [en ru he]", seen)
	}
}

func TestToggleTheme(t *testing.T) {
	m := kv.NewMemory()
	s := Open(m, quiet)
	dark, err := s.ToggleTheme()
	if err != nil || dark {
		t.Fatalf("toggle from default = %v, %v; want light", dark, err)
	}
	if v, _, _ := m.Get(KeyTheme); v != ThemeLight {
		t.Errorf("stored theme = %q", v)
	}
}

type failingKV struct{ *kv.Memory }

func (failingKV) Set(string, string) error { return errors.New("disk full") }

func TestSetLanguage_PersistFailureKeepsState(t *testing.T) {
	s := Open(failingKV{Memory: kv.NewMemory()}, quiet)
	if err := s.SetLanguage(models.LangRussian); err == nil {
		t.Fatal("expected error")
	}
	if s.Current().Language != models.LangHebrew {
		t.Errorf("language changed despite failed write: %s", s.Current().Language)
	}
}

func TestAttributes(t *testing.T) {
	cases := []struct {
		p    models.Preferences
		want DocumentAttributes
	}{
		{models.Preferences{Language: models.LangHebrew, DarkMode: true}, DocumentAttributes{Dir: "rtl", Lang: "he", ThemeClass: "dark"}},
		{models.Preferences{Language: models.LangEnglish}, DocumentAttributes{Dir: "ltr", Lang: "en"}},
		{models.Preferences{Language: models.LangRussian, DarkMode: true}, DocumentAttributes{Dir: "ltr", Lang: "ru", ThemeClass: "dark"}},
	}
	for _, c := range cases {
		if got := Attributes(c.p); got != c.want {
			t.Errorf("Attributes(%+v) = %+v, want %+v", c.p, got, c.want)
		}
	}
}

func TestToggleLanguage_ConcurrentTogglesEachAdvance(t *testing.T) {
	m := kv.NewMemory()
	s := Open(m, quiet)

	var wg sync.WaitGroup
	for i := 0; i < 3*10+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ToggleLanguage(); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := s.Current().Language; got != models.LangEnglish {
		t.Fatalf("language = %s after 31 toggles, want en", got)
	}
	if v, _, _ := m.Get(KeyLanguage); v != "en" {
		t.Fatalf("persisted = %q, want en", v)
	}
}
