package internal

import (
	"github.com/starford/hotlines/internal/catalog"
	"github.com/starford/hotlines/internal/kv"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	catalog  *catalog.Catalog
	provider kv.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithCatalog replaces the embedded catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(a *application) {
		a.catalog = cat
	}
}

// WithProvider supplies the preference backend instead of opening store.driver.
// The caller keeps ownership and closes it.
func WithProvider(p kv.Provider) Option {
	return func(a *application) {
		a.provider = p
	}
}
