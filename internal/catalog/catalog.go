// Package catalog loads and validates the embedded contact directory.
package catalog

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/hotlines/internal/apperr"
	"github.com/starford/hotlines/internal/models"
)

//go:embed catalog.yaml
var embedded []byte

// document is the on-disk layout of catalog.yaml.
type document struct {
	Categories models.CategoryLabels `yaml:"categories"`
	Contacts   []models.Contact      `yaml:"contacts"`
}

// Catalog is the immutable, ordered contact directory.
// It is safe for concurrent use because nothing mutates it after Parse.
type Catalog struct {
	contacts    []models.Contact
	labels      models.CategoryLabels
	byID        map[string]int
	raw         []byte
	fingerprint string
}

// Load parses and validates the catalog compiled into the binary.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// MustLoad is Load for callers that treat a broken embedded catalog as a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Parse decodes a YAML catalog and validates it.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	if err := Validate(doc.Contacts, doc.Categories); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	byID := make(map[string]int, len(doc.Contacts))
	for i, c := range doc.Contacts {
		byID[c.ID] = i
	}
	sum := sha256.Sum256(data)

	return &Catalog{
		contacts:    doc.Contacts,
		labels:      doc.Categories,
		byID:        byID,
		raw:         data,
		fingerprint: hex.EncodeToString(sum[:]),
	}, nil
}

// Contacts returns the ordered records. Callers must not modify the slice.
func (c *Catalog) Contacts() []models.Contact {
	return c.contacts
}

// Labels returns the localized category labels.
func (c *Catalog) Labels() models.CategoryLabels {
	return c.labels
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.contacts)
}

// Get returns the record with the given id.
func (c *Catalog) Get(id string) (models.Contact, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Contact{}, apperr.ErrNotFound
	}
	return c.contacts[i], nil
}

// CategoryLabel returns the label of cat in lang. CategoryAll has no entry and returns "".
func (c *Catalog) CategoryLabel(cat models.Category, lang models.Language) string {
	return c.labels[cat].Get(lang)
}

// Fingerprint is the hex SHA-256 of the source YAML; it changes only with a new build.
func (c *Catalog) Fingerprint() string {
	return c.fingerprint
}

// Raw returns the source YAML.
func (c *Catalog) Raw() []byte {
	return c.raw
}
