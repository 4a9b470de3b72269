// Package catalog owns the durable list of certificates: a flat, ordered
// JSON file that is the single source of truth the status engine and the
// dashboard read. The only mutation path is the explicit merge step.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mariner-tools/certtrack/internal/entity"
)

// Catalog is the ordered list of certificate records.
type Catalog struct {
	Certificates []entity.Certificate `json:"certificates"`
}

// Load reads and validates the catalog file.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw bytes against the catalog schema and decodes them.
func Parse(raw []byte) (*Catalog, error) {
	if err := validateCatalog(raw); err != nil {
		return nil, fmt.Errorf("catalog validation: %w", err)
	}
	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// Save writes the catalog back, pretty-printed for hand edits and diffs.
func (c *Catalog) Save(path string) error {
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// Categories returns the distinct category names in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, cert := range c.Certificates {
		name := string(cert.Category)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// FindBySourceFile returns the record whose source document matches name, or
// nil.
func (c *Catalog) FindBySourceFile(name string) *entity.Certificate {
	for i := range c.Certificates {
		if c.Certificates[i].SourceFile != nil && *c.Certificates[i].SourceFile == name {
			return &c.Certificates[i]
		}
	}
	return nil
}
