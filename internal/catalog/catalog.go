package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"MarketLens/internal/model"
)

// Catalog is a static item list with the ratings collected against it.
type Catalog struct {
	Items   []model.Item   `yaml:"items"`
	Ratings []model.Rating `yaml:"ratings"`
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and checks item ids are unique and every
// rating references a known item.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog shape.
func (c *Catalog) Validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("catalog has no items: %w", model.ErrInvalidInput)
	}
	known := make(map[int]bool, len(c.Items))
	for _, it := range c.Items {
		if known[it.ID] {
			return fmt.Errorf("duplicate item id %d: %w", it.ID, model.ErrInvalidInput)
		}
		if it.Name == "" {
			return fmt.Errorf("item %d has no name: %w", it.ID, model.ErrInvalidInput)
		}
		known[it.ID] = true
	}
	for i, r := range c.Ratings {
		if !known[r.ItemID] {
			return fmt.Errorf("rating %d references unknown item %d: %w", i, r.ItemID, model.ErrInvalidInput)
		}
	}
	return nil
}

// Item returns the catalog item with the given id.
func (c *Catalog) Item(id int) (model.Item, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return model.Item{}, false
}
