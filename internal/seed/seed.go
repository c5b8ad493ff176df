// Package seed holds the starter catalog loaded into an empty shop.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the starter data set
type Catalog struct {
	Categories []string  `yaml:"categories"`
	Colors     []Color   `yaml:"colors"`
	Products   []Product `yaml:"products"`
}

// Color is a named swatch
type Color struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// Product references its category and colors by name
type Product struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Price         float64  `yaml:"price"`
	OriginalPrice *float64 `yaml:"original_price"`
	Images        []string `yaml:"images"`
	Category      string   `yaml:"category"`
	Sizes         []string `yaml:"sizes"`
	IsNew         bool     `yaml:"is_new"`
	IsSale        bool     `yaml:"is_sale"`
	Features      []string `yaml:"features"`
	Colors        []string `yaml:"colors"`
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes a YAML catalog and checks every product reference resolves
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	categories := make(map[string]bool, len(c.Categories))
	for _, name := range c.Categories {
		categories[name] = true
	}
	colors := make(map[string]bool, len(c.Colors))
	for _, color := range c.Colors {
		colors[color.Name] = true
	}

	for _, p := range c.Products {
		if !categories[p.Category] {
			return nil, fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
		}
		for _, color := range p.Colors {
			if !colors[color] {
				return nil, fmt.Errorf("product %q: unknown color %q", p.Name, color)
			}
		}
	}

	return &c, nil
}
