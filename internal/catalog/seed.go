package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedProduct struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Brand           string   `yaml:"brand"`
	Price           int64    `yaml:"price"`
	Category        string   `yaml:"category"`
	Sizes           []string `yaml:"sizes"`
	Stock           int      `yaml:"stock"`
	Status          string   `yaml:"status"`
	Image           string   `yaml:"image"`
	Images          []string `yaml:"images"`
	DiscountPercent int      `yaml:"discount_percent"`
	Condition       string   `yaml:"condition"`
}

// ParseSeed decodes a YAML product list in the seed.yaml layout.
func ParseSeed(raw []byte) ([]Product, error) {
	var rows []seedProduct
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	out := make([]Product, 0, len(rows))
	for i, r := range rows {
		p := Product{
			ID:              ID(r.ID),
			Name:            r.Name,
			Price:           r.Price,
			Category:        ParseCategory(r.Category),
			Brand:           r.Brand,
			Sizes:           r.Sizes,
			Stock:           r.Stock,
			Status:          ParseStatus(r.Status),
			Image:           r.Image,
			Images:          r.Images,
			DiscountPercent: r.DiscountPercent,
			Condition:       r.Condition,
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("seed row %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// SeedProducts returns the embedded catalog.
func SeedProducts() []Product {
	ps, err := ParseSeed(seedYAML)
	if err != nil {
		panic(err)
	}
	return ps
}
