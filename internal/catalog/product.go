package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ID accepts both JSON strings and numbers; the upstream API has served both.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Category int

const (
	CategoryUnknown Category = iota
	CategoryHelmet
	CategoryAccessory
)

// ParseCategory maps the localized labels used by the shop and the admin
// panel onto a Category.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cascos", "casco", "helmet", "helmets":
		return CategoryHelmet
	case "accesorios", "accesorio", "accessory", "accessories":
		return CategoryAccessory
	}
	return CategoryUnknown
}

func (c Category) String() string {
	switch c {
	case CategoryHelmet:
		return "Cascos"
	case CategoryAccessory:
		return "Accesorios"
	}
	return ""
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	*c = ParseCategory(string(b))
	return nil
}

type Status int

const (
	StatusInactive Status = iota
	StatusActive
)

func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "activo", "active":
		return StatusActive
	}
	return StatusInactive
}

func (s Status) String() string {
	if s == StatusActive {
		return "Activo"
	}
	return "Inactivo"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	*s = ParseStatus(string(b))
	return nil
}

const (
	DefaultSize      = "Único"
	DefaultCondition = "Nuevo"
)

// Product is a sellable item. Price is in whole pesos.
type Product struct {
	ID              ID       `json:"id"`
	Name            string   `json:"name"`
	Price           int64    `json:"price"`
	Category        Category `json:"category"`
	Brand           string   `json:"brand"`
	Sizes           []string `json:"sizes"`
	Stock           int      `json:"stock"`
	Status          Status   `json:"status"`
	Image           string   `json:"image,omitempty"`
	Images          []string `json:"images,omitempty"`
	DiscountPercent int      `json:"porcentaje_descuento,omitempty"`
	Condition       string   `json:"condition,omitempty"`
}

// UnmarshalJSON tolerates decimal prices; they are rounded to whole pesos.
func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	aux := struct {
		*alias
		Price decimal.Decimal `json:"price"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	p.Price = aux.Price.Round(0).IntPart()
	return nil
}

var (
	errNoID       = errors.New("id required")
	errNoName     = errors.New("name required")
	errNegative   = errors.New("price and stock must be non-negative")
	errBadPercent = errors.New("discount must be within 0..100")
)

// Normalize fills defaults and trims labels in place.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)

	sizes := make([]string, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		if s = strings.TrimSpace(s); s != "" {
			sizes = append(sizes, s)
		}
	}
	p.Sizes = sizes
	if len(p.Sizes) == 0 {
		p.Sizes = []string{DefaultSize}
	}
	if p.Condition == "" {
		p.Condition = DefaultCondition
	}
}

func (p Product) Validate() error {
	switch {
	case p.ID == "":
		return errNoID
	case p.Name == "":
		return errNoName
	case p.Price < 0 || p.Stock < 0:
		return errNegative
	case p.DiscountPercent < 0 || p.DiscountPercent > 100:
		return errBadPercent
	}
	return nil
}

func (p Product) Active() bool { return p.Status == StatusActive }

func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// EffectivePrice is the cash/transfer price: list price minus the discount,
// rounded half-up to whole pesos.
func (p Product) EffectivePrice() int64 {
	if p.DiscountPercent <= 0 {
		return p.Price
	}
	list := decimal.NewFromInt(p.Price)
	off := list.Mul(decimal.NewFromInt(int64(p.DiscountPercent))).Div(decimal.NewFromInt(100))
	return list.Sub(off).Round(0).IntPart()
}

// MainImage prefers the primary image and falls back to the first gallery
// entry.
func (p Product) MainImage() string {
	if s := strings.TrimSpace(p.Image); s != "" {
		return s
	}
	for _, img := range p.Images {
		if s := strings.TrimSpace(img); s != "" {
			return s
		}
	}
	return ""
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	p.Sizes = append([]string(nil), p.Sizes...)
	p.Images = append([]string(nil), p.Images...)
	return p
}

// lessID orders numeric ids numerically and everything else lexically.
func lessID(a, b ID) bool {
	ai, aerr := strconv.ParseInt(string(a), 10, 64)
	bi, berr := strconv.ParseInt(string(b), 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
