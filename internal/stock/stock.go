// Package stock derives remaining units from catalog stock and the units a
// session's cart already reserves.
package stock

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"WhipStore/internal/cart"
	"WhipStore/internal/catalog"
)

// Policy selects which cart lines reserve a product's single stock counter.
type Policy int

const (
	// PerSize counts only lines of the same size, so each size is checked
	// independently against the full counter.
	PerSize Policy = iota
	// Shared counts every line of the product whatever its size.
	Shared
)

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "per_size", "per-size":
		return PerSize, nil
	case "shared":
		return Shared, nil
	}
	return PerSize, fmt.Errorf("unknown stock policy %q", s)
}

func (p Policy) String() string {
	if p == Shared {
		return "shared"
	}
	return "per_size"
}

const lowStockMax = 5

type Tier string

const (
	TierOut  Tier = "out"
	TierLow  Tier = "low"
	TierHigh Tier = "high"
)

const (
	LabelAdd     = "Añadir al Carrito"
	LabelNoStock = "Sin stock"
)

type Badge struct {
	Tier  Tier   `json:"tier"`
	Text  string `json:"text"`
	Class string `json:"class"`
}

// BadgeFor maps a remaining count onto its display tier.
func BadgeFor(remaining int) Badge {
	switch {
	case remaining <= 0:
		return Badge{Tier: TierOut, Text: LabelNoStock, Class: "stock-out"}
	case remaining <= lowStockMax:
		return Badge{Tier: TierLow, Text: "¡Quedan " + strconv.Itoa(remaining) + " unidad/es!", Class: "stock-low"}
	}
	return Badge{Tier: TierHigh, Text: "Stock: " + strconv.Itoa(remaining), Class: "stock-high"}
}

// CardState is what a product card shows for the selected size.
type CardState struct {
	ProductID   string `json:"product_id"`
	Size        string `json:"size"`
	Remaining   int    `json:"remaining"`
	Badge       Badge  `json:"badge"`
	AddEnabled  bool   `json:"add_enabled"`
	AddLabel    string `json:"add_label"`
	SizeEnabled bool   `json:"size_enabled"`
}

// Lookup resolves catalog products by id.
type Lookup interface {
	Product(id string) (catalog.Product, bool)
}

// Index is a Lookup over an already loaded product list.
type Index map[string]catalog.Product

func NewIndex(products []catalog.Product) Index {
	idx := make(Index, len(products))
	for _, p := range products {
		idx[string(p.ID)] = p
	}
	return idx
}

func (i Index) Product(id string) (catalog.Product, bool) {
	p, ok := i[id]
	return p, ok
}

// Reservations is the set of cart lines holding units.
type Reservations interface {
	Items() []cart.LineItem
}

type Reconciler struct {
	products Lookup
	cart     Reservations
	policy   Policy
	log      *zap.Logger
}

func NewReconciler(products Lookup, reserved Reservations, policy Policy, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{products: products, cart: reserved, policy: policy, log: log}
}

// Reserved counts the cart lines holding productID/size under the policy.
func (r *Reconciler) Reserved(productID, size string) int {
	n := 0
	for _, it := range r.cart.Items() {
		if it.ProductID != productID {
			continue
		}
		if r.policy == PerSize && it.Size != size {
			continue
		}
		n++
	}
	return n
}

// Remaining is catalog stock minus reserved units. Unknown products have none.
func (r *Reconciler) Remaining(productID, size string) int {
	p, ok := r.products.Product(productID)
	if !ok {
		return 0
	}
	return p.Stock - r.Reserved(productID, size)
}

func (r *Reconciler) IsAvailable(productID, size string) bool {
	if _, ok := r.products.Product(productID); !ok {
		return false
	}
	return r.Remaining(productID, size) > 0
}

// Refresh computes the card state of productID for size. An empty size
// selects the product's first size.
func (r *Reconciler) Refresh(productID, size string) CardState {
	p, ok := r.products.Product(productID)
	if ok && size == "" && len(p.Sizes) > 0 {
		size = p.Sizes[0]
	}

	remaining := r.Remaining(productID, size)
	if remaining < 0 {
		r.log.Warn("negative remaining stock",
			zap.String("product_id", productID),
			zap.String("size", size),
			zap.Int("remaining", remaining),
			zap.String("policy", r.policy.String()))
		remaining = 0
	}

	st := CardState{
		ProductID:   productID,
		Size:        size,
		Remaining:   remaining,
		Badge:       BadgeFor(remaining),
		AddEnabled:  remaining > 0,
		SizeEnabled: remaining > 0,
		AddLabel:    LabelAdd,
	}
	if !st.AddEnabled {
		st.AddLabel = LabelNoStock
	}
	return st
}

// RefreshAll returns the card state of every product the lines touch, one
// entry per distinct product/size, in first-seen order.
func (r *Reconciler) RefreshAll(lines []cart.LineItem) []CardState {
	seen := make(map[[2]string]struct{}, len(lines))
	out := make([]CardState, 0, len(lines))
	for _, l := range lines {
		k := [2]string{l.ProductID, l.Size}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r.Refresh(l.ProductID, l.Size))
	}
	return out
}
