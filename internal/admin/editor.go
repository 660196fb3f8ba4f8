// Package admin is the back-office product table: an in-memory copy of the
// catalog with filtering, pagination, row edits and JSON export.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"WhipStore/internal/catalog"
	"WhipStore/internal/view"
)

const (
	PageSize = 5

	EmptyMessage   = "No se encontraron productos"
	SavedMessage   = "Todos los cambios han sido guardados correctamente"
	ExportedName   = "whip-helmets-products.json"
	ExportedNotice = "Datos exportados correctamente"
)

var ErrUnknownProduct = errors.New("unknown product")

// Filter narrows the table. All set fields must match. MaxPrice only applies
// when it sits below the most expensive product.
type Filter struct {
	Search   string `json:"search" validate:"max=100"`
	Category string `json:"category" validate:"omitempty,max=40"`
	Brand    string `json:"brand" validate:"omitempty,max=60"`
	MaxPrice int64  `json:"max_price" validate:"gte=0"`
}

// Patch edits one row. Nil fields are left alone.
type Patch struct {
	Name            *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Brand           *string  `json:"brand" validate:"omitempty,max=60"`
	Price           *int64   `json:"price" validate:"omitempty,gte=0"`
	Category        *string  `json:"category" validate:"omitempty,oneof=Cascos Accesorios cascos accesorios"`
	Sizes           []string `json:"sizes" validate:"omitempty,max=12,dive,min=1,max=10"`
	Stock           *int     `json:"stock" validate:"omitempty,gte=0"`
	Status          *string  `json:"status" validate:"omitempty,oneof=Activo Inactivo active inactive"`
	DiscountPercent *int     `json:"porcentaje_descuento" validate:"omitempty,gte=0,lte=100"`
}

type Row struct {
	ID          string
	Name        string
	Category    string
	Brand       string
	Price       int64
	PriceText   string
	Sizes       string
	Stock       int
	Status      string
	StatusClass string
	Edited      bool
}

type Pagination struct {
	Page    int
	Pages   int
	Prev    int
	Next    int
	HasPrev bool
	HasNext bool
	Hidden  bool
	Numbers []int
}

// Page is one rendered screen of the table.
type Page struct {
	Rows         []Row
	Total        int
	Empty        bool
	EmptyMessage string
	Pagination   Pagination
	Filter       Filter
	Categories   []string
	Brands       []string
	MaxPrice     int64
	PriceCeiling int64
	Message      string
}

type Editor struct {
	mu       sync.Mutex
	original map[catalog.ID]catalog.Product
	rows     []catalog.Product
	filter   Filter
	matched  []int
	page     int
}

func NewEditor(products []catalog.Product) *Editor {
	e := &Editor{
		original: make(map[catalog.ID]catalog.Product, len(products)),
		rows:     make([]catalog.Product, 0, len(products)),
		page:     1,
	}
	for _, p := range products {
		e.original[p.ID] = p.Clone()
		e.rows = append(e.rows, p.Clone())
	}
	e.matched = e.match(Filter{})
	return e
}

// Apply recomputes the matching rows and goes back to the first page.
func (e *Editor) Apply(f Filter) Page {
	e.mu.Lock()
	defer e.mu.Unlock()

	f.Search = strings.TrimSpace(f.Search)
	e.filter = f
	e.matched = e.match(f)
	e.page = 1
	return e.render("")
}

func (e *Editor) Reset() Page {
	return e.Apply(Filter{})
}

// GoTo shows page n, clamped to the available range.
func (e *Editor) GoTo(n int) Page {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.page = clamp(n, 1, pages(len(e.matched)))
	return e.render("")
}

func (e *Editor) Current() Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.render("")
}

// Update applies patch to the row with id. Text fields are stripped of
// markup. The filter is not re-evaluated.
func (e *Editor) Update(id string, patch Patch) (catalog.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index(id)
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}

	p := e.rows[i].Clone()
	if patch.Name != nil {
		p.Name = view.CleanText(*patch.Name)
	}
	if patch.Brand != nil {
		p.Brand = view.CleanText(*patch.Brand)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = catalog.ParseCategory(*patch.Category)
	}
	if patch.Sizes != nil {
		sizes := make([]string, 0, len(patch.Sizes))
		for _, s := range patch.Sizes {
			sizes = append(sizes, view.CleanText(s))
		}
		p.Sizes = sizes
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Status != nil {
		p.Status = catalog.ParseStatus(*patch.Status)
	}
	if patch.DiscountPercent != nil {
		p.DiscountPercent = *patch.DiscountPercent
	}

	p.Normalize()
	if err := p.Validate(); err != nil {
		return catalog.Product{}, err
	}
	e.rows[i] = p
	return p.Clone(), nil
}

// Revert restores the row with id to its loaded state.
func (e *Editor) Revert(id string) (catalog.Product, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i, ok := e.index(id)
	if !ok {
		return catalog.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	e.rows[i] = e.original[catalog.ID(id)].Clone()
	return e.rows[i].Clone(), nil
}

// SaveAll confirms the edits. Nothing leaves the process.
func (e *Editor) SaveAll() Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.render(SavedMessage)
}

// Export serializes every row, ignoring the filter, as indented JSON.
func (e *Editor) Export() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, err := json.MarshalIndent(e.rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export products: %w", err)
	}
	return b, nil
}

func (e *Editor) index(id string) (int, bool) {
	for i, p := range e.rows {
		if string(p.ID) == id {
			return i, true
		}
	}
	return 0, false
}

func (e *Editor) maxPrice() int64 {
	var m int64
	for _, p := range e.rows {
		if p.Price > m {
			m = p.Price
		}
	}
	return m
}

func (e *Editor) match(f Filter) []int {
	search := strings.ToLower(f.Search)
	ceiling := f.MaxPrice > 0 && f.MaxPrice < e.maxPrice()

	var cat catalog.Category
	if f.Category != "" {
		cat = catalog.ParseCategory(f.Category)
	}

	out := make([]int, 0, len(e.rows))
	for i, p := range e.rows {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		if f.Category != "" && p.Category != cat {
			continue
		}
		if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
			continue
		}
		if ceiling && p.Price > f.MaxPrice {
			continue
		}
		out = append(out, i)
	}
	return out
}

func (e *Editor) render(msg string) Page {
	total := len(e.matched)
	n := pages(total)
	e.page = clamp(e.page, 1, n)

	start := (e.page - 1) * PageSize
	end := min(start+PageSize, total)

	maxPrice := e.maxPrice()
	pg := Page{
		Total:        total,
		Filter:       e.filter,
		Categories:   []string{catalog.CategoryHelmet.String(), catalog.CategoryAccessory.String()},
		Brands:       e.brands(),
		MaxPrice:     maxPrice,
		PriceCeiling: maxPrice,
		Message:      msg,
		Pagination:   paginate(e.page, n),
	}
	if e.filter.MaxPrice > 0 && e.filter.MaxPrice < maxPrice {
		pg.PriceCeiling = e.filter.MaxPrice
	}

	for _, i := range e.matched[start:end] {
		pg.Rows = append(pg.Rows, e.row(e.rows[i]))
	}
	if len(pg.Rows) == 0 {
		pg.Empty = true
		pg.EmptyMessage = EmptyMessage
	}
	return pg
}

func (e *Editor) row(p catalog.Product) Row {
	orig, ok := e.original[p.ID]
	statusClass := "inactive"
	if p.Active() {
		statusClass = "active"
	}
	return Row{
		ID:          string(p.ID),
		Name:        p.Name,
		Category:    p.Category.String(),
		Brand:       p.Brand,
		Price:       p.Price,
		PriceText:   view.FormatPrice(p.Price),
		Sizes:       strings.Join(p.Sizes, ", "),
		Stock:       p.Stock,
		Status:      p.Status.String(),
		StatusClass: statusClass,
		Edited:      !ok || !sameProduct(orig, p),
	}
}

func (e *Editor) brands() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range e.rows {
		if p.Brand == "" {
			continue
		}
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		out = append(out, p.Brand)
	}
	return out
}

func sameProduct(a, b catalog.Product) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

func pages(total int) int {
	if total == 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

func paginate(page, n int) Pagination {
	p := Pagination{
		Page:    page,
		Pages:   n,
		Prev:    max(page-1, 1),
		Next:    min(page+1, n),
		HasPrev: page > 1,
		HasNext: page < n,
		Hidden:  n <= 1,
	}
	for i := 1; i <= n; i++ {
		p.Numbers = append(p.Numbers, i)
	}
	return p
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
