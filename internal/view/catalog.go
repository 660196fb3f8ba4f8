package view

import (
	"sort"
	"strings"

	"WhipStore/internal/catalog"
	"WhipStore/internal/stock"
)

const (
	HelmetsEmptyMessage     = "No hay cascos disponibles en este momento."
	AccessoriesEmptyMessage = "No hay accesorios disponibles en este momento."
	HelmetsErrorMessage     = "Error al cargar los productos. Por favor, recarga la página."
	AccessoriesErrorMessage = "Error al cargar los accesorios. Por favor, recarga la página."

	AllBrands     = "Todas"
	AllConditions = "Todas"
	AllSizes      = "Todos"

	SortNone      = "default"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"

	// Placeholder is shown when a product has no image and as the onerror
	// fallback of every card image.
	Placeholder = "data:image/svg+xml;base64,PHN2ZyB3aWR0aD0iNjAiIGhlaWdodD0iNjAiIHZpZXdCb3g9IjAgMCA2MCA2MCIgZmlsbD0ibm9uZSIgeG1sbnM9Imh0dHA6Ly93d3cudzMub3JnLzIwMDAvc3ZnIj48cmVjdCB3aWR0aD0iNjAiIGhlaWdodD0iNjAiIGZpbGw9IiNFRUVFRUUiLz48cGF0aCBkPSJNMTUgMzBINjBWNDBIMzVWMzBIMjVWMTVIMjBWMzBIMTVaIiBmaWxsPSIjOTk5Ii8+PC9zdmc+"
)

var sizeOrder = map[string]int{"XS": 0, "S": 1, "M": 2, "L": 3, "XL": 4, "XXL": 5, "XXXL": 6}

// CardStater yields the stock state of a product card.
type CardStater interface {
	Refresh(productID, size string) stock.CardState
}

type SizeOption struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

type Card struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	Condition       string          `json:"condition"`
	ConditionClass  string          `json:"condition_class"`
	Image           string          `json:"image"`
	Price           int64           `json:"price"`
	PriceText       string          `json:"price_text"`
	ListPriceText   string          `json:"list_price_text"`
	DiscountPercent int             `json:"discount_percent,omitempty"`
	Sizes           []SizeOption    `json:"sizes"`
	Stock           stock.CardState `json:"stock"`
	Hidden          bool            `json:"hidden,omitempty"`
}

type Section struct {
	Cards   []Card `json:"cards"`
	Message string `json:"message,omitempty"`
	Error   bool   `json:"error,omitempty"`
}

// Filters narrow the helmet section. Zero values mean no filter.
type Filters struct {
	Brand     string `json:"brand"`
	Condition string `json:"condition"`
	Size      string `json:"size"`
	Sort      string `json:"sort"`
}

func (f Filters) normalized() Filters {
	if f.Brand == "" {
		f.Brand = AllBrands
	}
	if f.Condition == "" {
		f.Condition = AllConditions
	}
	if f.Size == "" {
		f.Size = AllSizes
	}
	if f.Sort != SortPriceAsc && f.Sort != SortPriceDesc {
		f.Sort = SortNone
	}
	return f
}

type FilterOptions struct {
	Brands     []string `json:"brands"`
	Conditions []string `json:"conditions"`
	Sizes      []string `json:"sizes"`
	Sorts      []string `json:"sorts"`
}

type CatalogView struct {
	Helmets     Section       `json:"helmets"`
	Accessories Section       `json:"accessories"`
	Options     FilterOptions `json:"options"`
	Applied     Filters       `json:"applied"`
}

// BuildCatalog renders active products into the two sections. selected maps
// product id to the size the shopper picked; missing entries use the first
// size.
func BuildCatalog(products []catalog.Product, st CardStater, f Filters, selected map[string]string) CatalogView {
	f = f.normalized()

	var helmets, accessories []catalog.Product
	for _, p := range products {
		if !p.Active() {
			continue
		}
		switch p.Category {
		case catalog.CategoryHelmet:
			helmets = append(helmets, p)
		case catalog.CategoryAccessory:
			accessories = append(accessories, p)
		}
	}

	v := CatalogView{
		Options: filterOptions(helmets),
		Applied: f,
	}

	v.Helmets = section(helmets, st, selected, HelmetsEmptyMessage)
	applyFilters(v.Helmets.Cards, helmets, f)
	v.Accessories = section(accessories, st, selected, AccessoriesEmptyMessage)
	return v
}

// CatalogUnavailable is the view when the product source failed.
func CatalogUnavailable() CatalogView {
	return CatalogView{
		Helmets:     Section{Message: HelmetsErrorMessage, Error: true},
		Accessories: Section{Message: AccessoriesErrorMessage, Error: true},
		Applied:     Filters{}.normalized(),
	}
}

func section(ps []catalog.Product, st CardStater, selected map[string]string, empty string) Section {
	if len(ps) == 0 {
		return Section{Message: empty}
	}
	cards := make([]Card, 0, len(ps))
	for _, p := range ps {
		cards = append(cards, BuildCard(p, st, selected[string(p.ID)]))
	}
	return Section{Cards: cards}
}

// BuildCard renders one product for the selected size.
func BuildCard(p catalog.Product, st CardStater, size string) Card {
	if size == "" || !p.HasSize(size) {
		size = ""
		if len(p.Sizes) > 0 {
			size = p.Sizes[0]
		}
	}

	img := p.MainImage()
	if img == "" {
		img = Placeholder
	}

	condClass := "new"
	if p.Condition != catalog.DefaultCondition {
		condClass = "used"
	}

	sizes := make([]SizeOption, len(p.Sizes))
	for i, s := range p.Sizes {
		sizes[i] = SizeOption{Value: s, Selected: s == size}
	}

	effective := p.EffectivePrice()
	return Card{
		ID:              string(p.ID),
		Name:            p.Name,
		Brand:           p.Brand,
		Condition:       p.Condition,
		ConditionClass:  condClass,
		Image:           img,
		Price:           effective,
		PriceText:       FormatPrice(effective),
		ListPriceText:   FormatPrice(p.Price),
		DiscountPercent: p.DiscountPercent,
		Sizes:           sizes,
		Stock:           st.Refresh(string(p.ID), size),
	}
}

func applyFilters(cards []Card, ps []catalog.Product, f Filters) {
	for i := range cards {
		p := ps[i]
		brandOK := f.Brand == AllBrands || p.Brand == f.Brand
		condOK := f.Condition == AllConditions || p.Condition == f.Condition
		sizeOK := f.Size == AllSizes || p.HasSize(f.Size)
		cards[i].Hidden = !(brandOK && condOK && sizeOK)
	}

	if f.Sort == SortNone {
		return
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].Hidden != cards[j].Hidden {
			return !cards[i].Hidden
		}
		if f.Sort == SortPriceDesc {
			return cards[i].Price > cards[j].Price
		}
		return cards[i].Price < cards[j].Price
	})
}

func filterOptions(helmets []catalog.Product) FilterOptions {
	seenBrand := make(map[string]struct{})
	seenSize := make(map[string]struct{})
	opts := FilterOptions{
		Conditions: []string{AllConditions, "Nuevo", "Usado"},
		Sorts:      []string{SortNone, SortPriceAsc, SortPriceDesc},
	}

	var sizes []string
	for _, p := range helmets {
		if _, ok := seenBrand[p.Brand]; !ok && p.Brand != "" {
			seenBrand[p.Brand] = struct{}{}
			opts.Brands = append(opts.Brands, p.Brand)
		}
		for _, s := range p.Sizes {
			s = strings.TrimSpace(s)
			if _, ok := seenSize[s]; !ok {
				seenSize[s] = struct{}{}
				sizes = append(sizes, s)
			}
		}
	}
	SortSizes(sizes)
	opts.Sizes = sizes
	return opts
}

// SortSizes orders letter sizes XS..XXXL first, then everything else
// alphabetically.
func SortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool {
		a, aok := sizeOrder[strings.ToUpper(sizes[i])]
		b, bok := sizeOrder[strings.ToUpper(sizes[j])]
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		case bok:
			return false
		}
		return sizes[i] < sizes[j]
	})
}
