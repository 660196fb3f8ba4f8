package view

import (
	"strconv"

	"WhipStore/internal/cart"
)

const (
	CartEmptyMessage     = "Tu carrito está vacío"
	MiniCartEmptyMessage = "Carrito vacío"
)

// CartRow is one cart line. Index is its position at render time and is the
// only handle a remove control may carry.
type CartRow struct {
	Index     int    `json:"index"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Price     int64  `json:"price"`
	PriceText string `json:"price_text"`
}

type CartView struct {
	Empty        bool      `json:"empty"`
	EmptyMessage string    `json:"empty_message,omitempty"`
	Rows         []CartRow `json:"rows"`
	Count        int       `json:"count"`
	Total        int64     `json:"total"`
	TotalText    string    `json:"total_text"`
	ShowClear    bool      `json:"show_clear"`
	ShowCheckout bool      `json:"show_checkout"`
	Badge        string    `json:"badge"`
}

type MiniCartView struct {
	Empty        bool      `json:"empty"`
	EmptyMessage string    `json:"empty_message,omitempty"`
	Rows         []CartRow `json:"rows"`
	Count        int       `json:"count"`
	Total        int64     `json:"total"`
	TotalText    string    `json:"total_text"`
}

// CountBadge is the header cart button label.
func CountBadge(n int) string {
	return "🛒 Carrito (" + strconv.Itoa(n) + ")"
}

func rows(items []cart.LineItem) []CartRow {
	out := make([]CartRow, len(items))
	for i, it := range items {
		out[i] = CartRow{
			Index:     i,
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Size:      it.Size,
			Price:     it.Price,
			PriceText: FormatPrice(it.Price),
		}
	}
	return out
}

func BuildCart(items []cart.LineItem) CartView {
	total := cart.Total(items)
	v := CartView{
		Rows:      rows(items),
		Count:     len(items),
		Total:     total,
		TotalText: TotalText(total),
		Badge:     CountBadge(len(items)),
	}
	if len(items) == 0 {
		v.Empty = true
		v.EmptyMessage = CartEmptyMessage
		return v
	}
	v.ShowClear = true
	v.ShowCheckout = true
	return v
}

func BuildMiniCart(items []cart.LineItem) MiniCartView {
	total := cart.Total(items)
	v := MiniCartView{
		Rows:      rows(items),
		Count:     len(items),
		Total:     total,
		TotalText: TotalText(total),
	}
	if len(items) == 0 {
		v.Empty = true
		v.EmptyMessage = MiniCartEmptyMessage
	}
	return v
}
