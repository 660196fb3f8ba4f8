package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductUnmarshalAcceptsNumericIDAndDecimalPrice(t *testing.T) {
	var p Product
	raw := `{"id": 7, "name": "LS2 Rapid", "price": 129999.5, "category": "Cascos",
		"brand": "LS2", "sizes": ["M"], "stock": 3, "status": "Activo", "porcentaje_descuento": 10}`

	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, ID("7"), p.ID)
	assert.Equal(t, int64(130000), p.Price)
	assert.Equal(t, CategoryHelmet, p.Category)
	assert.True(t, p.Active())
	assert.Equal(t, 10, p.DiscountPercent)
}

func TestProductMarshalUsesLocalizedLabels(t *testing.T) {
	p := Product{ID: "1", Name: "x", Category: CategoryAccessory, Status: StatusInactive}

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "Accesorios", m["category"])
	assert.Equal(t, "Inactivo", m["status"])
}

func TestNormalizeDefaults(t *testing.T) {
	in := []string{" M ", "", "L"}
	p := Product{Name: " Casco ", Sizes: in}
	p.Normalize()

	assert.Equal(t, "Casco", p.Name)
	assert.Equal(t, []string{"M", "L"}, p.Sizes)
	assert.Equal(t, []string{" M ", "", "L"}, in, "caller slice must not be rewritten")
	assert.Equal(t, DefaultCondition, p.Condition)

	var empty Product
	empty.Normalize()
	assert.Equal(t, []string{DefaultSize}, empty.Sizes)
}

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		price   int64
		percent int
		want    int64
	}{
		{price: 100000, percent: 0, want: 100000},
		{price: 100000, percent: 10, want: 90000},
		{price: 99999, percent: 15, want: 84999},
		{price: 5, percent: 50, want: 3},
		{price: 1000, percent: 100, want: 0},
	}
	for _, tt := range tests {
		p := Product{Price: tt.price, DiscountPercent: tt.percent}
		assert.Equal(t, tt.want, p.EffectivePrice(), "price=%d percent=%d", tt.price, tt.percent)
	}
}

func TestMainImageFallsBackToGallery(t *testing.T) {
	assert.Equal(t, "a.jpg", Product{Image: "a.jpg", Images: []string{"b.jpg"}}.MainImage())
	assert.Equal(t, "b.jpg", Product{Images: []string{" ", "b.jpg"}}.MainImage())
	assert.Empty(t, Product{}.MainImage())
}

func TestValidate(t *testing.T) {
	ok := Product{ID: "1", Name: "x", Price: 1}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.DiscountPercent = 120
	assert.ErrorIs(t, bad.Validate(), errBadPercent)

	bad = ok
	bad.Stock = -1
	assert.ErrorIs(t, bad.Validate(), errNegative)
}

func TestLessID(t *testing.T) {
	assert.True(t, lessID("2", "10"))
	assert.True(t, lessID("10", "abc"))
	assert.False(t, lessID("b", "a"))
}
