package admin

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WhipStore/internal/catalog"
	"WhipStore/internal/view"
	"WhipStore/pkg/kit"
)

func ptr[T any](v T) *T { return &v }

func ids(p Page) []string {
	out := make([]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		out = append(out, r.ID)
	}
	return out
}

func TestPagination(t *testing.T) {
	e := NewEditor(catalog.SeedProducts())

	first := e.Current()
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(first))
	assert.Equal(t, 10, first.Total)
	assert.False(t, first.Pagination.HasPrev)
	assert.True(t, first.Pagination.HasNext)
	assert.False(t, first.Pagination.Hidden)
	assert.Equal(t, []int{1, 2}, first.Pagination.Numbers)

	second := e.GoTo(2)
	assert.Equal(t, []string{"6", "7", "8", "9", "10"}, ids(second))
	assert.True(t, second.Pagination.HasPrev)
	assert.False(t, second.Pagination.HasNext)

	assert.Equal(t, 2, e.GoTo(99).Pagination.Page, "clamped")
	assert.Equal(t, 1, e.GoTo(-3).Pagination.Page)
}

func TestFiltersAreAndCombined(t *testing.T) {
	e := NewEditor(catalog.SeedProducts())
	e.GoTo(2)

	p := e.Apply(Filter{Category: "accesorios"})
	assert.Equal(t, 1, p.Pagination.Page, "apply resets to page 1")
	assert.Equal(t, []string{"9", "10"}, ids(p))
	assert.True(t, p.Pagination.Hidden)

	p = e.Apply(Filter{Category: "Accesorios", Search: "guantes"})
	assert.Equal(t, []string{"9"}, ids(p))

	p = e.Apply(Filter{Search: "no existe"})
	assert.True(t, p.Empty)
	assert.Equal(t, EmptyMessage, p.EmptyMessage)
}

func TestPriceCeilingOnlyBelowMax(t *testing.T) {
	products := []catalog.Product{
		{ID: "1", Name: "a", Price: 100, Sizes: []string{"M"}},
		{ID: "2", Name: "b", Price: 300, Sizes: []string{"M"}},
	}
	e := NewEditor(products)

	assert.Equal(t, []string{"1"}, ids(e.Apply(Filter{MaxPrice: 200})))
	assert.Equal(t, []string{"1", "2"}, ids(e.Apply(Filter{MaxPrice: 300})), "ceiling at max means all prices")
	assert.Equal(t, []string{"1", "2"}, ids(e.Apply(Filter{MaxPrice: 5000})))
	assert.Equal(t, []string{"1", "2"}, ids(e.Reset()))
}

func TestUpdateAndRevert(t *testing.T) {
	e := NewEditor(catalog.SeedProducts())

	p, err := e.Update("1", Patch{Name: ptr("<b>Casco</b> Nuevo"), Price: ptr(int64(99000)), Status: ptr("inactive")})
	require.NoError(t, err)
	assert.Equal(t, "Casco Nuevo", p.Name)
	assert.Equal(t, int64(99000), p.Price)
	assert.False(t, p.Active())
	assert.True(t, e.Current().Rows[0].Edited)

	_, err = e.Update("1", Patch{DiscountPercent: ptr(150)})
	assert.Error(t, err)

	_, err = e.Update("404", Patch{})
	assert.ErrorIs(t, err, ErrUnknownProduct)

	orig, err := e.Revert("1")
	require.NoError(t, err)
	assert.Equal(t, catalog.SeedProducts()[0].Name, orig.Name)
	assert.False(t, e.Current().Rows[0].Edited)
}

func TestPatchValidation(t *testing.T) {
	err := kit.Validate(Patch{Category: ptr("Bicis")})
	var verr *kit.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category")

	assert.NoError(t, kit.Validate(Patch{Stock: ptr(0)}))
}

func TestSaveAllAndExport(t *testing.T) {
	e := NewEditor(catalog.SeedProducts())
	e.Apply(Filter{Category: "Accesorios"})

	assert.Equal(t, SavedMessage, e.SaveAll().Message)

	raw, err := e.Export()
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {")

	var out []catalog.Product
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Len(t, out, 10, "export ignores the filter")
}

func TestAdminTemplate(t *testing.T) {
	e := NewEditor(catalog.SeedProducts())

	var buf bytes.Buffer
	require.NoError(t, view.MustRenderer().Render(&buf, "admin", e.Current()))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Find("tr.admin-row").Length())
	assert.Equal(t, 2, doc.Find("#pagination .page-number").Length())
	assert.True(t, doc.Find("#pagination .page-prev").HasClass("disabled"))

	buf.Reset()
	require.NoError(t, view.MustRenderer().Render(&buf, "admin", e.Apply(Filter{Search: "zzz"})))
	doc, err = goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, EmptyMessage, doc.Find(".no-results").Text())
	assert.Zero(t, doc.Find("#pagination").Length())
}
