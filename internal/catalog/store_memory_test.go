package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedProducts(t *testing.T) {
	ps := SeedProducts()
	require.Len(t, ps, 10)

	var accessories int
	for _, p := range ps {
		require.NoError(t, p.Validate())
		assert.NotEmpty(t, p.Sizes)
		if p.Category == CategoryAccessory {
			accessories++
		}
	}
	assert.Equal(t, 2, accessories)
}

func TestParseSeedRejectsInvalidRows(t *testing.T) {
	_, err := ParseSeed([]byte("- id: \"1\"\n  name: \"\"\n"))
	assert.Error(t, err)
}

func TestMemStoreListSortedAndCloned(t *testing.T) {
	s := NewMemStore(
		Product{ID: "10", Name: "b", Sizes: []string{"M"}},
		Product{ID: "2", Name: "a", Sizes: []string{"S"}},
	)
	ctx := context.Background()

	list, err := s.ListSortedByID(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ID("2"), list[0].ID)

	list[0].Sizes[0] = "XXL"

	p, ok, err := s.Get(ctx, "2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "S", p.Sizes[0])

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
