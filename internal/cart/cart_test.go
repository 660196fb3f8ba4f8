package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowAll struct{}

func (allowAll) IsAvailable(string, string) bool { return true }

type denyAll struct{}

func (denyAll) IsAvailable(string, string) bool { return false }

type brokenStorage struct {
	Storage
	getErr, setErr error
}

func (b brokenStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if b.getErr != nil {
		return "", false, b.getErr
	}
	return b.Storage.Get(ctx, key)
}

func (b brokenStorage) Set(ctx context.Context, key, value string) error {
	if b.setErr != nil {
		return b.setErr
	}
	return b.Storage.Set(ctx, key, value)
}

var (
	lineS = LineItem{ProductID: "1", ProductName: "Casco LS2", Price: 5000, Size: "S"}
	lineM = LineItem{ProductID: "1", ProductName: "Casco LS2", Price: 5000, Size: "M"}
	lineG = LineItem{ProductID: "9", ProductName: "Guantes", Price: 12000, Size: "L"}
)

func TestLoadFailsSoft(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		storage Storage
	}{
		{name: "missing", storage: NewMemStorage()},
		{name: "malformed", storage: func() Storage {
			m := NewMemStorage()
			_ = m.Set(ctx, Key, "{not json")
			return m
		}()},
		{name: "wrong shape", storage: func() Storage {
			m := NewMemStorage()
			_ = m.Set(ctx, Key, `{"product_id":"1"}`)
			return m
		}()},
		{name: "read error", storage: brokenStorage{Storage: NewMemStorage(), getErr: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.storage, nil)
			assert.Empty(t, s.Load(ctx))
			assert.Equal(t, 0, s.Len())
			assert.Equal(t, int64(0), s.Total())
		})
	}
}

func TestAddPersistsAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	storage := NewMemStorage()

	s := NewStore(storage, nil)
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, lineS, allowAll{}))
	require.NoError(t, s.Add(ctx, lineS, allowAll{}))
	require.NoError(t, s.Add(ctx, lineG, allowAll{}))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int64(22000), s.Total())

	reloaded := NewStore(storage, nil)
	assert.Equal(t, s.Items(), reloaded.Load(ctx))
}

func TestAddRefusedLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemStorage(), nil)
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, lineS, allowAll{}))

	err := s.Add(ctx, lineM, denyAll{})
	assert.ErrorIs(t, err, ErrNoStock)
	assert.Equal(t, 1, s.Len())

	assert.ErrorIs(t, s.Add(ctx, lineM, nil), ErrNoStock)
}

func TestAddPersistFailureDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	s := NewStore(brokenStorage{Storage: NewMemStorage(), setErr: errors.New("full")}, nil)
	s.Load(ctx)

	err := s.Add(ctx, lineS, allowAll{})
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestRemoveAtIsPositional(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemStorage(), nil)
	s.Load(ctx)
	for _, l := range []LineItem{lineS, lineS, lineM} {
		require.NoError(t, s.Add(ctx, l, allowAll{}))
	}
	before := s.Items()

	removed, err := s.RemoveAt(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, lineS, removed)

	after := s.Items()
	require.Len(t, after, 2)
	assert.Equal(t, before[1], after[0])
	assert.Equal(t, before[2], after[1])
}

func TestRemoveAtOutOfRange(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemStorage(), nil)
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, lineS, allowAll{}))

	for _, idx := range []int{-1, 1, 5} {
		_, err := s.RemoveAt(ctx, idx)
		assert.ErrorIs(t, err, ErrOutOfRange, "index %d", idx)
	}
	assert.Equal(t, 1, s.Len())
}

func TestClearReturnsPriorSnapshot(t *testing.T) {
	ctx := context.Background()
	storage := NewMemStorage()
	s := NewStore(storage, nil)
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, lineS, allowAll{}))
	require.NoError(t, s.Add(ctx, lineG, allowAll{}))

	prior, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, []LineItem{lineS, lineG}, prior)
	assert.Equal(t, 0, s.Len())

	raw, ok, err := storage.Get(ctx, Key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", raw)
}

func TestItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemStorage(), nil)
	s.Load(ctx)
	require.NoError(t, s.Add(ctx, lineS, allowAll{}))

	items := s.Items()
	items[0].Price = 1
	assert.Equal(t, int64(5000), s.Total())
}

func TestScopeIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	base := NewMemStorage()

	a := NewStore(Scope(base, "a"), nil)
	b := NewStore(Scope(base, "b"), nil)
	a.Load(ctx)
	b.Load(ctx)
	require.NoError(t, a.Add(ctx, lineS, allowAll{}))

	assert.Len(t, NewStore(Scope(base, "a"), nil).Load(ctx), 1)
	assert.Empty(t, NewStore(Scope(base, "b"), nil).Load(ctx))
	assert.Equal(t, 1, base.Len())
}
