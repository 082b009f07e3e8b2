package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/maeulmarket/server/model"
	"github.com/maeulmarket/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func seedListing(t *testing.T, s *Store, name string, stock int) *model.Listing {
	t.Helper()
	l := &model.Listing{Name: name, Category: "잡화", BasePrice: 5000, Stock: stock}
	require.NoError(t, s.Create(context.Background(), l))
	return l
}

func TestListActive_OnlyPositiveStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewStore(db, nopLogger())

	seedListing(t, s, "팔림", 0)
	seedListing(t, s, "남음", 3)

	listings, err := s.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "남음", listings[0].Name)
}

func TestListActive_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewStore(db, nopLogger())

	older := &model.Listing{Name: "오래된 물건", Category: "잡화", BasePrice: 1000, Stock: 1,
		CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(older).Error)
	newer := &model.Listing{Name: "새 물건", Category: "잡화", BasePrice: 1000, Stock: 1,
		CreatedAt: time.Now()}
	require.NoError(t, db.Create(newer).Error)

	listings, err := s.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "새 물건", listings[0].Name)
}

func TestGet_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewStore(db, nopLogger())

	_, err := s.Get(context.Background(), 999)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestAdjustStock_Decrement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewStore(db, nopLogger())
	l := seedListing(t, s, "물건", 5)

	require.NoError(t, s.AdjustStock(context.Background(), l.ID, -1))

	got, err := s.Get(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Stock)
}

func TestAdjustStock_NeverBelowZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewStore(db, nopLogger())
	l := seedListing(t, s, "물건", 2)
	ctx := context.Background()

	// Drive it past zero with oversized and repeated deltas.
	require.NoError(t, s.AdjustStock(ctx, l.ID, -100))
	require.NoError(t, s.AdjustStock(ctx, l.ID, -1))
	require.NoError(t, s.AdjustStock(ctx, l.ID, -1))

	got, err := s.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestAdjustStock_IncrementFromZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewStore(db, nopLogger())
	l := seedListing(t, s, "물건", 0)
	ctx := context.Background()

	require.NoError(t, s.AdjustStock(ctx, l.ID, 1))

	got, err := s.Get(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}

func TestAdjustStock_MissingListing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewStore(db, nopLogger())

	err := s.AdjustStock(context.Background(), 404, -1)
	assert.ErrorIs(t, err, ErrListingNotFound)
}

func TestCountActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := NewStore(db, nopLogger())
	ctx := context.Background()

	seedListing(t, s, "a", 1)
	seedListing(t, s, "b", 9)
	seedListing(t, s, "c", 0)

	count, err := s.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
