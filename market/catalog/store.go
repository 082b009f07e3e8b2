// Package catalog is the shared listing store. Stock counts are contended
// across all accounts' negotiations, so every stock change goes through a
// single-statement clamped update.
package catalog

import (
	"context"
	"errors"

	"github.com/maeulmarket/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrListingNotFound is returned when a listing ID does not exist.
var ErrListingNotFound = errors.New("catalog: listing not found")

// Store provides listing queries and atomic stock adjustment.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a catalog Store.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// ListActive returns listings with positive stock, newest first.
// Only these are visible to buyers.
func (s *Store) ListActive(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	err := s.db.WithContext(ctx).
		Where("stock > 0").
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

// Get returns a listing by ID regardless of stock.
func (s *Store) Get(ctx context.Context, id int64) (*model.Listing, error) {
	var l model.Listing
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Create inserts a new listing.
func (s *Store) Create(ctx context.Context, l *model.Listing) error {
	return s.db.WithContext(ctx).Create(l).Error
}

// CountActive returns the number of positive-stock listings.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Listing{}).
		Where("stock > 0").Count(&count).Error
	return count, err
}

// AdjustStock applies delta to a listing's stock, clamped at zero.
func (s *Store) AdjustStock(ctx context.Context, id int64, delta int) error {
	return AdjustStockTx(s.db.WithContext(ctx), id, delta)
}

// AdjustStockTx applies a clamped stock delta inside an existing transaction.
// The read-modify-write happens in one statement so concurrent adjustments
// never lose updates.
func AdjustStockTx(tx *gorm.DB, id int64, delta int) error {
	res := tx.Model(&model.Listing{}).Where("id = ?", id).
		Update("stock", gorm.Expr("CASE WHEN stock + ? < 0 THEN 0 ELSE stock + ? END", delta, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the row is missing or the clamped value was unchanged;
		// only the former is an error.
		var count int64
		if err := tx.Model(&model.Listing{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrListingNotFound
		}
	}
	return nil
}
