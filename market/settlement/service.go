// Package settlement applies an agreed price to balance, inventory, and
// listing stock. It is the only writer of those three records, and every
// settlement runs as one database transaction behind a per-account lock.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maeulmarket/server/cache"
	"github.com/maeulmarket/server/market/catalog"
	"github.com/maeulmarket/server/market/negotiation"
	"github.com/maeulmarket/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	lockTTL       = 30 * time.Second
	lockKeyPrefix = "lock:settle:"
)

// ErrSettleBusy means another settlement for the same account holds the
// lock. The caller should retry shortly.
var ErrSettleBusy = errors.New("settlement: another settlement in progress")

// ErrOwnedItemMissing means the inventory item being sold no longer exists.
var ErrOwnedItemMissing = errors.New("settlement: owned item not found")

// Service implements negotiation.Settler on top of gorm and the cache.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *zap.Logger
}

func NewService(db *gorm.DB, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, logger: logger}
}

// Settle applies price to the account's balance and inventory and to the
// listing's stock in one transaction. A buy the account cannot afford
// returns Completed=false with nothing mutated. Any error also means
// nothing was mutated.
func (s *Service) Settle(ctx context.Context, accountID int64, mode model.TradeMode, item negotiation.Item, price int64) (*negotiation.SettleOutcome, error) {
	lockKey := fmt.Sprintf("%s%d", lockKeyPrefix, accountID)
	ok, err := s.cache.SetNX(ctx, lockKey, "1", lockTTL)
	if err != nil {
		return nil, fmt.Errorf("settlement: acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrSettleBusy
	}
	defer func() {
		if err := s.cache.Del(context.Background(), lockKey); err != nil {
			s.logger.Warn("release settle lock failed", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	var out *negotiation.SettleOutcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		if mode == model.TradeSell {
			out, txErr = s.settleSell(tx, accountID, item, price)
		} else {
			out, txErr = s.settleBuy(tx, accountID, item, price)
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("settlement applied",
		zap.Int64("account_id", accountID),
		zap.String("mode", string(mode)),
		zap.Int64("price", price),
		zap.Bool("completed", out.Completed))
	return out, nil
}

// settleBuy checks affordability, takes one unit of stock, mints the
// owned item, and deducts the price. Ordered so a stock failure aborts
// before any account mutation.
func (s *Service) settleBuy(tx *gorm.DB, accountID int64, item negotiation.Item, price int64) (*negotiation.SettleOutcome, error) {
	var account model.Account
	if err := tx.First(&account, accountID).Error; err != nil {
		return nil, fmt.Errorf("settlement: load account: %w", err)
	}
	if account.Balance < price {
		return &negotiation.SettleOutcome{Completed: false, Balance: account.Balance}, nil
	}

	if err := catalog.AdjustStockTx(tx, item.ListingID, -1); err != nil {
		return nil, fmt.Errorf("settlement: adjust stock: %w", err)
	}

	owned := model.OwnedItem{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		OriginalID: &item.ListingID,
		Name:       item.Name,
		Category:   item.Category,
		BasePrice:  item.BasePrice,
		IsFood:     item.IsFood,
		IsCleaned:  item.IsCleaned,
		ImageURL:   item.ImageURL,
	}
	if item.IsFood {
		now := time.Now()
		owned.PurchaseTime = &now
	}
	if err := tx.Create(&owned).Error; err != nil {
		return nil, fmt.Errorf("settlement: mint owned item: %w", err)
	}

	newBalance := account.Balance - price
	if err := tx.Model(&model.Account{}).Where("id = ?", accountID).
		Update("balance", newBalance).Error; err != nil {
		return nil, fmt.Errorf("settlement: deduct balance: %w", err)
	}

	return &negotiation.SettleOutcome{Completed: true, Balance: newBalance, OwnedID: owned.ID}, nil
}

// settleSell restocks the source listing when one is traceable, removes
// the owned item, and credits the price. Sells have no affordability gate.
func (s *Service) settleSell(tx *gorm.DB, accountID int64, item negotiation.Item, price int64) (*negotiation.SettleOutcome, error) {
	if item.OriginalID != nil {
		if err := catalog.AdjustStockTx(tx, *item.OriginalID, 1); err != nil &&
			!errors.Is(err, catalog.ErrListingNotFound) {
			return nil, fmt.Errorf("settlement: restock: %w", err)
		}
	}

	res := tx.Where("id = ? AND account_id = ?", item.OwnedID, accountID).
		Delete(&model.OwnedItem{})
	if res.Error != nil {
		return nil, fmt.Errorf("settlement: remove owned item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrOwnedItemMissing
	}

	var account model.Account
	if err := tx.First(&account, accountID).Error; err != nil {
		return nil, fmt.Errorf("settlement: load account: %w", err)
	}
	newBalance := account.Balance + price
	if err := tx.Model(&model.Account{}).Where("id = ?", accountID).
		Update("balance", newBalance).Error; err != nil {
		return nil, fmt.Errorf("settlement: credit balance: %w", err)
	}

	return &negotiation.SettleOutcome{Completed: true, Balance: newBalance}, nil
}
