package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maeulmarket/server/config"
	"github.com/maeulmarket/server/market/pricing"
	mw "github.com/maeulmarket/server/middleware"
	"github.com/maeulmarket/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errAlreadyCleaned   = errors.New("item already cleaned")
	errCannotAffordWash = errors.New("insufficient balance for cleaning")
)

// InventoryHandler exposes the account's owned items.
type InventoryHandler struct {
	db     *gorm.DB
	market config.MarketConfig
	logger *zap.Logger
}

// NewInventoryHandler creates an InventoryHandler.
func NewInventoryHandler(db *gorm.DB, market config.MarketConfig, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{db: db, market: market, logger: logger}
}

type ownedItemEntry struct {
	model.OwnedItem
	Spoiled      bool  `json:"spoiled"`
	CleaningCost int64 `json:"cleaning_cost"`
}

// List returns the account's inventory with spoilage computed per item.
// GET /api/inventory
func (h *InventoryHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var items []model.OwnedItem
	if err := h.db.Where("account_id = ?", accountID).
		Order("created_at DESC").Find(&items).Error; err != nil {
		h.logger.Error("list inventory failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	now := time.Now()
	entries := make([]ownedItemEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, ownedItemEntry{
			OwnedItem:    item,
			Spoiled:      pricing.Spoiled(item.IsFood, item.PurchaseTime, now, h.market.RotAfter),
			CleaningCost: pricing.CleaningCost(item.BasePrice),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

// Clean handles POST /api/inventory/:id/clean.
// Cleaning restores full sell value for one tenth of the base price.
func (h *InventoryHandler) Clean(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	itemID := c.Param("id")

	var cost, newBalance int64
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var item model.OwnedItem
		if err := tx.Where("id = ? AND account_id = ?", itemID, accountID).
			First(&item).Error; err != nil {
			return err
		}
		if item.IsCleaned {
			return errAlreadyCleaned
		}

		cost = pricing.CleaningCost(item.BasePrice)
		var acc model.Account
		if err := tx.First(&acc, accountID).Error; err != nil {
			return err
		}
		if acc.Balance < cost {
			return errCannotAffordWash
		}
		newBalance = acc.Balance - cost

		if err := tx.Model(&item).Update("is_cleaned", true).Error; err != nil {
			return err
		}
		return tx.Model(&model.Account{}).Where("id = ?", accountID).
			Update("balance", newBalance).Error
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"item_id": itemID, "cost": cost, "balance": newBalance})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, errAlreadyCleaned):
		c.JSON(http.StatusConflict, gin.H{"error": "already cleaned"})
	case errors.Is(err, errCannotAffordWash):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
	default:
		h.logger.Error("clean item failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
