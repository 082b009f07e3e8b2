package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maeulmarket/server/market/catalog"
	"go.uber.org/zap"
)

// MarketHandler exposes the browsable catalog.
type MarketHandler struct {
	store  *catalog.Store
	logger *zap.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(store *catalog.Store, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{store: store, logger: logger}
}

// List returns listings that still have stock, newest first.
// GET /api/market/listings
func (h *MarketHandler) List(c *gin.Context) {
	listings, err := h.store.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("list listings failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// Detail returns a single listing.
// GET /api/market/listings/:id
func (h *MarketHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	listing, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, listing)
}
