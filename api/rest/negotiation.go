package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maeulmarket/server/audit"
	"github.com/maeulmarket/server/market/catalog"
	"github.com/maeulmarket/server/market/negotiation"
	mw "github.com/maeulmarket/server/middleware"
	"github.com/maeulmarket/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NegotiationHandler drives the haggling session lifecycle over REST.
type NegotiationHandler struct {
	db      *gorm.DB
	manager *negotiation.Manager
	store   *catalog.Store
	audit   *audit.Service
	logger  *zap.Logger
}

// NewNegotiationHandler creates a NegotiationHandler.
func NewNegotiationHandler(db *gorm.DB, m *negotiation.Manager, store *catalog.Store, a *audit.Service, logger *zap.Logger) *NegotiationHandler {
	return &NegotiationHandler{db: db, manager: m, store: store, audit: a, logger: logger}
}

type startRequest struct {
	Mode      model.TradeMode `json:"mode" binding:"required"`
	ListingID int64           `json:"listing_id"` // buy mode
	OwnedID   string          `json:"owned_id"`   // sell mode
}

// Start handles POST /api/negotiation/start.
func (h *NegotiationHandler) Start(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mode"})
		return
	}

	var item negotiation.Item
	switch req.Mode {
	case model.TradeBuy:
		listing, err := h.store.Get(c.Request.Context(), req.ListingID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		if listing.Stock <= 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "listing sold out"})
			return
		}
		item = negotiation.ItemFromListing(listing)
	case model.TradeSell:
		var owned model.OwnedItem
		if err := h.db.Where("id = ? AND account_id = ?", req.OwnedID, accountID).
			First(&owned).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		item = negotiation.ItemFromOwned(&owned)
	}

	view, err := h.manager.Start(accountID, req.Mode, item)
	if errors.Is(err, negotiation.ErrSessionActive) {
		c.JSON(http.StatusConflict, gin.H{"error": "negotiation already in progress"})
		return
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		Action:    "negotiation.start",
		Request:   req,
		IP:        c.ClientIP(),
	})
	c.JSON(http.StatusOK, gin.H{"session": view})
}

// Current handles GET /api/negotiation.
func (h *NegotiationHandler) Current(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	c.JSON(http.StatusOK, gin.H{"session": h.manager.Current(accountID)})
}

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

// Message handles POST /api/negotiation/message.
// The exact accept phrase settles the trade instead of producing a reply.
func (h *NegotiationHandler) Message(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, outcome, err := h.manager.SubmitMessage(c.Request.Context(), accountID, req.Text)
	if err != nil {
		h.respondSessionError(c, accountID, err)
		return
	}

	resp := gin.H{"session": view}
	if outcome != nil {
		resp["settled"] = outcome.Completed
		resp["balance"] = outcome.Balance
		if outcome.OwnedID != "" {
			resp["owned_id"] = outcome.OwnedID
		}
		h.audit.Log(audit.Entry{
			TraceID:   mw.GetTraceID(c),
			AccountID: &accountID,
			Action:    "negotiation.settle",
			Response:  outcome,
			IP:        c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel handles POST /api/negotiation/cancel.
// Cancelling leaves money, inventory, and stock untouched.
func (h *NegotiationHandler) Cancel(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	if err := h.manager.Cancel(accountID); err != nil {
		h.respondSessionError(c, accountID, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "negotiation cancelled"})
}

// Exit handles POST /api/negotiation/exit.
// Leaving mid-negotiation auto-settles at the last agreed price; a buy
// the account cannot afford is discarded with no transaction. Exiting
// with no session is fine, so clients can fire this on every page leave.
func (h *NegotiationHandler) Exit(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	outcome, err := h.manager.Exit(c.Request.Context(), accountID)
	if err != nil {
		h.logger.Error("exit settlement failed",
			zap.Int64("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		return
	}

	resp := gin.H{"message": "negotiation closed"}
	if outcome != nil {
		resp["settled"] = outcome.Completed
		resp["balance"] = outcome.Balance
		h.audit.Log(audit.Entry{
			TraceID:   mw.GetTraceID(c),
			AccountID: &accountID,
			Action:    "negotiation.exit",
			Response:  outcome,
			IP:        c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NegotiationHandler) respondSessionError(c *gin.Context, accountID int64, err error) {
	switch {
	case errors.Is(err, negotiation.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "no active negotiation"})
	case errors.Is(err, negotiation.ErrPendingReply):
		c.JSON(http.StatusConflict, gin.H{"error": "waiting for a reply"})
	case errors.Is(err, negotiation.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty"})
	default:
		h.logger.Error("negotiation request failed",
			zap.Int64("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
