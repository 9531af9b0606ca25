package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/core/service"
)

// InventoryHandler exposes the ledger: recording manual movements and reading
// entries. Entries are append-only, so there is no update or delete route.
type InventoryHandler struct {
	stock *service.StockService
}

func NewInventoryHandler(stock *service.StockService) *InventoryHandler {
	return &InventoryHandler{stock: stock}
}

type entryReq struct {
	ItemID   int64  `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
}

type entryResp struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Quantity  int       `json:"quantity"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func toEntryResp(e *domain.LedgerEntry) entryResp {
	return entryResp{
		ID:        e.ID,
		ItemID:    e.ItemID,
		Quantity:  e.Quantity,
		Kind:      string(e.Kind),
		CreatedAt: e.CreatedAt,
	}
}

func (h *InventoryHandler) Record(c *gin.Context) {
	var req entryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	entry, err := h.stock.Record(c.Request.Context(), service.RecordEntryInput{
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
		Kind:     domain.EntryKind(req.Kind),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEntryResp(entry))
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	entry, err := h.stock.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEntryResp(entry))
}

func (h *InventoryHandler) List(c *gin.Context) {
	entries, err := h.stock.List(c.Request.Context(), pageQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]entryResp, 0, len(entries))
	for i := range entries {
		resp = append(resp, toEntryResp(&entries[i]))
	}
	c.JSON(http.StatusOK, resp)
}
