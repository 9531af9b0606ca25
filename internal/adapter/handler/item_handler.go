package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tranvu/inventory-ledger/internal/core/service"
)

type ItemHandler struct {
	items *service.ItemService
	stock *service.StockService
}

func NewItemHandler(items *service.ItemService, stock *service.StockService) *ItemHandler {
	return &ItemHandler{items: items, stock: stock}
}

type itemReq struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Description string          `json:"description"`
}

type itemResp struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description,omitempty"`
	RemainingStock int             `json:"remaining_stock"`
}

func toItemResp(d *service.ItemDetail) itemResp {
	return itemResp{
		ID:             d.ID,
		Name:           d.Name,
		Price:          d.Price,
		Description:    d.Description,
		RemainingStock: d.RemainingStock,
	}
}

func (h *ItemHandler) Create(c *gin.Context) {
	var req itemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	detail, err := h.items.Create(c.Request.Context(), service.ItemInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toItemResp(detail))
}

func (h *ItemHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	detail, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResp(detail))
}

func (h *ItemHandler) List(c *gin.Context) {
	details, err := h.items.List(c.Request.Context(), pageQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]itemResp, 0, len(details))
	for i := range details {
		resp = append(resp, toItemResp(&details[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ItemHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req itemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	detail, err := h.items.Update(c.Request.Context(), id, service.ItemInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toItemResp(detail))
}

func (h *ItemHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.items.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stock reports current availability derived from the ledger.
func (h *ItemHandler) Stock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	available, err := h.stock.Available(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item_id":   id,
		"available": available,
		"as_of":     time.Now().UTC(),
	})
}
