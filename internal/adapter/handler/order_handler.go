package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/core/service"
	"github.com/tranvu/inventory-ledger/internal/port"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type orderReq struct {
	ItemID   int64           `json:"item_id" binding:"required"`
	Quantity int             `json:"quantity" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
}

type orderResp struct {
	ID        int64           `json:"id"`
	OrderNo   string          `json:"order_no"`
	ItemID    int64           `json:"item_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

func toOrderResp(o *domain.Order) orderResp {
	return orderResp{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		ItemID:    o.ItemID,
		Quantity:  o.Quantity,
		Price:     o.Price,
		CreatedAt: o.CreatedAt,
	}
}

func (h *OrderHandler) Place(c *gin.Context) {
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	order, err := h.orders.Place(c.Request.Context(), service.PlaceOrderInput{
		RequestID: c.GetHeader("X-Idempotency-Key"),
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
		Price:     req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResp(order))
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), pageQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]orderResp, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResp(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) Modify(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req orderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}

	order, err := h.orders.Modify(c.Request.Context(), id, service.ModifyOrderInput{
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.orders.Cancel(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "invalid id"})
		return 0, false
	}
	return id, true
}

func pageQuery(c *gin.Context) port.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	return port.Page{Number: number, Size: size}
}
