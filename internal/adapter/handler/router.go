package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tranvu/inventory-ledger/internal/adapter/handler/middleware"
)

func NewRouter(items *ItemHandler, inventory *InventoryHandler, orders *OrderHandler, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.RequestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/items", items.Create)
		v1.GET("/items", items.List)
		v1.GET("/items/:id", items.Get)
		v1.PUT("/items/:id", items.Update)
		v1.DELETE("/items/:id", items.Delete)
		v1.GET("/items/:id/stock", items.Stock)

		v1.POST("/inventories", inventory.Record)
		v1.GET("/inventories", inventory.List)
		v1.GET("/inventories/:id", inventory.Get)

		v1.POST("/orders", orders.Place)
		v1.GET("/orders", orders.List)
		v1.GET("/orders/:id", orders.Get)
		v1.PUT("/orders/:id", orders.Modify)
		v1.DELETE("/orders/:id", orders.Cancel)
	}

	return r
}
