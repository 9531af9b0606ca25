package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tranvu/inventory-ledger/internal/adapter/storage"
	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/core/service"
	"github.com/tranvu/inventory-ledger/internal/port"
)

func newTestRouter(t *testing.T) (*gin.Engine, *storage.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	items := service.NewItemService(store, nil)
	stock := service.NewStockService(store, nil)
	orders := service.NewOrderService(store, nil, nil, nil)

	router := NewRouter(
		NewItemHandler(items, stock),
		NewInventoryHandler(stock),
		NewOrderHandler(orders),
		slog.Default(),
	)
	return router, store
}

func seedItemWithStock(t *testing.T, store *storage.MemoryStore, name string, stock int) int64 {
	t.Helper()
	item := &domain.Item{Name: name, Price: decimal.NewFromInt(100)}
	err := store.Execute(context.Background(), func(st port.Store) error {
		if err := st.CreateItem(context.Background(), item); err != nil {
			return err
		}
		if stock <= 0 {
			return nil
		}
		return st.AppendEntry(context.Background(), &domain.LedgerEntry{
			ItemID:   item.ID,
			Quantity: stock,
			Kind:     domain.EntryTopUp,
		})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return item.ID
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPlaceOrderHTTP(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := seedItemWithStock(t, store, "laptop", 10)

	w := doJSON(t, router, http.MethodPost, "/v1/orders", gin.H{
		"item_id":  itemID,
		"quantity": 7,
		"price":    "999.99",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		OrderNo  string `json:"order_no"`
		Quantity int    `json:"quantity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.OrderNo != "O1" || resp.Quantity != 7 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestPlaceOrderHTTP_InsufficientStock(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := seedItemWithStock(t, store, "laptop", 3)

	w := doJSON(t, router, http.MethodPost, "/v1/orders", gin.H{
		"item_id":  itemID,
		"quantity": 5,
		"price":    "10",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error     string `json:"error"`
		Item      string `json:"item"`
		Available int    `json:"available"`
		Requested int    `json:"requested"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "insufficient_stock" || resp.Item != "laptop" || resp.Available != 3 || resp.Requested != 5 {
		t.Errorf("unexpected diagnostics: %+v", resp)
	}
}

func TestPlaceOrderHTTP_Validation(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := seedItemWithStock(t, store, "laptop", 10)

	w := doJSON(t, router, http.MethodPost, "/v1/orders", gin.H{
		"item_id":  itemID,
		"quantity": -1,
		"price":    "10",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestOrderNotFoundHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/v1/orders/99", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestCancelOrderHTTP(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := seedItemWithStock(t, store, "laptop", 10)

	w := doJSON(t, router, http.MethodPost, "/v1/orders", gin.H{
		"item_id":  itemID,
		"quantity": 4,
		"price":    "10",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("place failed: %d", w.Code)
	}
	var placed struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &placed); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	path := fmt.Sprintf("/v1/orders/%d", placed.ID)
	if w := doJSON(t, router, http.MethodDelete, path, nil); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodDelete, path, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second cancel, got %d", w.Code)
	}

	// Stock restored.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/items/%d/stock", itemID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stock read failed: %d", w.Code)
	}
	var stock struct {
		Available int `json:"available"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stock); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stock.Available != 10 {
		t.Errorf("expected available 10, got %d", stock.Available)
	}
}

func TestItemCRUDHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/items", gin.H{
		"name":        "monitor",
		"price":       "249.50",
		"description": "27 inch",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID             int64 `json:"id"`
		RemainingStock int   `json:"remaining_stock"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.RemainingStock != 0 {
		t.Errorf("new item should have no stock, got %d", created.RemainingStock)
	}

	path := fmt.Sprintf("/v1/items/%d", created.ID)
	if w := doJSON(t, router, http.MethodGet, path, nil); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	w = doJSON(t, router, http.MethodPut, path, gin.H{"name": "monitor 4k", "price": "299"})
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, router, http.MethodDelete, path, nil); w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestRecordEntryHTTP(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := seedItemWithStock(t, store, "laptop", 0)

	w := doJSON(t, router, http.MethodPost, "/v1/inventories", gin.H{
		"item_id":  itemID,
		"quantity": 15,
		"kind":     "T",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Invalid kind is rejected before any ledger interaction.
	w = doJSON(t, router, http.MethodPost, "/v1/inventories", gin.H{
		"item_id":  itemID,
		"quantity": 1,
		"kind":     "Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/v1/items/%d/stock", itemID), nil)
	var stock struct {
		Available int `json:"available"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stock); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stock.Available != 15 {
		t.Errorf("expected available 15, got %d", stock.Available)
	}
}
