package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tranvu/inventory-ledger/internal/adapter/storage"
	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/port"
)

func TestAvailable_NoEntries(t *testing.T) {
	store := storage.NewMemoryStore()
	item := seedItem(t, store, "laptop", 0)
	svc := NewStockService(store, nil)

	avail, err := svc.Available(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("available failed: %v", err)
	}
	if avail != 0 {
		t.Errorf("expected 0 for item without entries, got %d", avail)
	}
}

func TestAvailable_SumsSignedEntries(t *testing.T) {
	store := storage.NewMemoryStore()
	item := seedItem(t, store, "laptop", 10)
	svc := NewStockService(store, nil)

	if _, err := svc.Record(context.Background(), RecordEntryInput{
		ItemID:   item.ID,
		Quantity: 4,
		Kind:     domain.EntryWithdrawal,
	}); err != nil {
		t.Fatalf("record withdrawal: %v", err)
	}
	if _, err := svc.Record(context.Background(), RecordEntryInput{
		ItemID:   item.ID,
		Quantity: 3,
		Kind:     domain.EntryTopUp,
	}); err != nil {
		t.Fatalf("record top-up: %v", err)
	}

	avail, err := svc.Available(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("available failed: %v", err)
	}
	if avail != 9 {
		t.Errorf("expected 9 (10 - 4 + 3), got %d", avail)
	}
}

func TestAvailable_ItemNotFound(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewStockService(store, nil)

	if _, err := svc.Available(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestRecord_Validation(t *testing.T) {
	store := storage.NewMemoryStore()
	item := seedItem(t, store, "laptop", 10)
	svc := NewStockService(store, nil)

	cases := []RecordEntryInput{
		{ItemID: 0, Quantity: 1, Kind: domain.EntryTopUp},
		{ItemID: item.ID, Quantity: 0, Kind: domain.EntryTopUp},
		{ItemID: item.ID, Quantity: 1, Kind: "X"},
	}
	for _, in := range cases {
		if _, err := svc.Record(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("input %+v: expected ErrValidation, got: %v", in, err)
		}
	}
}

func TestRecord_WithdrawalExceedingStock(t *testing.T) {
	store := storage.NewMemoryStore()
	item := seedItem(t, store, "laptop", 2)
	svc := NewStockService(store, nil)

	_, err := svc.Record(context.Background(), RecordEntryInput{
		ItemID:   item.ID,
		Quantity: 5,
		Kind:     domain.EntryWithdrawal,
	})

	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got: %v", err)
	}
	if got := available(t, store, item.ID); got != 2 {
		t.Errorf("expected available 2, got %d", got)
	}
}

func TestEntries_GetAndList(t *testing.T) {
	store := storage.NewMemoryStore()
	item := seedItem(t, store, "laptop", 10)
	svc := NewStockService(store, nil)

	entry, err := svc.Record(context.Background(), RecordEntryInput{
		ItemID:   item.ID,
		Quantity: 5,
		Kind:     domain.EntryTopUp,
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	got, err := svc.Get(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Quantity != 5 || got.Kind != domain.EntryTopUp {
		t.Errorf("unexpected entry: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected creation timestamp to be set")
	}

	entries, err := svc.List(context.Background(), port.Page{Size: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	// Seed top-up plus the recorded one.
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}

	if _, err := svc.Get(context.Background(), 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
