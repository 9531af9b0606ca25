package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/port"
)

func TestMemoryExecute_RollsBackOnError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	item := &domain.Item{Name: "laptop", Price: decimal.NewFromInt(10)}
	if err := store.Execute(ctx, func(st port.Store) error {
		return st.CreateItem(ctx, item)
	}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	boom := errors.New("boom")
	err := store.Execute(ctx, func(st port.Store) error {
		if err := st.AppendEntry(ctx, &domain.LedgerEntry{
			ItemID:   item.ID,
			Quantity: 5,
			Kind:     domain.EntryTopUp,
		}); err != nil {
			return err
		}
		if err := st.InsertOrder(ctx, &domain.Order{
			OrderNo:  "O1",
			ItemID:   item.ID,
			Quantity: 1,
			Price:    decimal.NewFromInt(1),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got: %v", err)
	}

	// Neither the entry nor the order may be visible.
	err = store.Execute(ctx, func(st port.Store) error {
		avail, err := st.AvailableStock(ctx, item.ID)
		if err != nil {
			return err
		}
		if avail != 0 {
			t.Errorf("expected available 0 after rollback, got %d", avail)
		}
		orders, err := st.ListOrders(ctx, port.Page{})
		if err != nil {
			return err
		}
		if len(orders) != 0 {
			t.Errorf("expected 0 orders after rollback, got %d", len(orders))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestMemoryInsertOrder_DuplicateNumberConflicts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Execute(ctx, func(st port.Store) error {
		return st.InsertOrder(ctx, &domain.Order{OrderNo: "O1", ItemID: 1, Quantity: 1, Price: decimal.NewFromInt(1)})
	})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err = store.Execute(ctx, func(st port.Store) error {
		return st.InsertOrder(ctx, &domain.Order{OrderNo: "O1", ItemID: 1, Quantity: 1, Price: decimal.NewFromInt(1)})
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got: %v", err)
	}
}

func TestMemoryAppendEntry_AssignsIDAndTimestamp(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	entry := &domain.LedgerEntry{ItemID: 1, Quantity: 3, Kind: domain.EntryTopUp}
	err := store.Execute(ctx, func(st port.Store) error {
		return st.AppendEntry(ctx, entry)
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected assigned id")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected creation timestamp")
	}
}

func TestMemoryNextOrderNumber_RollsBackWithUnit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Execute(ctx, func(st port.Store) error {
		if _, err := st.NextOrderNumber(ctx); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got: %v", err)
	}

	var next int64
	err = store.Execute(ctx, func(st port.Store) error {
		var err error
		next, err = st.NextOrderNumber(ctx)
		return err
	})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next != 1 {
		t.Errorf("expected sequence to restart at 1 after rollback, got %d", next)
	}
}

func TestPageSlice(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	if got := pageSlice(all, port.Page{Number: 0, Size: 2}); len(got) != 2 || got[0] != 1 {
		t.Errorf("unexpected first page: %v", got)
	}
	if got := pageSlice(all, port.Page{Number: 2, Size: 2}); len(got) != 1 || got[0] != 5 {
		t.Errorf("unexpected last page: %v", got)
	}
	if got := pageSlice(all, port.Page{Number: 9, Size: 2}); got != nil {
		t.Errorf("expected nil for out-of-range page, got %v", got)
	}
}
