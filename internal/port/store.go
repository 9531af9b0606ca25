package port

import (
	"context"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
)

const defaultPageSize = 20

// Page is a zero-based page request for list reads.
type Page struct {
	Number int
	Size   int
}

func (p Page) Limit() int {
	if p.Size <= 0 {
		return defaultPageSize
	}
	return p.Size
}

func (p Page) Offset() int {
	if p.Number <= 0 {
		return 0
	}
	return p.Number * p.Limit()
}

// Store is the durable catalog/ledger/order store. Implementations bound to a
// transaction are handed out by UnitOfWork; reads through such a Store observe
// the same consistent snapshot as any writes made in the same unit.
type Store interface {
	// GetItem returns domain.ErrNotFound if the item does not exist.
	GetItem(ctx context.Context, id int64) (*domain.Item, error)
	// GetItemForUpdate additionally locks the item row for the rest of the
	// unit of work, serializing mutations per item.
	GetItemForUpdate(ctx context.Context, id int64) (*domain.Item, error)
	ListItems(ctx context.Context, page Page) ([]domain.Item, error)
	CreateItem(ctx context.Context, item *domain.Item) error
	UpdateItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id int64) error

	// AppendEntry assigns the entry's ID and creation timestamp. Entries are
	// never updated or deleted.
	AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error
	GetEntry(ctx context.Context, id int64) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, page Page) ([]domain.LedgerEntry, error)
	// AvailableStock folds the item's ledger: sum of top-ups minus sum of
	// withdrawals, 0 when the item has no entries.
	AvailableStock(ctx context.Context, itemID int64) (int, error)

	// InsertOrder returns domain.ErrConflict when the order number collides
	// with a concurrently inserted order.
	InsertOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, page Page) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, id int64) error

	// NextOrderNumber advances the order number sequence and returns the new
	// value. The sequence is monotonic for the lifetime of the store: a value
	// handed out once is never handed out again, even after the order that
	// used it is deleted. Rolls back with the surrounding unit of work.
	NextOrderNumber(ctx context.Context) (int64, error)
}

// UnitOfWork runs fn against a Store bound to one transaction. If fn returns
// an error the whole unit rolls back and none of its writes become visible.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(Store) error) error
}
