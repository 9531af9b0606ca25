package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/port"
)

// MemoryStore is an in-process port.UnitOfWork used by tests and local runs.
// Execute holds one mutex for the whole unit, so units are fully serialized;
// on error the pre-unit snapshot is restored, giving the same
// all-or-nothing visibility as a database transaction.
type MemoryStore struct {
	mu sync.Mutex

	items   map[int64]domain.Item
	entries []domain.LedgerEntry
	orders  map[int64]domain.Order

	nextItemID  int64
	nextEntryID int64
	nextOrderID int64
	nextOrderNo int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:  make(map[int64]domain.Item),
		orders: make(map[int64]domain.Order),
	}
}

func (m *MemoryStore) Execute(ctx context.Context, fn func(port.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&memorySession{store: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	items       map[int64]domain.Item
	entries     []domain.LedgerEntry
	orders      map[int64]domain.Order
	nextItemID  int64
	nextEntryID int64
	nextOrderID int64
	nextOrderNo int64
}

func (m *MemoryStore) snapshot() memorySnapshot {
	items := make(map[int64]domain.Item, len(m.items))
	for id, item := range m.items {
		items[id] = item
	}
	orders := make(map[int64]domain.Order, len(m.orders))
	for id, order := range m.orders {
		orders[id] = order
	}
	entries := make([]domain.LedgerEntry, len(m.entries))
	copy(entries, m.entries)
	return memorySnapshot{
		items:       items,
		entries:     entries,
		orders:      orders,
		nextItemID:  m.nextItemID,
		nextEntryID: m.nextEntryID,
		nextOrderID: m.nextOrderID,
		nextOrderNo: m.nextOrderNo,
	}
}

func (m *MemoryStore) restore(snap memorySnapshot) {
	m.items = snap.items
	m.entries = snap.entries
	m.orders = snap.orders
	m.nextItemID = snap.nextItemID
	m.nextEntryID = snap.nextEntryID
	m.nextOrderID = snap.nextOrderID
	m.nextOrderNo = snap.nextOrderNo
}

// memorySession accesses the store's state directly; the Execute mutex is
// already held for the lifetime of the session.
type memorySession struct {
	store *MemoryStore
}

var _ port.Store = (*memorySession)(nil)

func (s *memorySession) GetItem(_ context.Context, id int64) (*domain.Item, error) {
	item, ok := s.store.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return &item, nil
}

func (s *memorySession) GetItemForUpdate(ctx context.Context, id int64) (*domain.Item, error) {
	// The unit-wide mutex already serializes every mutation.
	return s.GetItem(ctx, id)
}

func (s *memorySession) ListItems(_ context.Context, page port.Page) ([]domain.Item, error) {
	all := make([]domain.Item, 0, len(s.store.items))
	for id := int64(1); id <= s.store.nextItemID; id++ {
		if item, ok := s.store.items[id]; ok {
			all = append(all, item)
		}
	}
	return pageSlice(all, page), nil
}

func (s *memorySession) CreateItem(_ context.Context, item *domain.Item) error {
	s.store.nextItemID++
	item.ID = s.store.nextItemID
	s.store.items[item.ID] = *item
	return nil
}

func (s *memorySession) UpdateItem(_ context.Context, item *domain.Item) error {
	if _, ok := s.store.items[item.ID]; !ok {
		return fmt.Errorf("item %d: %w", item.ID, domain.ErrNotFound)
	}
	s.store.items[item.ID] = *item
	return nil
}

func (s *memorySession) DeleteItem(_ context.Context, id int64) error {
	if _, ok := s.store.items[id]; !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	delete(s.store.items, id)
	return nil
}

func (s *memorySession) AppendEntry(_ context.Context, entry *domain.LedgerEntry) error {
	s.store.nextEntryID++
	entry.ID = s.store.nextEntryID
	entry.CreatedAt = time.Now().UTC()
	s.store.entries = append(s.store.entries, *entry)
	return nil
}

func (s *memorySession) GetEntry(_ context.Context, id int64) (*domain.LedgerEntry, error) {
	for _, entry := range s.store.entries {
		if entry.ID == id {
			e := entry
			return &e, nil
		}
	}
	return nil, fmt.Errorf("ledger entry %d: %w", id, domain.ErrNotFound)
}

func (s *memorySession) ListEntries(_ context.Context, page port.Page) ([]domain.LedgerEntry, error) {
	return pageSlice(s.store.entries, page), nil
}

func (s *memorySession) AvailableStock(_ context.Context, itemID int64) (int, error) {
	available := 0
	for _, entry := range s.store.entries {
		if entry.ItemID == itemID {
			available += entry.Signed()
		}
	}
	return available, nil
}

func (s *memorySession) InsertOrder(_ context.Context, order *domain.Order) error {
	for _, existing := range s.store.orders {
		if existing.OrderNo == order.OrderNo {
			return fmt.Errorf("order number %s taken: %w", order.OrderNo, domain.ErrConflict)
		}
	}
	s.store.nextOrderID++
	order.ID = s.store.nextOrderID
	order.CreatedAt = time.Now().UTC()
	s.store.orders[order.ID] = *order
	return nil
}

func (s *memorySession) GetOrder(_ context.Context, id int64) (*domain.Order, error) {
	order, ok := s.store.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	return &order, nil
}

func (s *memorySession) ListOrders(_ context.Context, page port.Page) ([]domain.Order, error) {
	all := make([]domain.Order, 0, len(s.store.orders))
	for id := int64(1); id <= s.store.nextOrderID; id++ {
		if order, ok := s.store.orders[id]; ok {
			all = append(all, order)
		}
	}
	return pageSlice(all, page), nil
}

func (s *memorySession) UpdateOrder(_ context.Context, order *domain.Order) error {
	if _, ok := s.store.orders[order.ID]; !ok {
		return fmt.Errorf("order %d: %w", order.ID, domain.ErrNotFound)
	}
	s.store.orders[order.ID] = *order
	return nil
}

func (s *memorySession) DeleteOrder(_ context.Context, id int64) error {
	if _, ok := s.store.orders[id]; !ok {
		return fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	delete(s.store.orders, id)
	return nil
}

func (s *memorySession) NextOrderNumber(context.Context) (int64, error) {
	s.store.nextOrderNo++
	return s.store.nextOrderNo, nil
}

func pageSlice[T any](all []T, page port.Page) []T {
	offset := page.Offset()
	if offset >= len(all) {
		return nil
	}
	end := offset + page.Limit()
	if end > len(all) {
		end = len(all)
	}
	out := make([]T, end-offset)
	copy(out, all[offset:end])
	return out
}
