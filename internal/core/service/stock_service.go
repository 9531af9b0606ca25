package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/port"
)

// StockService derives available stock from the ledger and records manual
// stock movements. Availability is always recomputed from the entries at call
// time; nothing is cached.
type StockService struct {
	uow port.UnitOfWork
	log *slog.Logger
}

func NewStockService(uow port.UnitOfWork, log *slog.Logger) *StockService {
	if log == nil {
		log = slog.Default()
	}
	return &StockService{uow: uow, log: log}
}

// Available returns the net sum of the item's ledger entries, 0 when the item
// has no entries yet. The item must exist.
func (s *StockService) Available(ctx context.Context, itemID int64) (int, error) {
	var available int
	err := s.uow.Execute(ctx, func(st port.Store) error {
		if _, err := st.GetItem(ctx, itemID); err != nil {
			return err
		}
		var err error
		available, err = st.AvailableStock(ctx, itemID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return available, nil
}

type RecordEntryInput struct {
	ItemID   int64
	Quantity int
	Kind     domain.EntryKind
}

func (in RecordEntryInput) validate() error {
	if in.ItemID <= 0 {
		return fmt.Errorf("%w: item id is required", domain.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: kind must be %q or %q", domain.ErrValidation,
			domain.EntryTopUp, domain.EntryWithdrawal)
	}
	return nil
}

// Record appends a manual ledger entry. A withdrawal is validated against
// current availability inside the same unit of work that writes it.
func (s *StockService) Record(ctx context.Context, in RecordEntryInput) (*domain.LedgerEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var entry *domain.LedgerEntry
	err := s.uow.Execute(ctx, func(st port.Store) error {
		item, err := st.GetItemForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}

		if in.Kind == domain.EntryWithdrawal {
			available, err := st.AvailableStock(ctx, in.ItemID)
			if err != nil {
				return err
			}
			if available < in.Quantity {
				return &domain.InsufficientStockError{
					ItemName:  item.Name,
					Available: available,
					Requested: in.Quantity,
				}
			}
		}

		e := &domain.LedgerEntry{
			ItemID:   item.ID,
			Quantity: in.Quantity,
			Kind:     in.Kind,
		}
		if err := st.AppendEntry(ctx, e); err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *StockService) Get(ctx context.Context, id int64) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry
	err := s.uow.Execute(ctx, func(st port.Store) error {
		e, err := st.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *StockService) List(ctx context.Context, page port.Page) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.uow.Execute(ctx, func(st port.Store) error {
		var err error
		entries, err = st.ListEntries(ctx, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
