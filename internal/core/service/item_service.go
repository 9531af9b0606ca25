package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/port"
)

// ItemDetail is a catalog item decorated with its derived remaining stock.
type ItemDetail struct {
	domain.Item
	RemainingStock int
}

// ItemService manages the catalog. It is a read dependency of the fulfillment
// engine; item reads expose remaining stock computed from the ledger.
type ItemService struct {
	uow port.UnitOfWork
	log *slog.Logger
}

func NewItemService(uow port.UnitOfWork, log *slog.Logger) *ItemService {
	if log == nil {
		log = slog.Default()
	}
	return &ItemService{uow: uow, log: log}
}

type ItemInput struct {
	Name        string
	Price       decimal.Decimal
	Description string
}

func (in ItemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrValidation)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	return nil
}

func (s *ItemService) Get(ctx context.Context, id int64) (*ItemDetail, error) {
	var detail *ItemDetail
	err := s.uow.Execute(ctx, func(st port.Store) error {
		item, err := st.GetItem(ctx, id)
		if err != nil {
			return err
		}
		stock, err := st.AvailableStock(ctx, id)
		if err != nil {
			return err
		}
		detail = &ItemDetail{Item: *item, RemainingStock: stock}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *ItemService) List(ctx context.Context, page port.Page) ([]ItemDetail, error) {
	var details []ItemDetail
	err := s.uow.Execute(ctx, func(st port.Store) error {
		items, err := st.ListItems(ctx, page)
		if err != nil {
			return err
		}
		details = make([]ItemDetail, 0, len(items))
		for _, item := range items {
			stock, err := st.AvailableStock(ctx, item.ID)
			if err != nil {
				return err
			}
			details = append(details, ItemDetail{Item: item, RemainingStock: stock})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (s *ItemService) Create(ctx context.Context, in ItemInput) (*ItemDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := &domain.Item{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
	}
	err := s.uow.Execute(ctx, func(st port.Store) error {
		return st.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	// New items have no ledger entries yet.
	return &ItemDetail{Item: *item, RemainingStock: 0}, nil
}

func (s *ItemService) Update(ctx context.Context, id int64, in ItemInput) (*ItemDetail, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var detail *ItemDetail
	err := s.uow.Execute(ctx, func(st port.Store) error {
		if _, err := st.GetItem(ctx, id); err != nil {
			return err
		}
		item := &domain.Item{
			ID:          id,
			Name:        in.Name,
			Price:       in.Price,
			Description: in.Description,
		}
		if err := st.UpdateItem(ctx, item); err != nil {
			return err
		}
		stock, err := st.AvailableStock(ctx, id)
		if err != nil {
			return err
		}
		detail = &ItemDetail{Item: *item, RemainingStock: stock}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *ItemService) Delete(ctx context.Context, id int64) error {
	return s.uow.Execute(ctx, func(st port.Store) error {
		if _, err := st.GetItem(ctx, id); err != nil {
			return err
		}
		return st.DeleteItem(ctx, id)
	})
}
