package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tranvu/inventory-ledger/internal/core/domain"
	"github.com/tranvu/inventory-ledger/internal/port"
)

const defaultConflictRetries = 3

// OrderService is the order fulfillment engine. Every mutation runs as a unit
// of work that re-reads availability from the ledger, validates, and writes
// the order row and its paired ledger entry before committing.
type OrderService struct {
	uow     port.UnitOfWork
	idem    port.IdempotencyStore
	events  port.EventPublisher
	log     *slog.Logger
	retries int
}

func NewOrderService(uow port.UnitOfWork, idem port.IdempotencyStore, events port.EventPublisher, log *slog.Logger) *OrderService {
	if events == nil {
		events = noopPublisher{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &OrderService{
		uow:     uow,
		idem:    idem,
		events:  events,
		log:     log,
		retries: defaultConflictRetries,
	}
}

type PlaceOrderInput struct {
	// RequestID is an optional idempotency key. When set and an idempotency
	// store is configured, a repeated RequestID is rejected before any ledger
	// interaction.
	RequestID string
	ItemID    int64
	Quantity  int
	Price     decimal.Decimal
}

func (in PlaceOrderInput) validate() error {
	if in.ItemID <= 0 {
		return fmt.Errorf("%w: item id is required", domain.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	return nil
}

type ModifyOrderInput struct {
	ItemID   int64
	Quantity int
	Price    decimal.Decimal
}

func (in ModifyOrderInput) validate() error {
	if in.ItemID <= 0 {
		return fmt.Errorf("%w: item id is required", domain.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", domain.ErrValidation)
	}
	return nil
}

// Place validates requested quantity against the ledger and, in one unit of
// work, inserts the order with its next order number and the withdrawal entry
// that consumes the stock.
func (s *OrderService) Place(ctx context.Context, in PlaceOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var idemKey string
	if s.idem != nil && in.RequestID != "" {
		idemKey = "order:place:" + in.RequestID
		ok, err := s.idem.SetIdempotency(ctx, idemKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
	}

	var order *domain.Order
	err := s.withConflictRetry(ctx, func() error {
		return s.uow.Execute(ctx, func(st port.Store) error {
			item, err := st.GetItemForUpdate(ctx, in.ItemID)
			if err != nil {
				return err
			}

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

			seq, err := st.NextOrderNumber(ctx)
			if err != nil {
				return err
			}

			o := &domain.Order{
				OrderNo:  fmt.Sprintf("O%d", seq),
				ItemID:   item.ID,
				Quantity: in.Quantity,
				Price:    in.Price,
			}
			if err := st.InsertOrder(ctx, o); err != nil {
				return err
			}
			if err := st.AppendEntry(ctx, &domain.LedgerEntry{
				ItemID:   item.ID,
				Quantity: in.Quantity,
				Kind:     domain.EntryWithdrawal,
			}); err != nil {
				return err
			}

			order = o
			return nil
		})
	})
	if err != nil {
		// No order exists, so the key must not block a retry of the same
		// request.
		if idemKey != "" {
			if rerr := s.idem.ReleaseIdempotency(ctx, idemKey); rerr != nil {
				s.log.Warn("release idempotency key", "key", idemKey, "error", rerr)
			}
		}
		return nil, err
	}

	s.publish(ctx, "order.placed", order)
	return order, nil
}

// Modify changes an order's item, quantity or price. When the item or
// quantity differs from the current order, the original withdrawal is first
// reversed with a top-up entry; that reversal commits on its own even if the
// re-validation of the new allocation fails afterwards.
func (s *OrderService) Modify(ctx context.Context, id int64, in ModifyOrderInput) (*domain.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		orig    domain.Order
		updated *domain.Order
	)
	err := s.uow.Execute(ctx, func(st port.Store) error {
		o, err := st.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		orig = *o

		if o.ItemID == in.ItemID && o.Quantity == in.Quantity {
			// Same allocation: only the order's own fields change, the
			// ledger stays untouched.
			o.Price = in.Price
			if err := st.UpdateOrder(ctx, o); err != nil {
				return err
			}
			updated = o
			return nil
		}

		// Reverse the original withdrawal before re-validating.
		return st.AppendEntry(ctx, &domain.LedgerEntry{
			ItemID:   orig.ItemID,
			Quantity: orig.Quantity,
			Kind:     domain.EntryTopUp,
		})
	})
	if err != nil {
		return nil, err
	}
	if updated != nil {
		s.publish(ctx, "order.modified", updated)
		return updated, nil
	}

	// The reversal is committed; validate the new allocation in its own unit.
	err = s.withConflictRetry(ctx, func() error {
		return s.uow.Execute(ctx, func(st port.Store) error {
			item, err := st.GetItemForUpdate(ctx, in.ItemID)
			if err != nil {
				return err
			}

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

			if err := st.AppendEntry(ctx, &domain.LedgerEntry{
				ItemID:   item.ID,
				Quantity: in.Quantity,
				Kind:     domain.EntryWithdrawal,
			}); err != nil {
				return err
			}

			o := orig
			o.ItemID = item.ID
			o.Quantity = in.Quantity
			o.Price = in.Price
			if err := st.UpdateOrder(ctx, &o); err != nil {
				return err
			}
			updated = &o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "order.modified", updated)
	return updated, nil
}

// Cancel appends a compensating top-up for the order's allocation and deletes
// the order record in one unit of work.
func (s *OrderService) Cancel(ctx context.Context, id int64) error {
	var cancelled domain.Order
	err := s.uow.Execute(ctx, func(st port.Store) error {
		o, err := st.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		cancelled = *o

		if err := st.AppendEntry(ctx, &domain.LedgerEntry{
			ItemID:   o.ItemID,
			Quantity: o.Quantity,
			Kind:     domain.EntryTopUp,
		}); err != nil {
			return err
		}
		return st.DeleteOrder(ctx, o.ID)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, "order.cancelled", &cancelled)
	return nil
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var order *domain.Order
	err := s.uow.Execute(ctx, func(st port.Store) error {
		o, err := st.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context, page port.Page) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.uow.Execute(ctx, func(st port.Store) error {
		var err error
		orders, err = st.ListOrders(ctx, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *OrderService) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err = fn()
		if !errors.Is(err, domain.ErrConflict) {
			return err
		}
		s.log.Warn("transaction conflict, retrying", "attempt", attempt+1)
	}
	return err
}

type orderEvent struct {
	OrderID  int64           `json:"order_id"`
	OrderNo  string          `json:"order_no"`
	ItemID   int64           `json:"item_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (s *OrderService) publish(ctx context.Context, key string, o *domain.Order) {
	body, err := json.Marshal(orderEvent{
		OrderID:  o.ID,
		OrderNo:  o.OrderNo,
		ItemID:   o.ItemID,
		Quantity: o.Quantity,
		Price:    o.Price,
	})
	if err != nil {
		s.log.Error("marshal order event", "key", key, "error", err)
		return
	}
	if err := s.events.Publish(ctx, key, body); err != nil {
		s.log.Error("publish order event", "key", key, "order_no", o.OrderNo, "error", err)
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, []byte) error { return nil }
