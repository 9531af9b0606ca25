package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an accepted allocation of stock. OrderNo is assigned once at
// creation and preserved across modifications. Price is the quoted unit price
// captured from the request, not the item's current catalog price.
type Order struct {
	ID        int64
	OrderNo   string
	ItemID    int64
	Quantity  int
	Price     decimal.Decimal
	CreatedAt time.Time
}
