package domain

import "github.com/shopspring/decimal"

// Item is a catalog entry. Stock is never stored on the item itself; it is
// always derived from the ledger.
type Item struct {
	ID          int64
	Name        string
	Price       decimal.Decimal
	Description string
}
