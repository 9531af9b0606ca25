package domain

import "time"

type EntryKind string

const (
	EntryTopUp      EntryKind = "T"
	EntryWithdrawal EntryKind = "W"
)

func (k EntryKind) Valid() bool {
	return k == EntryTopUp || k == EntryWithdrawal
}

// LedgerEntry is one signed stock movement for an item. Entries are append-only:
// they are never updated or deleted, corrections are made with compensating
// entries of the opposite kind.
type LedgerEntry struct {
	ID        int64
	ItemID    int64
	Quantity  int
	Kind      EntryKind
	CreatedAt time.Time
}

// Signed returns the entry's contribution to available stock.
func (e LedgerEntry) Signed() int {
	if e.Kind == EntryWithdrawal {
		return -e.Quantity
	}
	return e.Quantity
}
