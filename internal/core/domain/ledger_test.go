package domain

import "testing"

func TestEntrySigned(t *testing.T) {
	topUp := LedgerEntry{Quantity: 5, Kind: EntryTopUp}
	if topUp.Signed() != 5 {
		t.Errorf("expected +5, got %d", topUp.Signed())
	}

	withdrawal := LedgerEntry{Quantity: 3, Kind: EntryWithdrawal}
	if withdrawal.Signed() != -3 {
		t.Errorf("expected -3, got %d", withdrawal.Signed())
	}
}

func TestEntryKindValid(t *testing.T) {
	if !EntryTopUp.Valid() || !EntryWithdrawal.Valid() {
		t.Error("expected T and W to be valid kinds")
	}
	if EntryKind("X").Valid() {
		t.Error("expected X to be invalid")
	}
}
