package inventory

import (
	"github.com/emstack/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceKey identifies one on-hand balance: a material, an owner, and
// optionally a lot. A nil LotID means "across all lots".
type BalanceKey struct {
	MaterialID uuid.UUID
	Owner      valueobject.Owner
	LotID      *uuid.UUID
}

// Matches reports whether the entry belongs to this key's fold
func (k BalanceKey) Matches(e *LedgerEntry) bool {
	if e.MaterialID != k.MaterialID || !e.Owner.Equal(k.Owner) {
		return false
	}
	if k.LotID == nil {
		return true
	}
	return e.LotID != nil && *e.LotID == *k.LotID
}

// FoldBalance computes the signed sum of the entries matching the key.
// The persistent repositories compute the same fold in SQL; this in-memory
// fold is the reference definition of "balance" and backs tests and fakes.
func FoldBalance(key BalanceKey, entries []LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for i := range entries {
		if key.Matches(&entries[i]) {
			total = total.Add(entries[i].Quantity)
		}
	}
	return total
}
