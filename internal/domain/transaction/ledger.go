package transaction

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Effecting captures the fields of a transaction that determine its balance
// effect. A nil AccountID means the transaction touches no balance.
type Effecting struct {
	AccountID *uuid.UUID
	Amount    decimal.Decimal
	Kind      Kind
}

// Mutation describes one ledger mutation as a before/after pair:
// create is (nil -> after), delete is (before -> nil), update is both.
type Mutation struct {
	Before *Effecting
	After  *Effecting
}

// BalanceChange is one signed adjustment to one account's stored balance.
type BalanceChange struct {
	AccountID uuid.UUID
	Delta     decimal.Decimal
}

// Changes returns the balance adjustments required to keep every touched
// account consistent with the mutation. The result is netted per account,
// drops zero deltas, and is sorted by ascending account id so callers that
// lock each account in order acquire locks in one global order. This is the
// single place the reverse-then-apply algebra lives.
func (m Mutation) Changes() []BalanceChange {
	deltas := make(map[uuid.UUID]decimal.Decimal, 2)

	if m.Before != nil && m.Before.AccountID != nil {
		id := *m.Before.AccountID
		deltas[id] = deltas[id].Sub(m.Before.Kind.Effect(m.Before.Amount))
	}
	if m.After != nil && m.After.AccountID != nil {
		id := *m.After.AccountID
		deltas[id] = deltas[id].Add(m.After.Kind.Effect(m.After.Amount))
	}

	changes := make([]BalanceChange, 0, len(deltas))
	for id, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		changes = append(changes, BalanceChange{AccountID: id, Delta: delta})
	}
	sort.Slice(changes, func(i, j int) bool {
		return bytes.Compare(changes[i].AccountID[:], changes[j].AccountID[:]) < 0
	})
	return changes
}

// EffectingOf extracts the balance-relevant fields of a transaction.
func EffectingOf(t *Transaction) *Effecting {
	return &Effecting{AccountID: t.AccountID, Amount: t.Amount, Kind: t.Kind}
}
