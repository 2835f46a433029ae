package transaction

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMutation_Changes_Create(t *testing.T) {
	acc := uuid.New()

	changes := Mutation{
		After: &Effecting{AccountID: &acc, Amount: dec("250.00"), Kind: KindExpense},
	}.Changes()

	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	if changes[0].AccountID != acc {
		t.Errorf("AccountID = %s, want %s", changes[0].AccountID, acc)
	}
	if !changes[0].Delta.Equal(dec("-250.00")) {
		t.Errorf("Delta = %s, want -250.00", changes[0].Delta)
	}
}

func TestMutation_Changes_Delete(t *testing.T) {
	acc := uuid.New()

	changes := Mutation{
		Before: &Effecting{AccountID: &acc, Amount: dec("250.00"), Kind: KindExpense},
	}.Changes()

	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	if !changes[0].Delta.Equal(dec("250.00")) {
		t.Errorf("Delta = %s, want 250.00 (reversal)", changes[0].Delta)
	}
}

func TestMutation_Changes_SameAccountNetsToOneDelta(t *testing.T) {
	acc := uuid.New()

	// 250 expense -> 300 expense nets to a single -50 adjustment.
	changes := Mutation{
		Before: &Effecting{AccountID: &acc, Amount: dec("250.00"), Kind: KindExpense},
		After:  &Effecting{AccountID: &acc, Amount: dec("300.00"), Kind: KindExpense},
	}.Changes()

	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	if !changes[0].Delta.Equal(dec("-50.00")) {
		t.Errorf("Delta = %s, want -50.00", changes[0].Delta)
	}
}

func TestMutation_Changes_NoOpUpdateDropsZeroDelta(t *testing.T) {
	acc := uuid.New()
	eff := &Effecting{AccountID: &acc, Amount: dec("250.00"), Kind: KindExpense}

	if changes := (Mutation{Before: eff, After: eff}).Changes(); len(changes) != 0 {
		t.Errorf("got %d changes for a no-op update, want 0", len(changes))
	}
}

func TestMutation_Changes_KindFlip(t *testing.T) {
	acc := uuid.New()

	// expense 200 -> income 200: reverse +200, apply +200.
	changes := Mutation{
		Before: &Effecting{AccountID: &acc, Amount: dec("200.00"), Kind: KindExpense},
		After:  &Effecting{AccountID: &acc, Amount: dec("200.00"), Kind: KindIncome},
	}.Changes()

	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}
	if !changes[0].Delta.Equal(dec("400.00")) {
		t.Errorf("Delta = %s, want 400.00", changes[0].Delta)
	}
}

func TestMutation_Changes_AccountMoveSortedAscending(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000011")

	changes := Mutation{
		Before: &Effecting{AccountID: &a, Amount: dec("100.00"), Kind: KindExpense},
		After:  &Effecting{AccountID: &b, Amount: dec("100.00"), Kind: KindExpense},
	}.Changes()

	if len(changes) != 2 {
		t.Fatalf("got %d changes, want 2", len(changes))
	}
	// b < a byte-wise, so b must come first regardless of mutation direction.
	if changes[0].AccountID != b || changes[1].AccountID != a {
		t.Errorf("changes not sorted ascending: %s then %s", changes[0].AccountID, changes[1].AccountID)
	}
	if !changes[0].Delta.Equal(dec("-100.00")) {
		t.Errorf("new account delta = %s, want -100.00", changes[0].Delta)
	}
	if !changes[1].Delta.Equal(dec("100.00")) {
		t.Errorf("old account delta = %s, want 100.00", changes[1].Delta)
	}

	// Reversed direction locks in the same order.
	reversed := Mutation{
		Before: &Effecting{AccountID: &b, Amount: dec("100.00"), Kind: KindExpense},
		After:  &Effecting{AccountID: &a, Amount: dec("100.00"), Kind: KindExpense},
	}.Changes()
	if reversed[0].AccountID != b || reversed[1].AccountID != a {
		t.Error("reversed move should lock accounts in the same global order")
	}
}

func TestMutation_Changes_NilAccountTouchesNothing(t *testing.T) {
	acc := uuid.New()

	// Assigning an account to a previously unassigned transaction only
	// touches the new account.
	changes := Mutation{
		Before: &Effecting{AccountID: nil, Amount: dec("75.00"), Kind: KindExpense},
		After:  &Effecting{AccountID: &acc, Amount: dec("75.00"), Kind: KindExpense},
	}.Changes()
	if len(changes) != 1 {
		t.Fatalf("got %d changes, want 1", len(changes))
	}

	// Fully unassigned mutations touch nothing.
	none := Mutation{
		Before: &Effecting{AccountID: nil, Amount: dec("75.00"), Kind: KindExpense},
	}.Changes()
	if len(none) != 0 {
		t.Errorf("got %d changes for an unassigned transaction, want 0", len(none))
	}
}

func TestMutation_Changes_TransferHasNoEffect(t *testing.T) {
	acc := uuid.New()

	changes := Mutation{
		After: &Effecting{AccountID: &acc, Amount: dec("500.00"), Kind: KindTransfer},
	}.Changes()
	if len(changes) != 0 {
		t.Errorf("got %d changes for a transfer, want 0", len(changes))
	}
}

// memLedger is a minimal in-memory ledger applying the same mutation algebra
// the SQL repository applies, used to exercise the balance invariant under
// sequences of mutations and concurrent writers.
type memLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]decimal.Decimal
	rows     map[uuid.UUID]*Transaction
}

func newMemLedger() *memLedger {
	return &memLedger{
		balances: make(map[uuid.UUID]decimal.Decimal),
		rows:     make(map[uuid.UUID]*Transaction),
	}
}

func (l *memLedger) openAccount(initial decimal.Decimal) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := uuid.New()
	l.balances[id] = initial
	return id
}

func (l *memLedger) apply(changes []BalanceChange) {
	for _, c := range changes {
		l.balances[c.AccountID] = l.balances[c.AccountID].Add(c.Delta)
	}
}

func (l *memLedger) create(accountID *uuid.UUID, amount decimal.Decimal, kind Kind) uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	tx := &Transaction{
		ID:         uuid.New(),
		AccountID:  accountID,
		Amount:     amount,
		Kind:       kind,
		OccurredAt: time.Now(),
	}
	l.rows[tx.ID] = tx
	l.apply(Mutation{After: EffectingOf(tx)}.Changes())
	return tx.ID
}

func (l *memLedger) update(id uuid.UUID, accountID *uuid.UUID, amount decimal.Decimal, kind Kind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old := l.rows[id]
	next := &Transaction{ID: id, AccountID: accountID, Amount: amount, Kind: kind, OccurredAt: old.OccurredAt}
	l.apply(Mutation{Before: EffectingOf(old), After: EffectingOf(next)}.Changes())
	l.rows[id] = next
}

func (l *memLedger) delete(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	old := l.rows[id]
	delete(l.rows, id)
	l.apply(Mutation{Before: EffectingOf(old)}.Changes())
}

func (l *memLedger) balance(id uuid.UUID) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[id]
}

func TestLedger_CreateDeleteRoundTrip(t *testing.T) {
	l := newMemLedger()
	acc := l.openAccount(dec("1000.00"))

	id := l.create(&acc, dec("250.00"), KindExpense)
	if got := l.balance(acc); !got.Equal(dec("750.00")) {
		t.Fatalf("balance after expense = %s, want 750.00", got)
	}

	l.delete(id)
	if got := l.balance(acc); !got.Equal(dec("1000.00")) {
		t.Errorf("balance after delete = %s, want 1000.00 (exact restore)", got)
	}
}

func TestLedger_KindChange(t *testing.T) {
	l := newMemLedger()
	acc := l.openAccount(dec("900.00"))

	id := l.create(&acc, dec("200.00"), KindExpense)
	if got := l.balance(acc); !got.Equal(dec("700.00")) {
		t.Fatalf("balance = %s, want 700.00", got)
	}

	l.update(id, &acc, dec("200.00"), KindIncome)
	if got := l.balance(acc); !got.Equal(dec("1100.00")) {
		t.Errorf("balance after kind flip = %s, want 1100.00", got)
	}
}

func TestLedger_AccountMove(t *testing.T) {
	l := newMemLedger()
	a := l.openAccount(dec("500.00"))
	b := l.openAccount(dec("400.00"))

	id := l.create(&a, dec("100.00"), KindExpense)
	l.update(id, &b, dec("100.00"), KindExpense)

	if got := l.balance(a); !got.Equal(dec("500.00")) {
		t.Errorf("source balance = %s, want 500.00 (restored)", got)
	}
	if got := l.balance(b); !got.Equal(dec("300.00")) {
		t.Errorf("target balance = %s, want 300.00", got)
	}
}

func TestLedger_ClearAccountReference(t *testing.T) {
	l := newMemLedger()
	acc := l.openAccount(dec("500.00"))

	id := l.create(&acc, dec("80.00"), KindExpense)
	l.update(id, nil, dec("80.00"), KindExpense)

	if got := l.balance(acc); !got.Equal(dec("500.00")) {
		t.Errorf("balance after clearing reference = %s, want 500.00", got)
	}
}

func TestLedger_ConcurrentWritersConverge(t *testing.T) {
	l := newMemLedger()
	acc := l.openAccount(dec("0.00"))

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			l.create(&acc, dec("10.00"), KindExpense)
		}()
	}
	wg.Wait()

	if got := l.balance(acc); !got.Equal(dec("-500.00")) {
		t.Errorf("balance = %s, want -500.00 after %d concurrent expenses", got, writers)
	}
}

func TestLedger_ConcurrentMixedMutations(t *testing.T) {
	l := newMemLedger()
	a := l.openAccount(dec("1000.00"))
	b := l.openAccount(dec("1000.00"))

	// Seed rows, then churn them concurrently: every mutation pairs a
	// reversal with an application, so both balances must end where the
	// final states say they should.
	ids := make([]uuid.UUID, 20)
	for i := range ids {
		ids[i] = l.create(&a, dec("10.00"), KindExpense)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			l.update(id, &b, dec("25.00"), KindExpense)
		}(id)
	}
	wg.Wait()

	if got := l.balance(a); !got.Equal(dec("1000.00")) {
		t.Errorf("account a = %s, want 1000.00 (all effects moved away)", got)
	}
	if got := l.balance(b); !got.Equal(dec("500.00")) {
		t.Errorf("account b = %s, want 500.00", got)
	}
}
