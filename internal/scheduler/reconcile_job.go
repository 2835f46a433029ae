package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"fintrack/internal/domain/account"
)

// ReconcileJob audits one user's account balances: it recomputes each
// balance from the recorded transactions and reports any account whose
// stored balance disagrees. The job is read-only; drift means a bug (or
// manual database surgery) and is surfaced for investigation, not silently
// rewritten.
type ReconcileJob struct {
	userID   uuid.UUID
	accounts account.Repository
}

func NewReconcileJob(userID uuid.UUID, accounts account.Repository) *ReconcileJob {
	return &ReconcileJob{userID: userID, accounts: accounts}
}

func (j *ReconcileJob) Execute(ctx context.Context) error {
	drifts, err := j.accounts.FindBalanceDrift(ctx, j.userID)
	if err != nil {
		return fmt.Errorf("balance audit failed for user %s: %w", j.userID, err)
	}

	if len(drifts) == 0 {
		return nil
	}

	for _, d := range drifts {
		log.Printf("BALANCE DRIFT: user=%s account=%s (%s) stored=%s expected=%s diff=%s",
			j.userID, d.AccountID, d.Name,
			d.Stored, d.Expected, d.Stored.Sub(d.Expected),
		)
	}
	return fmt.Errorf("found %d account(s) with balance drift for user %s", len(drifts), j.userID)
}

func (j *ReconcileJob) UserID() string {
	return j.userID.String()
}

func (j *ReconcileJob) Description() string {
	return "balance reconciliation"
}
