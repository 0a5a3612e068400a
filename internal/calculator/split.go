package calculator

import (
	"fmt"

	"github.com/mmynk/splitwiser-import/internal/models"
)

// ExpenseShare is the amount one participant owes for one expense.
type ExpenseShare struct {
	ParticipantID string
	Amount        int64 // cents
}

// EvenShares divides amount cents into n parts. The remainder cents go to
// the first parts so that the parts always sum to amount.
func EvenShares(amount int64, n int) ([]int64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	parts := make([]int64, n)
	base := amount / int64(n)
	remainder := amount % int64(n)
	for i := range parts {
		parts[i] = base
		if int64(i) < remainder {
			parts[i]++
		}
	}
	return parts, nil
}

// SplitExpense resolves what every allocation of an expense owes.
// Under SplitModeEvenly the amount is divided by the allocation count;
// under SplitModeByAmount each allocation must carry its explicit share.
// An expense without allocations is owed entirely by its payer.
func SplitExpense(expense models.Expense, allocs []models.Allocation) ([]ExpenseShare, error) {
	if len(allocs) == 0 {
		return []ExpenseShare{{ParticipantID: expense.PaidByID, Amount: expense.Amount}}, nil
	}

	shares := make([]ExpenseShare, len(allocs))

	if expense.SplitMode == models.SplitModeByAmount {
		for i, alloc := range allocs {
			if alloc.Shares == nil {
				return nil, fmt.Errorf("expense %s: allocation for %s has no shares", expense.ID, alloc.ParticipantID)
			}
			shares[i] = ExpenseShare{ParticipantID: alloc.ParticipantID, Amount: *alloc.Shares}
		}
		return shares, nil
	}

	parts, err := EvenShares(expense.Amount, len(allocs))
	if err != nil {
		return nil, err
	}
	for i, alloc := range allocs {
		shares[i] = ExpenseShare{ParticipantID: alloc.ParticipantID, Amount: parts[i]}
	}
	return shares, nil
}
