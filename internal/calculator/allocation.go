package calculator

import (
	"github.com/mmynk/splitwiser-import/internal/models"
)

// BuildAllocations emits the allocation records of a classified row.
// participantIDs is indexed like the export header. Allocations carry an
// explicit amount only under SplitModeByAmount: the payer owes the cost
// minus what it is owed back, everybody else owes the absolute value of
// their share.
func BuildAllocations(expenseID string, participantIDs []string, c Classification) []models.Allocation {
	var allocs []models.Allocation
	for _, ps := range c.Shares {
		if !ps.Allocated {
			continue
		}

		alloc := models.Allocation{
			ExpenseID:     expenseID,
			ParticipantID: participantIDs[ps.Index],
		}
		if !c.Payment && c.SplitMode == models.SplitModeByAmount {
			shares := explicitShare(c.Cost, ps)
			alloc.Shares = &shares
		}
		allocs = append(allocs, alloc)
	}
	return allocs
}

func explicitShare(cost int64, ps ParticipantShare) int64 {
	if ps.Class == Payer {
		return cost - ps.Share
	}
	return absCents(ps.Share)
}
