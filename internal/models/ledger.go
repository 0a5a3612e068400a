package models

// Ledger is the complete result of one import run, in persistence order:
// the group first, then participants, expenses and allocations, since
// each batch references identities from the previous ones.
type Ledger struct {
	Group        Group
	Participants []Participant
	Expenses     []Expense
	Allocations  []Allocation
}

// ParticipantByID returns the participant with the given ID.
func (l *Ledger) ParticipantByID(id string) (Participant, bool) {
	for _, p := range l.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// AllocationsFor returns the allocations of one expense, in order.
func (l *Ledger) AllocationsFor(expenseID string) []Allocation {
	var allocs []Allocation
	for _, a := range l.Allocations {
		if a.ExpenseID == expenseID {
			allocs = append(allocs, a)
		}
	}
	return allocs
}
