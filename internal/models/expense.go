package models

import "time"

// SplitMode tells how an expense amount is divided among its allocations.
type SplitMode string

const (
	// SplitModeEvenly divides the amount equally among all allocations.
	SplitModeEvenly SplitMode = "EVENLY"

	// SplitModeByAmount gives every allocation an explicit share in cents.
	SplitModeByAmount SplitMode = "BY_AMOUNT"
)

// Expense is one row of the export that has an identifiable payer.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Title is the row description.
	Title string

	// Amount is the expense cost in cents. Never negative.
	Amount int64

	// ExpenseDate is the day the expense happened.
	ExpenseDate time.Time

	// CategoryID references a Category.
	CategoryID int64

	// IsReimbursement is true for payment rows (a transfer between two
	// participants rather than a shared cost).
	IsReimbursement bool

	// PaidByID is the participant who paid.
	PaidByID string

	// SplitMode tells whether Allocation.Shares is set.
	SplitMode SplitMode

	// CreatedAt is the Unix timestamp when the expense was imported.
	CreatedAt int64
}

// Allocation links a participant to an expense they take part in.
// The payer of an expense only has an allocation when they also carry part
// of the cost.
type Allocation struct {
	ExpenseID     string
	ParticipantID string

	// Shares is the explicit share in cents. It is nil under
	// SplitModeEvenly, where every allocation of the expense owes an equal
	// part of the amount.
	Shares *int64
}
