// Package models defines the domain models produced by a ledger import.
//
// An import run creates exactly one Group, one Participant per participant
// column of the export, one Expense per row that has a payer, and the
// Allocations linking participants to those expenses. Nothing is updated
// after creation; re-running an import creates a new group.
//
// # Relationships
//
// Models reference each other by ID strings instead of pointers:
//   - Participant.GroupID and Expense.GroupID point at the Group
//   - Expense.PaidByID points at a Participant of the same group
//   - Allocation.ExpenseID and Allocation.ParticipantID link the two
//
// # Amounts
//
// All monetary values are integer cents. Floating-point values from the
// source file never reach these types.
package models
