package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/splitwiser-import/internal/models"
)

// MemberBalance represents the balance information for one participant.
type MemberBalance struct {
	ParticipantID string
	Name          string
	NetBalance    int64 // Positive = owed money, Negative = owes money
	TotalPaid     int64 // Total amount paid across all expenses
	TotalOwed     int64 // Total amount this person owes
}

// DebtEdge represents a debt from one participant to another.
type DebtEdge struct {
	From   string // Participant who owes
	To     string // Participant who is owed
	Amount int64
}

// CalculateLedgerBalances computes balances across all expenses of an
// imported ledger, returning member balances in participant order and a
// simplified list of debts.
//
// Algorithm:
// - For each expense: payer contributed +amount, each allocation owes its share
// - Reimbursements are expenses owed entirely by the recipient
// - Aggregate: net_balance = total_paid - total_owed
// - Debt list: simplified using greedy matching of largest balances
func CalculateLedgerBalances(ledger *models.Ledger) ([]MemberBalance, []DebtEdge, error) {
	balances := make(map[string]*MemberBalance, len(ledger.Participants))
	for _, p := range ledger.Participants {
		balances[p.ID] = &MemberBalance{ParticipantID: p.ID, Name: p.Name}
	}

	allocsByExpense := make(map[string][]models.Allocation, len(ledger.Expenses))
	for _, a := range ledger.Allocations {
		allocsByExpense[a.ExpenseID] = append(allocsByExpense[a.ExpenseID], a)
	}

	for _, expense := range ledger.Expenses {
		payer, ok := balances[expense.PaidByID]
		if !ok {
			return nil, nil, fmt.Errorf("expense %s: unknown payer %s", expense.ID, expense.PaidByID)
		}
		payer.TotalPaid += expense.Amount

		shares, err := SplitExpense(expense, allocsByExpense[expense.ID])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to split expense: %w", err)
		}
		for _, share := range shares {
			bal, ok := balances[share.ParticipantID]
			if !ok {
				return nil, nil, fmt.Errorf("expense %s: unknown participant %s", expense.ID, share.ParticipantID)
			}
			bal.TotalOwed += share.Amount
		}
	}

	memberBalances := make([]MemberBalance, 0, len(ledger.Participants))
	var creditors, debtors []MemberBalance
	for _, p := range ledger.Participants {
		bal := balances[p.ID]
		bal.NetBalance = bal.TotalPaid - bal.TotalOwed
		memberBalances = append(memberBalances, *bal)

		if bal.NetBalance > 0 {
			creditors = append(creditors, *bal)
		} else if bal.NetBalance < 0 {
			debtors = append(debtors, *bal)
		}
	}

	return memberBalances, simplifyDebts(creditors, debtors), nil
}

// simplifyDebts matches debtors with creditors to minimize transactions.
func simplifyDebts(creditors, debtors []MemberBalance) []DebtEdge {
	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].NetBalance > creditors[j].NetBalance })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].NetBalance < debtors[j].NetBalance })

	debtorBalance := make(map[string]int64, len(debtors))
	creditorBalance := make(map[string]int64, len(creditors))
	for _, debtor := range debtors {
		debtorBalance[debtor.ParticipantID] = -debtor.NetBalance // Make positive
	}
	for _, creditor := range creditors {
		creditorBalance[creditor.ParticipantID] = creditor.NetBalance
	}

	var debtEdges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].ParticipantID
		creditor := creditors[j].ParticipantID

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := min(debtorBalance[debtor], creditorBalance[creditor])
		if amount > 0 {
			debtEdges = append(debtEdges, DebtEdge{From: debtor, To: creditor, Amount: amount})
		}

		debtorBalance[debtor] -= amount
		creditorBalance[creditor] -= amount

		if debtorBalance[debtor] == 0 {
			i++
		}
		if creditorBalance[creditor] == 0 {
			j++
		}
	}

	return debtEdges
}
