// Package calculator infers who paid and who owes what for every row of a
// ledger export, and computes balances over an imported ledger.
package calculator

import (
	"github.com/mmynk/splitwiser-import/internal/models"
)

// ShareClass is the role a participant plays in one expense row.
type ShareClass int

const (
	// NotInvolved participants have a zero share.
	NotInvolved ShareClass = iota

	// Payer participants have a strictly positive share.
	Payer

	// TransferRecipient participants received a payment (negative share
	// on a payment row).
	TransferRecipient

	// CostSharer participants carry part of a shared cost.
	CostSharer
)

func (c ShareClass) String() string {
	switch c {
	case Payer:
		return "IS_PAYER"
	case TransferRecipient:
		return "IS_TRANSFER_RECIPIENT"
	case CostSharer:
		return "IS_COST_SHARER"
	default:
		return "NOT_INVOLVED"
	}
}

// ParticipantShare is the classification of one participant's share.
type ParticipantShare struct {
	// Index is the participant's position in the export header.
	Index int

	// Share is the signed share in cents as read from the export.
	Share int64

	Class ShareClass

	// Allocated is true when the participant gets an allocation record.
	// A payer is allocated when its share is not the full cost, i.e. it
	// also carries part of the expense.
	Allocated bool
}

// Classification is the result of classifying one expense row.
type Classification struct {
	// Cost is the expense cost in cents.
	Cost int64

	// Payment is true for transfer rows.
	Payment bool

	// PayerIndex is the header position of the payer, or -1 when no
	// participant has a positive share. With several positive shares the
	// last one wins.
	PayerIndex int

	// PayerCount is the number of strictly positive shares. Anything but
	// one means the row has no single payer.
	PayerCount int

	SplitMode models.SplitMode

	Shares []ParticipantShare
}

// HasPayer reports whether the row produces an expense.
func (c Classification) HasPayer() bool {
	return c.PayerIndex >= 0
}

// Classify decides the role of every participant of a row and whether the
// row is split evenly. It never fails: a row without a payer simply has
// PayerIndex -1.
func Classify(cost int64, shares []int64, payment bool) Classification {
	c := Classification{
		Cost:       cost,
		Payment:    payment,
		PayerIndex: -1,
		SplitMode:  models.SplitModeEvenly,
		Shares:     make([]ParticipantShare, len(shares)),
	}

	for i, share := range shares {
		ps := ParticipantShare{Index: i, Share: share}

		switch {
		case share > 0:
			ps.Class = Payer
			c.PayerIndex = i
			c.PayerCount++
		case payment && share < 0:
			ps.Class = TransferRecipient
		case !payment && share != 0:
			ps.Class = CostSharer
		default:
			ps.Class = NotInvolved
		}

		if payment {
			ps.Allocated = ps.Class == TransferRecipient
		} else {
			ps.Allocated = share != 0 && share != cost
		}

		c.Shares[i] = ps
	}

	if !payment {
		c.SplitMode = splitMode(cost, shares)
	}

	return c
}

// splitMode returns SplitModeByAmount unless every involved share is either
// the full cost or exactly half of it. An exact half only exists when the
// floor, round and ceil of cost/2 agree, i.e. the cost is an even number of
// cents.
func splitMode(cost int64, shares []int64) models.SplitMode {
	halfFloor, halfRound, halfCeil := halves(cost)
	cleanHalf := halfFloor == halfRound && halfRound == halfCeil

	for _, share := range shares {
		if share == 0 {
			continue
		}
		abs := absCents(share)
		if abs == cost {
			continue
		}
		if cleanHalf && abs == halfRound {
			continue
		}
		return models.SplitModeByAmount
	}
	return models.SplitModeEvenly
}

// halves returns cost/2 rounded down, to nearest (half away from zero) and
// up. cost is never negative.
func halves(cost int64) (floor, round, ceil int64) {
	floor = cost / 2
	ceil = (cost + 1) / 2
	round = ceil
	return floor, round, ceil
}

func absCents(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
