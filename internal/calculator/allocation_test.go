package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitwiser-import/internal/models"
)

var testParticipants = []string{"p-alice", "p-bob", "p-charlie"}

func sumShares(t *testing.T, allocs []models.Allocation) int64 {
	t.Helper()
	var sum int64
	for _, a := range allocs {
		require.NotNil(t, a.Shares, "allocation for %s has no shares", a.ParticipantID)
		sum += *a.Shares
	}
	return sum
}

func TestBuildAllocations_Evenly(t *testing.T) {
	c := Classify(1000, []int64{500, -500, 0}, false)

	allocs := BuildAllocations("e1", testParticipants, c)

	require.Len(t, allocs, 2)
	assert.Equal(t, models.Allocation{ExpenseID: "e1", ParticipantID: "p-alice"}, allocs[0])
	assert.Equal(t, models.Allocation{ExpenseID: "e1", ParticipantID: "p-bob"}, allocs[1])
}

func TestBuildAllocations_PayerHoldsFullCost(t *testing.T) {
	// Alice paid 10.00 for Bob and Charlie, 5.00 each.
	c := Classify(1000, []int64{1000, -500, -500}, false)
	require.Equal(t, models.SplitModeEvenly, c.SplitMode)

	allocs := BuildAllocations("e1", testParticipants, c)

	assert.Equal(t, []models.Allocation{
		{ExpenseID: "e1", ParticipantID: "p-bob"},
		{ExpenseID: "e1", ParticipantID: "p-charlie"},
	}, allocs)
	for _, a := range allocs {
		assert.Nil(t, a.Shares)
	}
}

func TestBuildAllocations_OddCentSplit(t *testing.T) {
	// Alice paid 10.01 and owes 5.00; Bob owes 5.01.
	c := Classify(1001, []int64{501, -501, 0}, false)
	require.Equal(t, models.SplitModeByAmount, c.SplitMode)

	allocs := BuildAllocations("e1", testParticipants, c)

	require.Len(t, allocs, 2)
	assert.Equal(t, "p-alice", allocs[0].ParticipantID)
	assert.Equal(t, int64(500), *allocs[0].Shares)
	assert.Equal(t, "p-bob", allocs[1].ParticipantID)
	assert.Equal(t, int64(501), *allocs[1].Shares)
	assert.Equal(t, int64(1001), sumShares(t, allocs))
}

func TestBuildAllocations_ByAmountSumsToCost(t *testing.T) {
	tests := []struct {
		name   string
		cost   int64
		shares []int64
	}{
		{"uneven two-way", 1000, []int64{-700, 700, 0}},
		{"three-way", 3000, []int64{2000, -1000, -1000}},
		{"three-way uneven", 4573, []int64{-1200, 3000, -1800}},
		{"payer not sharing", 999, []int64{999, -333, -666}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.cost, tt.shares, false)
			require.Equal(t, models.SplitModeByAmount, c.SplitMode)

			allocs := BuildAllocations("e1", testParticipants, c)
			assert.Equal(t, tt.cost, sumShares(t, allocs))
		})
	}
}

func TestBuildAllocations_Payment(t *testing.T) {
	c := Classify(2001, []int64{-2001, 2001, 0}, true)

	allocs := BuildAllocations("e1", testParticipants, c)

	require.Len(t, allocs, 1)
	assert.Equal(t, "p-alice", allocs[0].ParticipantID)
	assert.Nil(t, allocs[0].Shares)
}

func TestBuildAllocations_NotInvolved(t *testing.T) {
	c := Classify(0, []int64{0, 0, 0}, false)
	assert.Empty(t, BuildAllocations("e1", testParticipants, c))
}
