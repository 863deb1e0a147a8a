package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/surebet/internal/models"
)

func TestFixLegRebalances(t *testing.T) {
	req := totalRequest(100, 2.0, 3.0, 4.0)
	req.Legs[0].Stake = 60

	fixed, err := FixLeg(req, 0)
	require.NoError(t, err)

	assert.Equal(t, models.ModeFixedLeg, fixed.Mode)
	assert.Equal(t, 0, fixed.FixedIndex)
	assert.Equal(t, 60.0, fixed.Legs[0].Stake)
	assert.InDelta(t, 40, fixed.Legs[1].Stake, tolerance)
	assert.InDelta(t, 30, fixed.Legs[2].Stake, tolerance)

	// input untouched
	assert.Equal(t, models.ModeTotalBudget, req.Mode)
	assert.Equal(t, 0.0, req.Legs[1].Stake)
}

func TestFixLegClearsPreviousFix(t *testing.T) {
	req := totalRequest(100, 2.0, 3.0, 4.0)
	req.Legs[0].Stake = 60

	first, err := FixLeg(req, 0)
	require.NoError(t, err)
	require.True(t, first.Legs[0].Fixed)

	first.Legs[2].Stake = 45
	second, err := FixLeg(first, 2)
	require.NoError(t, err)

	fixedCount := 0
	for _, leg := range second.Legs {
		if leg.Fixed {
			fixedCount++
		}
	}
	assert.Equal(t, 1, fixedCount)
	assert.True(t, second.Legs[2].Fixed)
	assert.Equal(t, 45.0, second.Legs[2].Stake)
	assert.InDelta(t, 90, second.Legs[0].Stake, tolerance)
	assert.InDelta(t, 60, second.Legs[1].Stake, tolerance)
}

func TestFixLegErrors(t *testing.T) {
	req := totalRequest(100, 2.0, 3.0)

	_, err := FixLeg(req, 0)
	assert.ErrorIs(t, err, models.ErrInvalidBudget)

	req.Legs[0].Stake = 10
	_, err = FixLeg(req, 4)
	assert.ErrorIs(t, err, models.ErrInvalidConstraint)

	_, err = DeriveTotalBudget(req.Legs, -1)
	assert.ErrorIs(t, err, models.ErrInvalidConstraint)
}

func TestModeConsistency(t *testing.T) {
	tests := []struct {
		name  string
		legs  []models.Leg
		fixAt int
	}{
		{
			name:  "three plain legs",
			legs:  []models.Leg{{Odds: 2.0, Stake: 60}, {Odds: 3.0}, {Odds: 4.0}},
			fixAt: 0,
		},
		{
			name:  "fix middle leg",
			legs:  []models.Leg{{Odds: 2.4}, {Odds: 3.1, Stake: 33.5}, {Odds: 5.5}, {Odds: 7.25}},
			fixAt: 1,
		},
		{
			name: "with modifiers",
			legs: []models.Leg{
				{Odds: 1.9, OddsBoostPercent: 10, CommissionPercent: 2},
				{Odds: 2.6, Stake: 80, CashbackAmount: 5},
				{Odds: 6.0, IsFreeBet: true},
			},
			fixAt: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := models.AllocationRequest{Legs: tt.legs, Mode: models.ModeTotalBudget, Amount: 1}

			fixed, err := FixLeg(req, tt.fixAt)
			require.NoError(t, err)
			fixedResult, err := Allocate(fixed)
			require.NoError(t, err)

			total, err := DeriveTotalBudget(fixed.Legs, tt.fixAt)
			require.NoError(t, err)
			totalResult, err := Allocate(models.AllocationRequest{
				Legs:   fixed.Legs,
				Mode:   models.ModeTotalBudget,
				Amount: total,
			})
			require.NoError(t, err)

			assert.InDelta(t, fixedResult.TotalStake, totalResult.TotalStake, 1e-9)
			assert.InDelta(t, fixedResult.MinProfitAcrossLegs, totalResult.MinProfitAcrossLegs, 1e-9)
			assert.Equal(t, fixedResult.IsArbitrage, totalResult.IsArbitrage)
			for i := range fixedResult.Legs {
				assert.InDelta(t, fixedResult.Legs[i].Stake, totalResult.Legs[i].Stake, 1e-9)
				assert.InDelta(t, fixedResult.Legs[i].Profit, totalResult.Legs[i].Profit, 1e-9)
			}
		})
	}
}
