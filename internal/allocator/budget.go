package allocator

import (
	"fmt"

	"github.com/yourusername/surebet/internal/models"
)

// resolveStakes turns the budgeting mode into per-leg stakes. The second return
// value is the capped leg index in capped mode and -1 otherwise.
func resolveStakes(req models.AllocationRequest) ([]float64, int, error) {
	odds := effectiveOdds(req.Legs)

	switch req.Mode {
	case models.ModeTotalBudget:
		if !positive(req.Amount) {
			return nil, -1, fmt.Errorf("%w: total budget %v", models.ErrInvalidBudget, req.Amount)
		}
		return splitBudget(odds, req.Amount), -1, nil

	case models.ModeCappedLeg:
		if !positive(req.Amount) {
			return nil, -1, fmt.Errorf("%w: cap %v", models.ErrInvalidBudget, req.Amount)
		}
		idx := minOddsIndex(odds)
		if idx < 0 {
			return nil, -1, fmt.Errorf("%w: no minimum-odds leg", models.ErrInvalidConstraint)
		}
		return balanceAgainst(odds, idx, req.Amount), idx, nil

	case models.ModeFixedLeg:
		if req.FixedIndex < 0 || req.FixedIndex >= len(req.Legs) {
			return nil, -1, fmt.Errorf("%w: fixed leg %d out of range", models.ErrInvalidConstraint, req.FixedIndex)
		}
		pinned := req.Legs[req.FixedIndex].Stake
		if !positive(pinned) {
			return nil, -1, fmt.Errorf("%w: fixed stake %v", models.ErrInvalidBudget, pinned)
		}
		return balanceAgainst(odds, req.FixedIndex, pinned), -1, nil

	default:
		return nil, -1, fmt.Errorf("%w: unknown mode %q", models.ErrInvalidConstraint, req.Mode)
	}
}

// splitBudget distributes total proportionally to inverse odds
func splitBudget(odds []float64, total float64) []float64 {
	inverseSum := inverseOddsSum(odds)
	stakes := make([]float64, len(odds))
	for i, o := range odds {
		stakes[i] = total * (1 / o) / inverseSum
	}
	return stakes
}

// balanceAgainst keeps stake on the anchor leg and sizes every other leg to the
// same gross return R = stake * odds[anchor].
func balanceAgainst(odds []float64, anchor int, stake float64) []float64 {
	target := stake * odds[anchor]
	stakes := make([]float64, len(odds))
	for i, o := range odds {
		if i == anchor {
			stakes[i] = stake
			continue
		}
		stakes[i] = target / o
	}
	return stakes
}

// minOddsIndex returns the first leg holding the lowest odds, or -1 for no legs
func minOddsIndex(odds []float64) int {
	idx := -1
	for i, o := range odds {
		if !validOdds(o) {
			continue
		}
		if idx < 0 || o < odds[idx] {
			idx = i
		}
	}
	return idx
}

func inverseOddsSum(odds []float64) float64 {
	total := 0.0
	for _, o := range odds {
		total += 1 / o
	}
	return total
}

func effectiveOdds(legs []models.Leg) []float64 {
	odds := make([]float64, len(legs))
	for i, leg := range legs {
		odds[i] = leg.EffectiveOdds()
	}
	return odds
}

// CappedTotalBudget returns the total budget implied by capping the
// minimum-odds leg at limit: limit * Σ(1/o) * min(o).
func CappedTotalBudget(legs []models.Leg, limit float64) (float64, error) {
	odds := effectiveOdds(legs)
	idx := minOddsIndex(odds)
	if idx < 0 {
		return 0, fmt.Errorf("%w: no minimum-odds leg", models.ErrInvalidConstraint)
	}
	return limit * inverseOddsSum(odds) * odds[idx], nil
}
