package allocator

import (
	"fmt"

	"github.com/yourusername/surebet/internal/models"
)

// FixLeg pins legIndex at its current stake and rebalances the other legs
// against it. Any previously fixed leg is released. The math is delegated to
// Allocate in fixed-leg mode, so the returned stakes match what Allocate
// reports for the same request.
func FixLeg(req models.AllocationRequest, legIndex int) (models.AllocationRequest, error) {
	return defaultAllocator.FixLeg(req, legIndex)
}

// FixLeg is the Allocator-bound form of the package-level FixLeg
func (a *Allocator) FixLeg(req models.AllocationRequest, legIndex int) (models.AllocationRequest, error) {
	next := req.Clone()
	for i := range next.Legs {
		next.Legs[i].Fixed = false
	}
	next.Mode = models.ModeFixedLeg
	next.FixedIndex = legIndex
	next.Amount = 0

	result, err := a.Allocate(next)
	if err != nil {
		return req, err
	}

	for i := range next.Legs {
		next.Legs[i].Stake = result.Legs[i].Stake
		next.Legs[i].Fixed = i == legIndex
	}
	return next, nil
}

// DeriveTotalBudget returns the total budget that total-budget mode would need
// to reproduce the stake currently on legIndex: stake * odds * Σ(1/o).
func DeriveTotalBudget(legs []models.Leg, legIndex int) (float64, error) {
	if legIndex < 0 || legIndex >= len(legs) {
		return 0, fmt.Errorf("%w: leg %d out of range", models.ErrInvalidConstraint, legIndex)
	}
	odds := effectiveOdds(legs)
	return legs[legIndex].Stake * odds[legIndex] * inverseOddsSum(odds), nil
}
