package models

import (
	"github.com/shopspring/decimal"
)

// LegResult holds the computed stake and outcome figures for a single leg
type LegResult struct {
	Odds                 float64 `json:"odds"`
	EffectiveOdds        float64 `json:"effective_odds"`
	Stake                float64 `json:"stake"`
	GrossReturn          float64 `json:"gross_return"`
	Commission           float64 `json:"commission"`
	Profit               float64 `json:"profit"`
	ROIPercent           float64 `json:"roi_percent"`
	ShareOfBudgetPercent float64 `json:"share_of_budget_percent"`
	IsFreeBet            bool    `json:"is_free_bet,omitempty"`
	Fixed                bool    `json:"fixed,omitempty"`
}

// AllocationResult is the outcome of a successful allocation.
// It is derived from its request and never persisted on its own.
type AllocationResult struct {
	Mode                BudgetMode  `json:"mode"`
	Legs                []LegResult `json:"legs"`
	TotalStake          float64     `json:"total_stake"`
	MinProfitAcrossLegs float64     `json:"min_profit_across_legs"`
	GuaranteedReturn    float64     `json:"guaranteed_return"`
	OverallROIPercent   float64     `json:"overall_roi_percent"`
	IsArbitrage         bool        `json:"is_arbitrage"`
	// CappedIndex is the leg the cap was applied to in ModeCappedLeg, -1 otherwise.
	CappedIndex int `json:"capped_index"`
}

// Stakes returns the per-leg stakes in input order
func (r *AllocationResult) Stakes() []float64 {
	stakes := make([]float64, len(r.Legs))
	for i, leg := range r.Legs {
		stakes[i] = leg.Stake
	}
	return stakes
}

// Rounded returns a copy with every monetary and percentage figure rounded to
// two decimal places. Intended for display only.
func (r *AllocationResult) Rounded() *AllocationResult {
	out := *r
	out.Legs = make([]LegResult, len(r.Legs))
	for i, leg := range r.Legs {
		leg.Stake = Round2(leg.Stake)
		leg.GrossReturn = Round2(leg.GrossReturn)
		leg.Commission = Round2(leg.Commission)
		leg.Profit = Round2(leg.Profit)
		leg.ROIPercent = Round2(leg.ROIPercent)
		leg.ShareOfBudgetPercent = Round2(leg.ShareOfBudgetPercent)
		out.Legs[i] = leg
	}
	out.TotalStake = Round2(r.TotalStake)
	out.MinProfitAcrossLegs = Round2(r.MinProfitAcrossLegs)
	out.GuaranteedReturn = Round2(r.GuaranteedReturn)
	out.OverallROIPercent = Round2(r.OverallROIPercent)
	return &out
}

// Round2 rounds half away from zero to two decimal places
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
