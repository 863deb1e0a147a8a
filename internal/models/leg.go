package models

// BudgetMode selects how the total stake of an allocation is resolved
type BudgetMode string

const (
	// ModeTotalBudget distributes an explicit total stake across the legs.
	ModeTotalBudget BudgetMode = "total_budget"
	// ModeCappedLeg caps the stake on the minimum-odds leg and derives the total.
	ModeCappedLeg BudgetMode = "capped_leg"
	// ModeFixedLeg pins one leg's stake and rebalances every other leg against it.
	ModeFixedLeg BudgetMode = "fixed_leg"
)

// Leg represents one outcome/bookmaker combination inside an allocation
type Leg struct {
	Odds              float64 `json:"odds"`
	Stake             float64 `json:"stake"`
	OddsBoostPercent  float64 `json:"odds_boost_percent,omitempty"`
	CommissionPercent float64 `json:"commission_percent,omitempty"`
	CashbackAmount    float64 `json:"cashback_amount,omitempty"`
	IsFreeBet         bool    `json:"is_free_bet,omitempty"`
	Fixed             bool    `json:"fixed,omitempty"`
}

// EffectiveOdds returns the odds after the promotional boost is applied
func (l Leg) EffectiveOdds() float64 {
	return l.Odds * (1 + l.OddsBoostPercent/100)
}

// AllocationRequest is a full calculation unit: the legs plus one budgeting mode.
//
// Amount carries the total budget in ModeTotalBudget and the per-leg cap in
// ModeCappedLeg. ModeFixedLeg reads the pinned stake from Legs[FixedIndex].
type AllocationRequest struct {
	Legs       []Leg      `json:"legs"`
	Mode       BudgetMode `json:"mode"`
	Amount     float64    `json:"amount,omitempty"`
	FixedIndex int        `json:"fixed_index,omitempty"`
}

// Clone returns a deep copy of the request
func (r AllocationRequest) Clone() AllocationRequest {
	legs := make([]Leg, len(r.Legs))
	copy(legs, r.Legs)
	r.Legs = legs
	return r
}

// RawInputs holds the leg odds and stakes as the user saw them when confirming a result
type RawInputs struct {
	Odds   []float64 `json:"odds"`
	Stakes []float64 `json:"stakes"`
}

// RawInputsFromResult captures the odds and stakes of a computed result
func RawInputsFromResult(result *AllocationResult) RawInputs {
	raw := RawInputs{
		Odds:   make([]float64, len(result.Legs)),
		Stakes: make([]float64, len(result.Legs)),
	}
	for i, leg := range result.Legs {
		raw.Odds[i] = leg.Odds
		raw.Stakes[i] = leg.Stake
	}
	return raw
}
