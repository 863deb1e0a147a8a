// Package allocator computes dutching/surebet stake allocations.
//
// For legs with effective odds o_1..o_n and a total budget T the stake on leg i
// is T * (1/o_i) / Σ(1/o_j), which equalises the gross return across legs.
// Everything here is pure: no I/O, no clock, no shared state. Values keep full
// precision; round with AllocationResult.Rounded at the presentation boundary.
package allocator

import (
	"fmt"
	"math"

	"github.com/yourusername/surebet/internal/models"
)

// DefaultMaxLegs is the leg cap applied by Allocate
const DefaultMaxLegs = 10

// Allocator runs allocations with a configurable leg cap.
// The zero value is not usable; construct with New.
type Allocator struct {
	maxLegs int
}

// Option configures an Allocator
type Option func(*Allocator)

// WithMaxLegs overrides the maximum number of legs per request. Values below 2 are ignored.
func WithMaxLegs(n int) Option {
	return func(a *Allocator) {
		if n >= 2 {
			a.maxLegs = n
		}
	}
}

// New creates an allocator
func New(opts ...Option) *Allocator {
	a := &Allocator{maxLegs: DefaultMaxLegs}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxLegs returns the configured leg cap
func (a *Allocator) MaxLegs() int {
	return a.maxLegs
}

var defaultAllocator = New()

// Allocate computes an allocation using the default leg cap
func Allocate(req models.AllocationRequest) (*models.AllocationResult, error) {
	return defaultAllocator.Allocate(req)
}

// Allocate validates the request, resolves its budgeting mode and prices every leg.
// Errors wrap one of the models allocation sentinels; no partial result is returned.
func (a *Allocator) Allocate(req models.AllocationRequest) (*models.AllocationResult, error) {
	if err := a.validate(req); err != nil {
		return nil, err
	}

	stakes, cappedIndex, err := resolveStakes(req)
	if err != nil {
		return nil, err
	}

	legs := make([]models.Leg, len(req.Legs))
	copy(legs, req.Legs)
	for i := range legs {
		legs[i].Stake = stakes[i]
		legs[i].Fixed = req.Mode == models.ModeFixedLeg && i == req.FixedIndex
	}

	total := req.Amount
	if req.Mode != models.ModeTotalBudget {
		total = sum(stakes)
	}

	result := EvaluateLegs(legs, total)
	result.Mode = req.Mode
	result.CappedIndex = cappedIndex
	return result, nil
}

// validate checks the request in a fixed order so that callers always see the
// most fundamental problem first.
func (a *Allocator) validate(req models.AllocationRequest) error {
	valid := 0
	for _, leg := range req.Legs {
		if validOdds(leg.Odds) {
			valid++
		}
	}
	if valid < 2 {
		return fmt.Errorf("%w: got %d valid of %d", models.ErrInsufficientLegs, valid, len(req.Legs))
	}

	for i, leg := range req.Legs {
		if !validOdds(leg.Odds) {
			return fmt.Errorf("%w: leg %d has odds %v", models.ErrInvalidOdds, i, leg.Odds)
		}
	}

	for i, leg := range req.Legs {
		if !nonNegative(leg.OddsBoostPercent) || !nonNegative(leg.CommissionPercent) ||
			!nonNegative(leg.CashbackAmount) || !nonNegative(leg.Stake) {
			return fmt.Errorf("%w: leg %d", models.ErrInvalidModifier, i)
		}
	}

	if len(req.Legs) > a.maxLegs {
		return fmt.Errorf("%w: %d legs exceeds limit of %d", models.ErrTooManyLegs, len(req.Legs), a.maxLegs)
	}

	return nil
}

// ImpliedMarginPercent returns (1 - Σ 1/o) * 100 over the given odds.
// A positive margin means the odds set admits an arbitrage.
func ImpliedMarginPercent(odds []float64) float64 {
	inverseSum := 0.0
	for _, o := range odds {
		inverseSum += 1 / o
	}
	return (1 - inverseSum) * 100
}

func validOdds(o float64) bool {
	return o > 1 && !math.IsInf(o, 0) && !math.IsNaN(o)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
