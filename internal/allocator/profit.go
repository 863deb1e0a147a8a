package allocator

import (
	"math"

	"github.com/yourusername/surebet/internal/models"
)

// EvaluateLegs prices every leg for the stakes already on it.
//
// Per leg, in order:
//
//	effectiveOdds = odds * (1 + boost/100)
//	grossReturn   = stake * effectiveOdds      (stake * (effectiveOdds-1) for a free bet)
//	grossProfit   = grossReturn - stake
//	commission    = max(0, grossProfit) * commission/100
//	profit        = grossReturn - totalStake + cashback - commission
//	roi           = profit / totalStake * 100
//
// Profit is measured against the whole committed budget because every other
// leg's stake is lost when this leg wins.
func EvaluateLegs(legs []models.Leg, totalStake float64) *models.AllocationResult {
	result := &models.AllocationResult{
		Legs:        make([]models.LegResult, len(legs)),
		TotalStake:  totalStake,
		CappedIndex: -1,
	}

	minProfit := math.Inf(1)
	allNonNegative := true
	anyPositive := false

	for i, leg := range legs {
		lr := evaluateLeg(leg, totalStake)
		result.Legs[i] = lr

		if lr.Profit < minProfit {
			minProfit = lr.Profit
		}
		if lr.Profit < 0 {
			allNonNegative = false
		}
		if lr.Profit > 0 {
			anyPositive = true
		}
	}

	if len(legs) == 0 {
		minProfit = 0
	}

	result.MinProfitAcrossLegs = minProfit
	result.GuaranteedReturn = totalStake + minProfit
	if totalStake > 0 {
		result.OverallROIPercent = minProfit / totalStake * 100
	}
	result.IsArbitrage = len(legs) > 0 && allNonNegative && anyPositive
	return result
}

func evaluateLeg(leg models.Leg, totalStake float64) models.LegResult {
	effective := leg.EffectiveOdds()

	grossReturn := leg.Stake * effective
	if leg.IsFreeBet {
		grossReturn = leg.Stake * (effective - 1)
	}

	grossProfit := grossReturn - leg.Stake
	commission := math.Max(0, grossProfit) * leg.CommissionPercent / 100
	profit := grossReturn - totalStake + leg.CashbackAmount - commission

	lr := models.LegResult{
		Odds:          leg.Odds,
		EffectiveOdds: effective,
		Stake:         leg.Stake,
		GrossReturn:   grossReturn,
		Commission:    commission,
		Profit:        profit,
		IsFreeBet:     leg.IsFreeBet,
		Fixed:         leg.Fixed,
	}
	if totalStake > 0 {
		lr.ROIPercent = profit / totalStake * 100
		lr.ShareOfBudgetPercent = leg.Stake / totalStake * 100
	}
	return lr
}
