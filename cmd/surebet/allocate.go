package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/surebet/internal/allocator"
	"github.com/yourusername/surebet/internal/models"
)

// legFlags collects the per-leg inputs shared by allocate and fix
type legFlags struct {
	odds        []float64
	stakes      []float64
	boosts      []float64
	commissions []float64
	cashbacks   []float64
	freeBets    []int
}

func (f *legFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64SliceVar(&f.odds, "odds", nil, "Decimal odds per leg, comma separated")
	cmd.Flags().Float64SliceVar(&f.stakes, "stakes", nil, "Current stake per leg")
	cmd.Flags().Float64SliceVar(&f.boosts, "boost", nil, "Odds boost percent per leg")
	cmd.Flags().Float64SliceVar(&f.commissions, "commission", nil, "Commission percent on winnings per leg")
	cmd.Flags().Float64SliceVar(&f.cashbacks, "cashback", nil, "Cashback amount per leg")
	cmd.Flags().IntSliceVar(&f.freeBets, "free-bet", nil, "Zero-based indexes of legs staked with a free bet")
	_ = cmd.MarkFlagRequired("odds")
}

// legs builds the leg list. Modifier lists may be shorter than odds; missing
// values are zero.
func (f *legFlags) legs() ([]models.Leg, error) {
	n := len(f.odds)
	for name, values := range map[string][]float64{
		"stakes":     f.stakes,
		"boost":      f.boosts,
		"commission": f.commissions,
		"cashback":   f.cashbacks,
	} {
		if len(values) > n {
			return nil, fmt.Errorf("--%s has %d values for %d legs", name, len(values), n)
		}
	}

	legs := make([]models.Leg, n)
	for i, o := range f.odds {
		legs[i] = models.Leg{
			Odds:              o,
			Stake:             at(f.stakes, i),
			OddsBoostPercent:  at(f.boosts, i),
			CommissionPercent: at(f.commissions, i),
			CashbackAmount:    at(f.cashbacks, i),
		}
	}
	for _, idx := range f.freeBets {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("--free-bet index %d out of range", idx)
		}
		legs[idx].IsFreeBet = true
	}
	return legs, nil
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

var (
	allocateLegs legFlags
	budget       float64
	capAmount    float64
	fixedLeg     int
	recordResult bool
	observation  string

	fixLegs  legFlags
	fixIndex int
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Compute stakes for a set of legs",
	Example: `  surebet allocate --odds 2.0,2.2 --budget 100
  surebet allocate --odds 1.8,2.5,4.0 --cap 50
  surebet allocate --odds 2.0,2.2 --stakes 60,0 --fixed-leg 0 --commission 0,2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := buildRequest(&allocateLegs, budget, capAmount, fixedLeg)
		if err != nil {
			return err
		}
		return runAllocate(cmd.Context(), cmd.OutOrStdout(), req)
	},
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Pin one leg at its current stake and rebalance the others",
	Example: `  surebet fix --odds 2.0,2.2 --stakes 60,40 --leg 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		legs, err := fixLegs.legs()
		if err != nil {
			return err
		}
		return runFix(cmd.OutOrStdout(), models.AllocationRequest{Legs: legs}, fixIndex)
	},
}

func init() {
	allocateLegs.register(allocateCmd)
	allocateCmd.Flags().Float64Var(&budget, "budget", 0, "Total budget to split across the legs")
	allocateCmd.Flags().Float64Var(&capAmount, "cap", 0, "Maximum stake on the lowest-odds leg")
	allocateCmd.Flags().IntVar(&fixedLeg, "fixed-leg", -1, "Index of the leg whose --stakes value is pinned")
	allocateCmd.Flags().BoolVar(&recordResult, "record", false, "Record the result in the ledger")
	allocateCmd.Flags().StringVar(&owner, "owner", "", "Ledger owner id, required with --record")
	allocateCmd.Flags().StringVar(&observation, "note", "", "Observation stored with the ledger entry")
	allocateCmd.MarkFlagsMutuallyExclusive("budget", "cap", "fixed-leg")

	fixLegs.register(fixCmd)
	fixCmd.Flags().IntVar(&fixIndex, "leg", 0, "Index of the leg to pin")
	_ = fixCmd.MarkFlagRequired("stakes")
}

// buildRequest picks the budgeting mode from whichever of budget, cap or
// fixed-leg was supplied
func buildRequest(flags *legFlags, budget, limit float64, fixed int) (models.AllocationRequest, error) {
	legs, err := flags.legs()
	if err != nil {
		return models.AllocationRequest{}, err
	}

	req := models.AllocationRequest{Legs: legs}
	switch {
	case fixed >= 0:
		req.Mode = models.ModeFixedLeg
		req.FixedIndex = fixed
	case limit != 0:
		req.Mode = models.ModeCappedLeg
		req.Amount = limit
	case budget != 0:
		req.Mode = models.ModeTotalBudget
		req.Amount = budget
	default:
		return req, fmt.Errorf("one of --budget, --cap or --fixed-leg is required")
	}
	return req, nil
}

func runAllocate(ctx context.Context, out io.Writer, req models.AllocationRequest) error {
	if recordResult && owner == "" {
		return fmt.Errorf("--owner is required with --record")
	}

	alloc := allocator.New(allocator.WithMaxLegs(cfg.Allocator.MaxLegs))
	result, err := alloc.Allocate(req)
	if err != nil {
		return err
	}

	margin := allocator.ImpliedMarginPercent(effectiveOdds(req.Legs))
	var total float64
	if req.Mode == models.ModeCappedLeg {
		if total, err = allocator.CappedTotalBudget(req.Legs, req.Amount); err != nil {
			return err
		}
	}

	if jsonOutput {
		payload := map[string]interface{}{
			"result":                 result.Rounded(),
			"implied_margin_percent": models.Round2(margin),
		}
		if total > 0 {
			payload["derived_total_budget"] = models.Round2(total)
		}
		if err := writeJSON(out, payload); err != nil {
			return err
		}
	} else {
		printResult(out, result.Rounded(), margin)
		if total > 0 {
			fmt.Fprintf(out, "Equivalent total budget: %.2f\n", total)
		}
	}

	if !recordResult {
		return nil
	}

	a, err := setupApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	entry, err := a.ledger.Record(ctx, owner, result, models.RawInputsFromResult(result), observation)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nRecorded ledger entry %s\n", entry.ID)
	return nil
}

func runFix(out io.Writer, req models.AllocationRequest, leg int) error {
	alloc := allocator.New(allocator.WithMaxLegs(cfg.Allocator.MaxLegs))
	next, err := alloc.FixLeg(req, leg)
	if err != nil {
		return err
	}
	total, err := allocator.DeriveTotalBudget(next.Legs, leg)
	if err != nil {
		return err
	}
	result, err := alloc.Allocate(next)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(out, map[string]interface{}{
			"request":              next,
			"derived_total_budget": models.Round2(total),
		})
	}

	printResult(out, result.Rounded(), allocator.ImpliedMarginPercent(effectiveOdds(next.Legs)))
	fmt.Fprintf(out, "Equivalent total budget: %.2f\n", total)
	return nil
}

func printResult(out io.Writer, result *models.AllocationResult, margin float64) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "LEG\tODDS\tEFFECTIVE\tSTAKE\tRETURN\tCOMMISSION\tPROFIT\tROI %\t")
	for i, leg := range result.Legs {
		marker := ""
		switch {
		case leg.Fixed:
			marker = " (fixed)"
		case i == result.CappedIndex:
			marker = " (capped)"
		case leg.IsFreeBet:
			marker = " (free)"
		}
		fmt.Fprintf(w, "%d%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			i, marker, leg.Odds, leg.EffectiveOdds, leg.Stake, leg.GrossReturn,
			leg.Commission, leg.Profit, leg.ROIPercent)
	}
	w.Flush()

	fmt.Fprintf(out, "\nTotal stake:       %.2f\n", result.TotalStake)
	fmt.Fprintf(out, "Guaranteed return: %.2f\n", result.GuaranteedReturn)
	fmt.Fprintf(out, "Minimum profit:    %.2f (%.2f%%)\n", result.MinProfitAcrossLegs, result.OverallROIPercent)
	fmt.Fprintf(out, "Implied margin:    %.2f%%\n", margin)
	if result.IsArbitrage {
		fmt.Fprintln(out, "Arbitrage:         yes")
	} else {
		fmt.Fprintln(out, "Arbitrage:         no")
	}
}

func effectiveOdds(legs []models.Leg) []float64 {
	odds := make([]float64, len(legs))
	for i, leg := range legs {
		odds[i] = leg.EffectiveOdds()
	}
	return odds
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
