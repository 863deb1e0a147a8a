package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yourusername/surebet/internal/models"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the ledger of recorded allocations",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		if owner == "" {
			return fmt.Errorf("--owner is required")
		}
		return nil
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ledger entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.ledger.List(cmd.Context(), owner)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), entries)
		}
		printEntries(cmd.OutOrStdout(), entries)
		return nil
	},
}

var historyAnnotateCmd = &cobra.Command{
	Use:   "annotate <entry-id> <observation>",
	Short: "Replace the observation on a ledger entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry id %q: %w", args[0], err)
		}

		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.ledger.Annotate(cmd.Context(), owner, id, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %s\n", entry.ID)
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <entry-id>",
	Short: "Delete a ledger entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry id %q: %w", args[0], err)
		}

		a, err := setupApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ledger.Remove(cmd.Context(), owner, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %s\n", id)
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&owner, "owner", "", "Ledger owner id")
	historyCmd.AddCommand(historyListCmd, historyAnnotateCmd, historyRemoveCmd)
}

func printEntries(out io.Writer, entries []*models.LedgerEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No ledger entries")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tLEGS\tINVESTED\tRETURN\tPROFIT\tROI %\tOBSERVATION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.Legs(),
			e.TotalInvested, e.GuaranteedReturn, e.Profit, e.ROI, truncate(e.Observation, 40))
	}
	w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
