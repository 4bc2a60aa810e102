package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/examforge/internal/credits"
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Inspect and adjust exam credit balances",
}

var creditsBalanceCmd = &cobra.Command{
	Use:   "balance <email>",
	Short: "Show the credit balance of a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime(cmd, buildOptions{noLLM: true})
		if err != nil {
			return err
		}
		defer rt.Close()

		n, err := rt.ledger.Balance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d credits\n", args[0], n)
		return nil
	},
}

var creditsGrantCmd = &cobra.Command{
	Use:   "grant <email>",
	Short: "Add credits, e.g. after a pack purchase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjustCredits(cmd, args[0], true)
	},
}

var creditsConsumeCmd = &cobra.Command{
	Use:   "consume <email>",
	Short: "Remove credits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adjustCredits(cmd, args[0], false)
	},
}

var creditsHistoryCmd = &cobra.Command{
	Use:   "history <email>",
	Short: "List journal entries of a customer (sqlite ledger only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		rt, err := buildRuntime(cmd, buildOptions{noLLM: true})
		if err != nil {
			return err
		}
		defer rt.Close()

		sqlLedger, ok := rt.ledger.(*credits.SQLLedger)
		if !ok {
			return fmt.Errorf("history is only kept by the sqlite ledger (backend %q)", rt.cfg.Credits.Backend)
		}
		entries, err := sqlLedger.Entries(cmd.Context(), args[0], limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No credit entries found.")
			return nil
		}
		fmt.Fprintf(out, "%-5s  %-19s  %6s  %7s  %-6s  %s\n", "ID", "Timestamp", "Delta", "Balance", "Reason", "Reference")
		fmt.Fprintln(out, strings.Repeat("─", 80))
		for _, e := range entries {
			fmt.Fprintf(out, "%-5d  %-19s  %+6d  %7d  %-6s  %s\n",
				e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Delta, e.BalanceAfter, e.Reason, e.Reference)
		}
		return nil
	},
}

func adjustCredits(cmd *cobra.Command, email string, grant bool) error {
	amount, _ := cmd.Flags().GetInt64("amount")
	ref, _ := cmd.Flags().GetString("ref")
	if amount <= 0 {
		return fmt.Errorf("--amount must be positive")
	}

	rt, err := buildRuntime(cmd, buildOptions{noLLM: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	var n int64
	if grant {
		n, err = rt.ledger.Grant(cmd.Context(), email, amount, ref)
	} else {
		n, err = rt.ledger.Consume(cmd.Context(), email, amount, ref)
	}
	if err != nil {
		return err
	}
	rt.log.Info("credits adjusted", "email", email, "grant", grant, "amount", amount, "reference", ref)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d credits\n", email, n)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{creditsGrantCmd, creditsConsumeCmd} {
		c.Flags().Int64P("amount", "n", 1, "Number of credits")
		c.Flags().String("ref", "", "Order or exam reference; repeats are ignored by the tigerbeetle ledger")
	}
	creditsHistoryCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")

	creditsCmd.AddCommand(creditsBalanceCmd)
	creditsCmd.AddCommand(creditsGrantCmd)
	creditsCmd.AddCommand(creditsConsumeCmd)
	creditsCmd.AddCommand(creditsHistoryCmd)
}
