package main

import (
	"fmt"
	"strconv"
	"time"

	"cashon/internal/queue"
	"cashon/internal/services/account"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(accrueCmd)
	accrueCmd.Flags().String("at", "", "Accrue as of this RFC3339 time instead of now")

	rootCmd.AddCommand(withdrawalsCmd)
	withdrawalsCmd.AddCommand(stuckCmd)
	withdrawalsCmd.AddCommand(resumeCmd)
	stuckCmd.Flags().Duration("older-than", 15*time.Minute, "Minimum time spent in processing")
	resumeCmd.Flags().Duration("older-than", pendingGrace, "Minimum time spent pending")

	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(createUserCmd)
	createUserCmd.Flags().String("email", "", "Email of the user")
	createUserCmd.Flags().String("first-name", "", "First name")
	createUserCmd.Flags().String("last-name", "", "Last name")
	_ = createUserCmd.MarkFlagRequired("email")
}

var accrueCmd = &cobra.Command{
	Use:   "accrue-interest",
	Short: "Run one interest sweep over active savings",
	Long: `Accrue the current period's interest on every active saving and mark
plans past their end date as matured. Periods that already have interest are
skipped, so the command is safe to run more than once.`,
	RunE: runAccrue,
}

func runAccrue(cmd *cobra.Command, args []string) error {
	at := time.Now().UTC()
	if raw, _ := cmd.Flags().GetString("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		at = parsed.UTC()
	}

	d, err := bootstrap(cmd.Context(), queue.Inline{})
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.services.Savings.Sweep(cmd.Context(), at)
	if err != nil {
		return err
	}

	renderTable(cmd.OutOrStdout(),
		[]string{"Batch", "Scanned", "Accrued", "Skipped", "Matured", "Failed", "Interest"},
		[][]string{{
			res.BatchID,
			strconv.Itoa(res.Scanned),
			strconv.Itoa(res.Accrued),
			strconv.Itoa(res.Skipped),
			strconv.Itoa(res.Matured),
			strconv.Itoa(res.Failed),
			res.Interest.StringFixed(2),
		}},
	)
	if res.Failed > 0 {
		return fmt.Errorf("%d savings failed, see logs", res.Failed)
	}
	return nil
}

var withdrawalsCmd = &cobra.Command{
	Use:   "withdrawals",
	Short: "Inspect and recover withdrawals",
}

var stuckCmd = &cobra.Command{
	Use:   "stuck",
	Short: "List withdrawals waiting on reconciliation",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")

		d, err := bootstrap(cmd.Context(), queue.Inline{})
		if err != nil {
			return err
		}
		defer d.Close()

		items, err := d.services.Withdrawals.ListStuck(cmd.Context(), olderThan)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(items))
		for _, w := range items {
			lastError, _ := w.Meta["last_error"].(string)
			ambiguous := "in flight"
			if w.AmbiguousAt != nil {
				ambiguous = w.AmbiguousAt.Format(time.RFC3339)
			}
			rows = append(rows, []string{
				strconv.FormatUint(uint64(w.ID), 10),
				strconv.FormatUint(uint64(w.UserID), 10),
				w.Reference,
				w.Amount.StringFixed(2),
				w.UpdatedAt.Format(time.RFC3339),
				ambiguous,
				lastError,
			})
		}
		renderTable(cmd.OutOrStdout(), []string{"ID", "User", "Reference", "Amount", "Updated", "Ambiguous since", "Last error"}, rows)
		fmt.Fprintf(cmd.OutOrStdout(), "%d withdrawal(s) in processing for over %s\n", len(items), olderThan)
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Process pending withdrawals that never ran",
	RunE: func(cmd *cobra.Command, args []string) error {
		olderThan, _ := cmd.Flags().GetDuration("older-than")

		d, err := bootstrap(cmd.Context(), queue.Inline{})
		if err != nil {
			return err
		}
		defer d.Close()

		n, err := d.services.Withdrawals.ResumePending(cmd.Context(), time.Now().UTC().Add(-olderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d pending withdrawal(s)\n", n)
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a user and create their wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")

		d, err := bootstrap(cmd.Context(), queue.Inline{})
		if err != nil {
			return err
		}
		defer d.Close()

		user, err := d.services.Accounts.Register(cmd.Context(), account.RegisterRequest{
			Email:     email,
			FirstName: first,
			LastName:  last,
		})
		if err != nil {
			return err
		}
		wallets, err := d.services.Wallets.ListWallets(cmd.Context(), user.ID)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(wallets))
		for _, w := range wallets {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(user.ID), 10),
				user.Email,
				string(w.Type),
				strconv.FormatUint(uint64(w.ID), 10),
				w.Balance.StringFixed(2),
			})
		}
		renderTable(cmd.OutOrStdout(), []string{"User", "Email", "Wallet", "Wallet ID", "Balance"}, rows)
		return nil
	},
}
