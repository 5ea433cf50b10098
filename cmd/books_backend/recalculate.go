package main

import (
	"errors"
	"fmt"

	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/spf13/cobra"
)

func newRecalculateCommand(a *app) *cobra.Command {
	var (
		invoiceID string
		accountID string
		allOpen   bool
	)

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Rebuild derived balances from payment applications or ledger entries",
		Example: `  books_backend recalculate --invoice 3f2a...
  books_backend recalculate --all-open
  books_backend recalculate --account 9c1e...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			set := 0
			for _, on := range []bool{invoiceID != "", accountID != "", allOpen} {
				if on {
					set++
				}
			}
			if set != 1 {
				return errors.New("exactly one of --invoice, --account or --all-open is required")
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			return a.withServices(ctx, func(sc *portssvc.ServiceContainer) error {
				switch {
				case invoiceID != "":
					summary, err := sc.Recalc.Recalculate(ctx, invoiceID, a.actor)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s: paid %s of %s, remaining %s (%s)\n", summary.TransactionID,
						summary.TotalPaid.StringFixed(2), summary.OriginalAmount.StringFixed(2),
						summary.RemainingBalance.StringFixed(2), summary.Status)
				case accountID != "":
					balance, err := sc.Ledger.RecalculateAccountBalance(ctx, accountID, a.actor)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s: balance %s\n", balance.AccountID, balance.Balance.StringFixed(2))
				default:
					summaries, err := sc.Recalc.RecalculateAllOpen(ctx, a.actor)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "recalculated %d open transactions\n", len(summaries))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&invoiceID, "invoice", "", "invoice or bill id to recalculate")
	cmd.Flags().StringVar(&accountID, "account", "", "account id whose cached balance is rebuilt")
	cmd.Flags().BoolVar(&allOpen, "all-open", false, "recalculate every pending or paid invoice and bill")
	return cmd
}
