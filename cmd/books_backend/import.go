package main

import (
	"fmt"
	"os"
	"strings"

	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/spf13/cobra"
)

func newImportCommand(a *app) *cobra.Command {
	var (
		file string
		req  portssvc.BankImportRequest
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a bank CSV statement as draft transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open statement: %w", err)
			}
			defer f.Close()

			req.CurrencyCode = strings.ToUpper(req.CurrencyCode)
			if req.CurrencyCode == "" {
				req.CurrencyCode = a.cfg.HomeCurrency
			}
			ctx := cmd.Context()
			return a.withServices(ctx, func(sc *portssvc.ServiceContainer) error {
				result, err := sc.BankImport.ImportCSV(ctx, f, req, a.actor)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d draft transactions, skipped %d rows\n", len(result.TransactionIDs), result.Skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "bank statement CSV")
	cmd.Flags().StringVar(&req.Format, "format", "", "statement layout (generic, chase)")
	cmd.Flags().StringVar(&req.BankAccountID, "bank-account", "", "bank account id the statement belongs to")
	cmd.Flags().StringVar(&req.OffsetAccountID, "offset-account", "", "account every row is classified to")
	cmd.Flags().StringVar(&req.CurrencyCode, "currency", "", "statement currency (default: home currency)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("bank-account")
	_ = cmd.MarkFlagRequired("offset-account")
	return cmd
}
