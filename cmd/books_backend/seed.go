package main

import (
	"fmt"
	"log/slog"

	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/SscSPs/bookkeeping_core/internal/platform/chart"
	"github.com/spf13/cobra"
)

func newSeedCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the chart of accounts and sales taxes from YAML",
		Long: `seed upserts accounts by code and sales taxes by name, so it can be rerun
after editing the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, taxes, err := chart.LoadFile(file)
			if err != nil {
				return err
			}
			return a.withServices(cmd.Context(), func(sc *portssvc.ServiceContainer) error {
				result, err := sc.Account.SeedChart(cmd.Context(), accounts, taxes, a.actor)
				if err != nil {
					return fmt.Errorf("seed failed: %w", err)
				}
				a.logger.Info("Chart seeded", slog.Int("accounts", result.Accounts), slog.Int("sales_taxes", result.SalesTaxes))
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d accounts and %d sales taxes\n", result.Accounts, result.SalesTaxes)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "chart.yaml", "chart of accounts YAML file")
	return cmd
}
