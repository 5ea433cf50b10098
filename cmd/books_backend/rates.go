package main

import (
	"fmt"
	"strings"
	"time"

	portssvc "github.com/SscSPs/bookkeeping_core/internal/core/ports/services"
	"github.com/spf13/cobra"
)

func newRatesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Exchange rate maintenance",
	}
	cmd.AddCommand(newRatesFetchCommand(a))
	return cmd
}

func newRatesFetchCommand(a *app) *cobra.Command {
	var (
		currencies []string
		date       string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch ECB reference rates into the home currency",
		Long: `fetch stores automatic (non-manual) rates for each currency into the home
currency. Weekends and holidays walk back to the last published day.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			on := time.Now().UTC()
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid --date '%s': use YYYY-MM-DD", date)
				}
				on = parsed
			}

			ctx := cmd.Context()
			return a.withServices(ctx, func(sc *portssvc.ServiceContainer) error {
				rates, err := sc.RateFetcher.FetchRates(ctx, currencies, on)
				if err != nil {
					return err
				}
				for _, r := range rates {
					fmt.Fprintf(cmd.OutOrStdout(), "%s->%s %s on %s\n", r.FromCurrencyCode, r.ToCurrencyCode,
						r.Rate.String(), r.DateEffective.Format("2006-01-02"))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&currencies, "currencies", []string{"EUR", "CAD", "GBP"}, "currencies to fetch")
	cmd.Flags().StringVar(&date, "date", "", "rate date (YYYY-MM-DD, default today)")
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		for i, c := range currencies {
			currencies[i] = strings.ToUpper(strings.TrimSpace(c))
		}
		return nil
	}
	return cmd
}
