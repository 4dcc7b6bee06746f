package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sparevest/roundup/internal/allocate"
	"github.com/sparevest/roundup/internal/model"
)

func allocateCmd() *cobra.Command {
	var (
		retailerSymbol string
		retailerName   string
		itemFlags      []string
		roundUp        float64
	)

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Split a round-up amount across qualifying stocks",
		Long: `Build the candidate stock set from a retailer and itemized brand guesses,
then distribute the round-up amount across it with equal weighting.

Items are given as "name" or "name:SYMBOL:confidence", e.g.
"Nike Shoes:NKE:0.9".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := make([]model.Item, 0, len(itemFlags))
			for _, flag := range itemFlags {
				item, err := parseItem(flag)
				if err != nil {
					return err
				}
				items = append(items, item)
			}

			var retailer *model.Retailer
			if retailerSymbol != "" {
				retailer = &model.Retailer{Symbol: retailerSymbol, Name: retailerName}
			}

			allocator := allocate.New(nil)
			lines, err := allocator.Allocate(items, retailer, roundUp)
			if err != nil {
				return fmt.Errorf("allocation failed: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "SYMBOL\tAMOUNT\tPCT\tCONF\tREASON\n")
			for _, line := range lines {
				fmt.Fprintf(w, "%s\t%.2f\t%.1f%%\t%.2f\t%s\n",
					line.StockSymbol, line.Amount, line.Percentage,
					line.Confidence, line.Reason)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&retailerSymbol, "retailer", "", "retailer ticker symbol")
	cmd.Flags().StringVar(&retailerName, "retailer-name", "", "retailer display name")
	cmd.Flags().StringArrayVar(&itemFlags, "item", nil, "line item (repeatable)")
	cmd.Flags().Float64Var(&roundUp, "amount", 1.00, "round-up amount")

	return cmd
}
