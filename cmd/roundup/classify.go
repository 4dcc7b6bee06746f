package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparevest/roundup/internal/classify"
)

func classifyCmd() *cobra.Command {
	var hint string

	cmd := &cobra.Command{
		Use:   "classify <merchant>",
		Short: "Classify a merchant string to a ticker symbol",
		Long: `Run the classification cascade against a raw merchant descriptor and
print the resulting ticker, category, confidence, and evidence.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ruleStore, err := loadRuleStore(ctx, store, nil)
			if err != nil {
				return err
			}

			classifier := classify.New(ruleStore)
			result := classifier.Classify(args[0], hint)

			if !result.Matched() {
				fmt.Printf("No match for %q (%s)\n", args[0], result.Evidence)
				return nil
			}

			fmt.Printf("Merchant:    %s\n", result.Merchant)
			fmt.Printf("Ticker:      %s\n", displayOrDash(result.Ticker))
			fmt.Printf("Category:    %s\n", displayOrDash(result.Category))
			fmt.Printf("Confidence:  %.2f\n", result.Confidence)
			fmt.Printf("Method:      %s\n", result.Method)
			fmt.Printf("Evidence:    %s\n", result.Evidence)

			return nil
		},
	}

	cmd.Flags().StringVar(&hint, "hint", "", "user-supplied ticker hint")

	return cmd
}

func displayOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
