package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sparevest/roundup/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage merchant mapping rules",
	}

	cmd.AddCommand(listRulesCmd())
	cmd.AddCommand(addRuleCmd())

	return cmd
}

func listRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all mapping rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ruleList, err := store.GetRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "PATTERN\tTYPE\tTICKER\tCATEGORY\tCONF\tUSES\n")
			for _, rule := range ruleList {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%d\n",
					rule.Pattern, rule.MatchType, rule.Ticker,
					rule.Category, rule.BaseConfidence, rule.UsageCount)
			}

			return nil
		},
	}
}

func addRuleCmd() *cobra.Command {
	var (
		pattern    string
		ticker     string
		merchant   string
		category   string
		confidence float64
		matchType  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a mapping rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var mt model.MatchType
			switch matchType {
			case "exact":
				mt = model.MatchExact
			case "regex":
				mt = model.MatchRegex
			case "fuzzy":
				mt = model.MatchFuzzy
			default:
				return fmt.Errorf("unknown match type %q (expected exact, regex, or fuzzy)", matchType)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := model.MappingRule{
				Pattern:           pattern,
				Ticker:            ticker,
				CanonicalMerchant: merchant,
				Category:          category,
				MatchType:         mt,
				BaseConfidence:    confidence,
			}

			if err := store.SaveRule(ctx, &rule); err != nil {
				return fmt.Errorf("failed to add rule: %w", err)
			}

			fmt.Printf("Added rule %q -> %s\n", pattern, rule.Ticker)
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "merchant pattern (required)")
	cmd.Flags().StringVar(&ticker, "ticker", "", "ticker symbol (required)")
	cmd.Flags().StringVar(&merchant, "merchant", "", "canonical merchant name")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.9, "base confidence (0-1)")
	cmd.Flags().StringVar(&matchType, "type", "exact", "match type (exact, regex, fuzzy)")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("ticker")

	return cmd
}
