package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/sparevest/roundup/internal/allocate"
	"github.com/sparevest/roundup/internal/classify"
	"github.com/sparevest/roundup/internal/engine"
	"github.com/sparevest/roundup/internal/fee"
	"github.com/sparevest/roundup/internal/model"
)

func processCmd() *cobra.Command {
	var (
		file    string
		record  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the decision pipeline over a batch of transactions",
		Long: `Read transactions from a CSV file and run each one through the full
pipeline: classification, then fee calculation and allocation for
approved transactions.

Expected columns: id, merchant, hint, amount, roundup, account, tier,
retailer. A header row is optional.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			txns, err := readTransactionsCSV(file)
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				fmt.Println("No transactions to process.")
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ruleStore, err := loadRuleStore(ctx, store, nil)
			if err != nil {
				return err
			}

			opts := []engine.Option{
				engine.WithConfig(engine.Config{Workers: workers}),
			}
			if record {
				opts = append(opts, engine.WithStorage(store))
			}

			eng := engine.New(
				classify.New(ruleStore),
				fee.NewCalculator(nil),
				allocate.New(nil),
				opts...,
			)

			bar := progressbar.NewOptions(len(txns),
				progressbar.OptionSetDescription("Processing transactions"),
				progressbar.OptionShowCount(),
			)

			_, stats, err := eng.ProcessBatch(ctx, txns, func() {
				_ = bar.Add(1)
			})
			_ = bar.Finish()
			fmt.Println()
			if err != nil {
				return err
			}

			if record {
				if err := persistRuleUsage(ctx, store, ruleStore); err != nil {
					return err
				}
			}

			fmt.Printf("Processed %d transactions in %s\n", stats.Total, stats.Duration.Round(time.Millisecond))
			fmt.Printf("  auto-invested: %d\n", stats.AutoInvested)
			fmt.Printf("  queued for review: %d\n", stats.Queued)
			fmt.Printf("  left pending: %d\n", stats.Pending)
			fmt.Printf("  skipped (no stocks): %d\n", stats.Skipped)
			fmt.Printf("  failed: %d\n", stats.Failed)

			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file of transactions (required)")
	cmd.Flags().BoolVar(&record, "record", false, "record decisions in the database")
	cmd.Flags().IntVar(&workers, "workers", engine.DefaultConfig().Workers, "parallel workers")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readTransactionsCSV(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 8

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var txns []model.Transaction
	seen := make(map[string]bool)
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[1]), "merchant") {
			continue // header row
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount %q: %w", i+1, rec[3], err)
		}
		roundUp, err := strconv.ParseFloat(strings.TrimSpace(rec[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid roundup %q: %w", i+1, rec[4], err)
		}
		account, err := parseAccountType(rec[5])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		tier, err := strconv.Atoi(strings.TrimSpace(rec[6]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid tier %q: %w", i+1, rec[6], err)
		}

		txn := model.Transaction{
			ID:           strings.TrimSpace(rec[0]),
			MerchantName: rec[1],
			UserHint:     strings.TrimSpace(rec[2]),
			Amount:       amount,
			RoundUp:      roundUp,
			AccountType:  account,
			TierLevel:    tier,
		}
		if symbol := strings.TrimSpace(rec[7]); symbol != "" {
			txn.Retailer = &model.Retailer{Symbol: symbol}
		}

		hash := txn.GenerateHash()
		if seen[hash] {
			fmt.Fprintf(os.Stderr, "row %d: skipping duplicate of an earlier row\n", i+1)
			continue
		}
		seen[hash] = true

		txns = append(txns, txn)
	}

	return txns, nil
}
