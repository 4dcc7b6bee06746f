package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparevest/roundup/internal/fee"
	"github.com/sparevest/roundup/internal/model"
)

func feeCmd() *cobra.Command {
	var (
		accountType string
		tierLevel   int
		roundUp     float64
		loyalty     float64
		consistency float64
		pressure    float64
		churn       float64
		volume      int
	)

	cmd := &cobra.Command{
		Use:   "fee",
		Short: "Calculate the platform fee for a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			account, err := parseAccountType(accountType)
			if err != nil {
				return err
			}

			signals := model.BehaviorSignals{
				LoyaltyScore:              loyalty,
				BehaviorConsistency:       consistency,
				MarketCompetitivePressure: pressure,
				RetentionChurnRisk:        churn,
				MonthlyTransactionVolume:  volume,
			}

			calculator := fee.NewCalculator(nil)
			breakdown := calculator.Calculate(account, tierLevel, roundUp, signals)

			fmt.Printf("Base fee:            %6.2f\n", breakdown.BaseFee)
			fmt.Printf("Loyalty discount:    %+6.2f\n", breakdown.LoyaltyDiscount)
			fmt.Printf("Behavior bonus:      %+6.2f\n", breakdown.BehaviorBonus)
			fmt.Printf("Market adjustment:   %+6.2f\n", breakdown.MarketAdjustment)
			fmt.Printf("Retention incentive: %+6.2f\n", breakdown.RetentionIncentive)
			fmt.Printf("Volume discount:     %+6.2f\n", breakdown.VolumeDiscount)
			fmt.Printf("Total adjustment:    %+6.2f\n", breakdown.TotalAdjustment)
			fmt.Printf("Final fee:           %6.2f\n", breakdown.FinalFee)
			fmt.Printf("Confidence:          %6.2f\n", breakdown.ConfidenceScore)
			if breakdown.Fallback {
				fmt.Printf("Note: %s\n", breakdown.Notes)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&accountType, "account", "individual", "account type (individual, family, business)")
	cmd.Flags().IntVar(&tierLevel, "tier", 1, "account tier level")
	cmd.Flags().Float64Var(&roundUp, "amount", 1.00, "round-up amount")
	cmd.Flags().Float64Var(&loyalty, "loyalty", 0, "loyalty score (0-1)")
	cmd.Flags().Float64Var(&consistency, "consistency", 0, "behavior consistency (0-1)")
	cmd.Flags().Float64Var(&pressure, "pressure", 0, "market competitive pressure (0-1)")
	cmd.Flags().Float64Var(&churn, "churn", 0, "retention churn risk (0-1)")
	cmd.Flags().IntVar(&volume, "volume", 0, "monthly transaction volume")

	return cmd
}
