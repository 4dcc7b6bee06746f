package fee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparevest/roundup/internal/model"
)

func TestCalculator_Calculate(t *testing.T) {
	tests := []struct {
		name           string
		accountType    model.AccountType
		tierLevel      int
		roundUp        float64
		signals        model.BehaviorSignals
		wantBase       float64
		wantTotal      float64
		wantFinal      float64
		wantFallback   bool
		wantConfidence float64
	}{
		{
			name:        "individual tier 1 with loyalty and consistency discounts",
			accountType: model.AccountIndividual,
			tierLevel:   1,
			roundUp:     1.00,
			signals: model.BehaviorSignals{
				LoyaltyScore:             0.85,
				BehaviorConsistency:      0.75,
				RetentionChurnRisk:       0.2,
				MonthlyTransactionVolume: 10,
			},
			wantBase:       0.25,
			wantTotal:      -0.03,
			wantFinal:      0.22,
			wantConfidence: (0.85 + 0.75 + 0.8) / 3,
		},
		{
			name:        "no signals no adjustments",
			accountType: model.AccountIndividual,
			tierLevel:   2,
			roundUp:     1.00,
			wantBase:    0.20,
			wantFinal:   0.20,
			// loyalty 0 + consistency 0 + (1 - churn 0) over 3
			wantConfidence: 1.0 / 3.0,
		},
		{
			name:        "business pays a fraction of the round-up",
			accountType: model.AccountBusiness,
			tierLevel:   1,
			roundUp:     2.00,
			wantBase:    0.20,
			wantFinal:   0.20,
			wantConfidence: 1.0 / 3.0,
		},
		{
			name:        "every discount fires and the floor holds",
			accountType: model.AccountFamily,
			tierLevel:   3,
			roundUp:     1.00,
			signals: model.BehaviorSignals{
				LoyaltyScore:              0.9,
				BehaviorConsistency:       0.8,
				MarketCompetitivePressure: 0.8,
				RetentionChurnRisk:        0.7,
				MonthlyTransactionVolume:  60,
			},
			wantBase:       0.06,
			wantTotal:      -0.08,
			wantFinal:      0.01,
			wantConfidence: (0.9 + 0.8 + 0.3) / 3,
		},
		{
			name:           "unknown tier degrades to default",
			accountType:    model.AccountIndividual,
			tierLevel:      99,
			roundUp:        1.00,
			signals:        model.BehaviorSignals{LoyaltyScore: 0.95},
			wantBase:       0.25,
			wantFinal:      0.25,
			wantFallback:   true,
			wantConfidence: 0.5,
		},
		{
			name:           "unknown business tier uses percentage default",
			accountType:    model.AccountBusiness,
			tierLevel:      7,
			roundUp:        3.00,
			wantBase:       0.30,
			wantFinal:      0.30,
			wantFallback:   true,
			wantConfidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calculator := NewCalculator(nil)

			breakdown := calculator.Calculate(tt.accountType, tt.tierLevel, tt.roundUp, tt.signals)

			assert.InDelta(t, tt.wantBase, breakdown.BaseFee, 0.0001)
			assert.InDelta(t, tt.wantTotal, breakdown.TotalAdjustment, 0.0001)
			assert.InDelta(t, tt.wantFinal, breakdown.FinalFee, 0.0001)
			assert.Equal(t, tt.wantFallback, breakdown.Fallback)
			assert.InDelta(t, tt.wantConfidence, breakdown.ConfidenceScore, 0.0001)
		})
	}
}

func TestCalculator_AdjustmentBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		signals model.BehaviorSignals
		want    float64
	}{
		{name: "loyalty just above high tier", signals: model.BehaviorSignals{LoyaltyScore: 0.81}, want: -0.02},
		{name: "loyalty at high boundary stays mid", signals: model.BehaviorSignals{LoyaltyScore: 0.8}, want: -0.01},
		{name: "loyalty at mid boundary", signals: model.BehaviorSignals{LoyaltyScore: 0.6}, want: -0.01},
		{name: "loyalty below mid", signals: model.BehaviorSignals{LoyaltyScore: 0.59}, want: 0},
		{name: "volume above high tier", signals: model.BehaviorSignals{MonthlyTransactionVolume: 51}, want: -0.02},
		{name: "volume at high boundary stays mid", signals: model.BehaviorSignals{MonthlyTransactionVolume: 50}, want: -0.01},
		{name: "volume at mid boundary", signals: model.BehaviorSignals{MonthlyTransactionVolume: 25}, want: -0.01},
		{name: "volume below mid", signals: model.BehaviorSignals{MonthlyTransactionVolume: 24}, want: 0},
		{name: "churn at boundary does not fire", signals: model.BehaviorSignals{RetentionChurnRisk: 0.6}, want: 0},
		{name: "churn above boundary", signals: model.BehaviorSignals{RetentionChurnRisk: 0.61}, want: -0.02},
		{name: "consistency at boundary does not fire", signals: model.BehaviorSignals{BehaviorConsistency: 0.7}, want: 0},
		{name: "pressure above boundary", signals: model.BehaviorSignals{MarketCompetitivePressure: 0.71}, want: -0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calculator := NewCalculator(nil)

			breakdown := calculator.Calculate(model.AccountIndividual, 1, 1.00, tt.signals)
			assert.InDelta(t, tt.want, breakdown.TotalAdjustment, 0.0001)
		})
	}
}

func TestCalculator_FeeFloorInvariant(t *testing.T) {
	calculator := NewCalculator(nil)

	maxDiscounts := model.BehaviorSignals{
		LoyaltyScore:              1,
		BehaviorConsistency:       1,
		MarketCompetitivePressure: 1,
		RetentionChurnRisk:        1,
		MonthlyTransactionVolume:  1000,
	}

	for _, accountType := range []model.AccountType{model.AccountIndividual, model.AccountFamily, model.AccountBusiness} {
		for tier := 0; tier <= 5; tier++ {
			breakdown := calculator.Calculate(accountType, tier, 0.01, maxDiscounts)
			assert.GreaterOrEqual(t, breakdown.FinalFee, MinimumFee,
				"account %s tier %d", accountType, tier)
		}
	}
}

func TestCalculator_UnknownAccountTypeFallsBack(t *testing.T) {
	calculator := NewCalculator(nil)

	breakdown := calculator.Calculate(model.AccountType("TRUST"), 1, 1.00, model.BehaviorSignals{})

	require.True(t, breakdown.Fallback)
	assert.InDelta(t, 0.25, breakdown.FinalFee, 0.0001)
	assert.InDelta(t, 0.5, breakdown.ConfidenceScore, 0.0001)
	assert.NotEmpty(t, breakdown.Notes)
}

func TestCalculator_ConfidenceClamped(t *testing.T) {
	calculator := NewCalculator(nil)

	breakdown := calculator.Calculate(model.AccountIndividual, 1, 1.00, model.BehaviorSignals{
		LoyaltyScore:        1,
		BehaviorConsistency: 1,
	})
	assert.LessOrEqual(t, breakdown.ConfidenceScore, 1.0)
	assert.GreaterOrEqual(t, breakdown.ConfidenceScore, 0.0)
}
