package allocate

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparevest/roundup/internal/common"
	"github.com/sparevest/roundup/internal/model"
)

func guess(symbol string, confidence float64) *model.BrandGuess {
	return &model.BrandGuess{Symbol: symbol, Confidence: confidence}
}

func TestAllocator_Allocate(t *testing.T) {
	tests := []struct {
		name        string
		items       []model.Item
		retailer    *model.Retailer
		roundUp     float64
		wantSymbols []string
		wantAmounts []float64
		wantErr     error
	}{
		{
			name: "retailer plus one brand splits evenly",
			items: []model.Item{
				{Name: "Nike Shoes", BrandGuess: guess("NKE", 0.9)},
			},
			retailer:    &model.Retailer{Symbol: "TGT", Name: "Target"},
			roundUp:     1.00,
			wantSymbols: []string{"TGT", "NKE"},
			wantAmounts: []float64{0.50, 0.50},
		},
		{
			name: "payment method item with no retailer has no candidates",
			items: []model.Item{
				{Name: "Debit Tend"},
			},
			roundUp: 1.00,
			wantErr: common.ErrNoRelevantStocks,
		},
		{
			name:        "retailer only takes everything",
			retailer:    &model.Retailer{Symbol: "COST"},
			roundUp:     0.73,
			wantSymbols: []string{"COST"},
			wantAmounts: []float64{0.73},
		},
		{
			name: "three-way split assigns remainder to last",
			items: []model.Item{
				{Name: "Nike Shoes", BrandGuess: guess("NKE", 0.9)},
				{Name: "Coke 12pk", BrandGuess: guess("KO", 0.85)},
			},
			retailer:    &model.Retailer{Symbol: "TGT"},
			roundUp:     1.00,
			wantSymbols: []string{"TGT", "NKE", "KO"},
			wantAmounts: []float64{0.33, 0.33, 0.34},
		},
		{
			name: "brand at exactly the admission bound is excluded",
			items: []model.Item{
				{Name: "Nike Shoes", BrandGuess: guess("NKE", 0.70)},
			},
			retailer:    &model.Retailer{Symbol: "TGT"},
			roundUp:     1.00,
			wantSymbols: []string{"TGT"},
			wantAmounts: []float64{1.00},
		},
		{
			name: "brand just above the admission bound is included",
			items: []model.Item{
				{Name: "Nike Shoes", BrandGuess: guess("NKE", 0.7000001)},
			},
			retailer:    &model.Retailer{Symbol: "TGT"},
			roundUp:     1.00,
			wantSymbols: []string{"TGT", "NKE"},
			wantAmounts: []float64{0.50, 0.50},
		},
		{
			name: "denylisted items are skipped regardless of confidence",
			items: []model.Item{
				{Name: "Visa Debit Card", BrandGuess: guess("V", 0.99)},
				{Name: "Payment Thank You", BrandGuess: guess("MA", 0.99)},
				{Name: "Cash Back", BrandGuess: guess("WMT", 0.99)},
				{Name: "Nike Shoes", BrandGuess: guess("NKE", 0.9)},
			},
			retailer:    &model.Retailer{Symbol: "TGT"},
			roundUp:     1.00,
			wantSymbols: []string{"TGT", "NKE"},
			wantAmounts: []float64{0.50, 0.50},
		},
		{
			name: "duplicate symbols merge keeping first occurrence",
			items: []model.Item{
				{Name: "Kirkland Water", BrandGuess: guess("COST", 0.95)},
				{Name: "Nike Shoes", BrandGuess: guess("NKE", 0.9)},
				{Name: "Nike Socks", BrandGuess: guess("NKE", 0.8)},
			},
			retailer:    &model.Retailer{Symbol: "COST"},
			roundUp:     0.90,
			wantSymbols: []string{"COST", "NKE"},
			wantAmounts: []float64{0.45, 0.45},
		},
		{
			name: "candidate set capped at five with retailer priority",
			items: []model.Item{
				{Name: "A", BrandGuess: guess("AAA", 0.9)},
				{Name: "B", BrandGuess: guess("BBB", 0.9)},
				{Name: "C", BrandGuess: guess("CCC", 0.9)},
				{Name: "D", BrandGuess: guess("DDD", 0.9)},
				{Name: "E", BrandGuess: guess("EEE", 0.9)},
			},
			retailer:    &model.Retailer{Symbol: "TGT"},
			roundUp:     1.00,
			wantSymbols: []string{"TGT", "AAA", "BBB", "CCC", "DDD"},
			wantAmounts: []float64{0.20, 0.20, 0.20, 0.20, 0.20},
		},
		{
			name: "item without a brand guess contributes nothing",
			items: []model.Item{
				{Name: "Generic Oatmeal"},
			},
			roundUp: 1.00,
			wantErr: common.ErrNoRelevantStocks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocator := New(nil)

			lines, err := allocator.Allocate(tt.items, tt.retailer, tt.roundUp)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, lines)
				return
			}

			require.NoError(t, err)
			require.Len(t, lines, len(tt.wantSymbols))

			total := 0.0
			for i, line := range lines {
				assert.Equal(t, tt.wantSymbols[i], line.StockSymbol)
				assert.InDelta(t, tt.wantAmounts[i], line.Amount, 0.0001)
				total += line.Amount
			}
			assert.InDelta(t, tt.roundUp, total, 0.0001)
		})
	}
}

func TestAllocator_SumInvariant(t *testing.T) {
	// The line amounts must sum to the round-up exactly for any candidate
	// set size and any two-decimal amount.
	allocator := New(nil)

	amounts := []float64{0.01, 0.05, 0.37, 0.99, 1.00, 1.01, 2.50, 9.97}

	for size := 1; size <= 5; size++ {
		var items []model.Item
		for i := 1; i < size; i++ {
			items = append(items, model.Item{
				Name:       fmt.Sprintf("Item %d", i),
				BrandGuess: guess(fmt.Sprintf("SYM%d", i), 0.9),
			})
		}

		for _, amount := range amounts {
			t.Run(fmt.Sprintf("%d candidates %.2f", size, amount), func(t *testing.T) {
				lines, err := allocator.Allocate(items, &model.Retailer{Symbol: "TGT"}, amount)
				require.NoError(t, err)
				require.Len(t, lines, size)

				totalCents := int64(0)
				for _, line := range lines {
					totalCents += int64(math.Round(line.Amount * 100))
				}
				assert.Equal(t, int64(math.Round(amount*100)), totalCents)
			})
		}
	}
}

func TestAllocator_LineMetadata(t *testing.T) {
	allocator := New(nil)

	lines, err := allocator.Allocate(
		[]model.Item{{Name: "Nike Shoes", BrandGuess: guess("NKE", 0.9)}},
		&model.Retailer{Symbol: "TGT", Name: "Target"},
		1.00,
	)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "retailer", lines[0].Reason)
	assert.Equal(t, "Target", lines[0].StockName)
	assert.InDelta(t, 1.0, lines[0].Confidence, 0.0001)
	assert.InDelta(t, 50, lines[0].Percentage, 0.0001)

	assert.Equal(t, "brand match: Nike Shoes", lines[1].Reason)
	assert.InDelta(t, 0.9, lines[1].Confidence, 0.0001)
}

func TestIsPaymentMethod(t *testing.T) {
	assert.True(t, isPaymentMethod("Debit Tend"))
	assert.True(t, isPaymentMethod("CARD PAYMENT"))
	assert.False(t, isPaymentMethod("Nike Shoes"))
	assert.False(t, isPaymentMethod("Standard Oatmeal"))
}
