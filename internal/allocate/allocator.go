// Package allocate splits a fixed round-up amount across the retailer's
// stock and confidently identified brand stocks from the purchased items.
package allocate

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/sparevest/roundup/internal/common"
	"github.com/sparevest/roundup/internal/model"
)

// Candidate admission limits.
const (
	// MaxStocks caps the number of securities one round-up is split across.
	MaxStocks = 5
	// BrandConfidenceMin is the strict lower bound for admitting a brand
	// guess. A guess at exactly this confidence is excluded.
	BrandConfidenceMin = 0.70
)

// paymentDenylist filters line items that describe the payment itself
// rather than a purchased product.
var paymentDenylist = []string{"tend", "debit", "payment", "card", "cash back", "change"}

type candidate struct {
	symbol     string
	name       string
	reason     string
	confidence float64
	weight     float64
}

// Allocator distributes round-up amounts across qualifying securities.
// It is stateless per call and safe for concurrent use.
type Allocator struct {
	logger *slog.Logger
}

// New creates an allocator.
func New(logger *slog.Logger) *Allocator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Allocator{logger: logger}
}

// Allocate splits roundUpAmount across the retailer and every admitted
// brand guess. The returned line amounts always sum to roundUpAmount
// exactly; the last line in weight order absorbs the rounding remainder.
// When no candidate survives admission it returns ErrNoRelevantStocks and
// the caller must skip investing the transaction.
func (a *Allocator) Allocate(items []model.Item, retailer *model.Retailer, roundUpAmount float64) ([]model.AllocationLine, error) {
	candidates := a.buildCandidates(items, retailer)
	if len(candidates) == 0 {
		return nil, common.ErrNoRelevantStocks
	}

	// Equal weight across all surviving candidates.
	weight := 1.0 / float64(len(candidates))
	for i := range candidates {
		candidates[i].weight = weight
	}

	// Descending weight, ties broken by discovery order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight > candidates[j].weight
	})

	return distribute(candidates, roundUpAmount), nil
}

// buildCandidates applies the admission rules: retailer always qualifies,
// brand guesses need strictly more than BrandConfidenceMin confidence,
// payment-method line items are skipped, duplicate symbols are merged
// (first occurrence wins), and the set is capped at MaxStocks with the
// retailer taking priority.
func (a *Allocator) buildCandidates(items []model.Item, retailer *model.Retailer) []candidate {
	var candidates []candidate
	seen := make(map[string]bool)

	if retailer != nil && retailer.Symbol != "" {
		symbol := strings.ToUpper(retailer.Symbol)
		candidates = append(candidates, candidate{
			symbol:     symbol,
			name:       retailer.Name,
			reason:     "retailer",
			confidence: 1.0,
		})
		seen[symbol] = true
	}

	for _, item := range items {
		if len(candidates) >= MaxStocks {
			break
		}
		if isPaymentMethod(item.Name) {
			continue
		}
		guess := item.BrandGuess
		if guess == nil || guess.Symbol == "" || guess.Confidence <= BrandConfidenceMin {
			continue
		}

		symbol := strings.ToUpper(guess.Symbol)
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		candidates = append(candidates, candidate{
			symbol:     symbol,
			name:       item.Name,
			reason:     fmt.Sprintf("brand match: %s", item.Name),
			confidence: guess.Confidence,
		})
	}

	return candidates
}

// distribute assigns amounts in integer cents so the sum invariant holds
// exactly. All candidates but the last get their rounded share; the last
// absorbs whatever remains.
func distribute(candidates []candidate, roundUpAmount float64) []model.AllocationLine {
	totalCents := int64(math.Round(roundUpAmount * 100))
	remaining := totalCents

	lines := make([]model.AllocationLine, 0, len(candidates))
	for i, cand := range candidates {
		var cents int64
		if i == len(candidates)-1 {
			cents = remaining
		} else {
			cents = int64(math.Round(float64(totalCents) * cand.weight))
			if cents < 1 && remaining > int64(len(candidates)-1-i) {
				cents = 1
			}
			if cents > remaining {
				cents = remaining
			}
		}
		remaining -= cents

		lines = append(lines, model.AllocationLine{
			StockSymbol: cand.symbol,
			StockName:   cand.name,
			Amount:      float64(cents) / 100,
			Percentage:  cand.weight * 100,
			Confidence:  cand.confidence,
			Reason:      cand.reason,
		})
	}

	return lines
}

func isPaymentMethod(itemName string) bool {
	name := strings.ToLower(itemName)
	for _, fragment := range paymentDenylist {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}
