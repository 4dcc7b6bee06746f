package classify

import (
	"fmt"
	"strings"

	"github.com/sparevest/roundup/internal/model"
)

// Fallback is the last cascade stage, consulted when no rule matched. It is
// a seam for a richer classification capability; the shipped implementation
// is a coarse keyword table.
type Fallback interface {
	// Classify attempts to classify an already-normalized merchant string.
	// The boolean reports whether a result was produced at all.
	Classify(merchant string) (model.ClassificationResult, bool)
}

const keywordConfidence = 0.70

type keywordEntry struct {
	ticker   string
	category string
	keywords []string
}

// KeywordFallback classifies merchants by generic category keywords mapped
// to coarse placeholder tickers.
type KeywordFallback struct {
	entries []keywordEntry
}

// NewKeywordFallback creates the built-in keyword-table fallback.
func NewKeywordFallback() *KeywordFallback {
	return &KeywordFallback{
		entries: []keywordEntry{
			{ticker: "EAT", category: "Dining", keywords: []string{"restaurant", "diner", "cafe", "grill", "pizzeria"}},
			{ticker: "GAS", category: "Energy", keywords: []string{"gas station", "gas ", "fuel", "petrol"}},
			{ticker: "GROC", category: "Groceries", keywords: []string{"grocery", "supermarket", "market"}},
			{ticker: "RX", category: "Healthcare", keywords: []string{"pharmacy", "drug store", "drugstore"}},
			{ticker: "FLY", category: "Travel", keywords: []string{"airline", "airways", "air lines"}},
			{ticker: "STAY", category: "Travel", keywords: []string{"hotel", "motel", "inn "}},
		},
	}
}

// Classify scans the keyword table for a substring hit.
func (f *KeywordFallback) Classify(merchant string) (model.ClassificationResult, bool) {
	for _, entry := range f.entries {
		for _, keyword := range entry.keywords {
			if !strings.Contains(merchant, keyword) {
				continue
			}
			return model.ClassificationResult{
				Ticker:     entry.ticker,
				Merchant:   merchant,
				Category:   entry.category,
				Confidence: keywordConfidence,
				Method:     model.MethodHeuristicFallback,
				Evidence:   fmt.Sprintf("category keyword %q", keyword),
			}, true
		}
	}
	return model.ClassificationResult{}, false
}
