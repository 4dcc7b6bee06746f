package rules

import (
	"log/slog"

	"github.com/sparevest/roundup/internal/model"
)

// DefaultRules returns the seed mapping table shipped with the engine.
// Rule administrators extend it at runtime via Store.Add.
func DefaultRules() []model.MappingRule {
	return []model.MappingRule{
		{Pattern: "starbucks", Ticker: "SBUX", CanonicalMerchant: "Starbucks", Category: "Dining", MatchType: model.MatchExact, BaseConfidence: 0.98},
		{Pattern: "mcdonald", Ticker: "MCD", CanonicalMerchant: "McDonald's", Category: "Dining", MatchType: model.MatchExact, BaseConfidence: 0.97},
		{Pattern: "chipotle", Ticker: "CMG", CanonicalMerchant: "Chipotle", Category: "Dining", MatchType: model.MatchExact, BaseConfidence: 0.96},
		{Pattern: "amazon", Ticker: "AMZN", CanonicalMerchant: "Amazon", Category: "Shopping", MatchType: model.MatchExact, BaseConfidence: 0.98},
		{Pattern: "walmart", Ticker: "WMT", CanonicalMerchant: "Walmart", Category: "Shopping", MatchType: model.MatchExact, BaseConfidence: 0.97},
		{Pattern: "target", Ticker: "TGT", CanonicalMerchant: "Target", Category: "Shopping", MatchType: model.MatchExact, BaseConfidence: 0.97},
		{Pattern: "costco", Ticker: "COST", CanonicalMerchant: "Costco", Category: "Shopping", MatchType: model.MatchExact, BaseConfidence: 0.97},
		{Pattern: "home depot", Ticker: "HD", CanonicalMerchant: "Home Depot", Category: "Home Improvement", MatchType: model.MatchExact, BaseConfidence: 0.96},
		{Pattern: "nike", Ticker: "NKE", CanonicalMerchant: "Nike", Category: "Apparel", MatchType: model.MatchExact, BaseConfidence: 0.95},
		{Pattern: "apple", Ticker: "AAPL", CanonicalMerchant: "Apple", Category: "Technology", MatchType: model.MatchExact, BaseConfidence: 0.96},
		{Pattern: "netflix", Ticker: "NFLX", CanonicalMerchant: "Netflix", Category: "Entertainment", MatchType: model.MatchExact, BaseConfidence: 0.97},
		{Pattern: "spotify", Ticker: "SPOT", CanonicalMerchant: "Spotify", Category: "Entertainment", MatchType: model.MatchExact, BaseConfidence: 0.95},
		{Pattern: "uber", Ticker: "UBER", CanonicalMerchant: "Uber", Category: "Transportation", MatchType: model.MatchExact, BaseConfidence: 0.94},
		{Pattern: "shell", Ticker: "SHEL", CanonicalMerchant: "Shell", Category: "Energy", MatchType: model.MatchExact, BaseConfidence: 0.93},
		{Pattern: "exxon", Ticker: "XOM", CanonicalMerchant: "ExxonMobil", Category: "Energy", MatchType: model.MatchExact, BaseConfidence: 0.93},
		{Pattern: "whole foods", Ticker: "AMZN", CanonicalMerchant: "Whole Foods Market", Category: "Groceries", MatchType: model.MatchExact, BaseConfidence: 0.95},
		{Pattern: "disney", Ticker: "DIS", CanonicalMerchant: "Disney", Category: "Entertainment", MatchType: model.MatchExact, BaseConfidence: 0.95},
		{Pattern: "lowes", Ticker: "LOW", CanonicalMerchant: "Lowe's", Category: "Home Improvement", MatchType: model.MatchExact, BaseConfidence: 0.94},

		{Pattern: `amazon\.com|amzn mktp`, Ticker: "AMZN", CanonicalMerchant: "Amazon", Category: "Shopping", MatchType: model.MatchRegex, BaseConfidence: 0.97},
		{Pattern: `wal[\s-]?mart`, Ticker: "WMT", CanonicalMerchant: "Walmart", Category: "Shopping", MatchType: model.MatchRegex, BaseConfidence: 0.95},
		{Pattern: `uber\s*(trip|eats)`, Ticker: "UBER", CanonicalMerchant: "Uber", Category: "Transportation", MatchType: model.MatchRegex, BaseConfidence: 0.94},
		{Pattern: `mcdonald'?s?\b`, Ticker: "MCD", CanonicalMerchant: "McDonald's", Category: "Dining", MatchType: model.MatchRegex, BaseConfidence: 0.96},
	}
}

// NewDefaultStore creates a store seeded with the built-in rule table.
func NewDefaultStore(logger *slog.Logger) *Store {
	// The default table is static and validated by tests; a seed failure
	// here is a programming error.
	s, err := NewStore(logger, DefaultRules()...)
	if err != nil {
		panic(err)
	}
	return s
}
