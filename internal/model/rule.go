// Package model defines the core domain models used throughout the application.
package model

import "time"

// MatchType indicates how a mapping rule's pattern is evaluated.
type MatchType string

// Match type constants.
const (
	MatchExact MatchType = "EXACT"
	MatchRegex MatchType = "REGEX"
	MatchFuzzy MatchType = "FUZZY"
)

// MappingRule maps a merchant-name pattern to a tradeable security.
type MappingRule struct {
	CreatedAt         time.Time
	Pattern           string
	Ticker            string
	CanonicalMerchant string
	Category          string
	MatchType         MatchType
	BaseConfidence    float64
	UsageCount        int64
}
