// Package classify implements the merchant classification cascade that maps
// a free-text merchant descriptor to a ticker symbol, category, and
// confidence score.
package classify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/sparevest/roundup/internal/model"
	"github.com/sparevest/roundup/internal/rules"
)

// Confidence thresholds governing the cascade and its consumers.
const (
	// AutoThreshold is the confidence at or above which a stage short-circuits
	// and the orchestrator may auto-invest.
	AutoThreshold = 0.92
	// ReviewThreshold is the confidence at or above which a transaction is
	// queued for human review instead of being left pending.
	ReviewThreshold = 0.70
	// FallbackThreshold gates acceptance of the heuristic fallback stage.
	FallbackThreshold = 0.85
)

const (
	fuzzyMinSimilarity    = 0.80
	hintKnownConfidence   = 0.75
	hintUnknownConfidence = 0.60
)

// Classifier resolves merchant strings against a rule store using a fixed
// cascade: exact substring, regex, fuzzy, user hint, heuristic fallback.
type Classifier struct {
	store    *rules.Store
	fallback Fallback
	logger   *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithFallback replaces the heuristic fallback stage. A nil fallback
// disables the stage entirely.
func WithFallback(f Fallback) Option {
	return func(c *Classifier) {
		c.fallback = f
	}
}

// WithLogger sets the classifier's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New creates a classifier backed by the given rule store. The default
// fallback is the built-in keyword table.
func New(store *rules.Store, opts ...Option) *Classifier {
	c := &Classifier{
		store:    store,
		fallback: NewKeywordFallback(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify resolves a raw merchant string to a single best classification.
// userHint is an optional user-supplied ticker; pass "" when absent. The
// call never fails: unclassifiable input yields a zero-confidence result
// with MethodNone.
func (c *Classifier) Classify(rawMerchant, userHint string) model.ClassificationResult {
	merchant := strings.ToLower(strings.TrimSpace(rawMerchant))
	if merchant == "" {
		return model.ClassificationResult{
			Merchant: rawMerchant,
			Method:   model.MethodNone,
			Evidence: "empty merchant string",
		}
	}

	var candidates []model.ClassificationResult

	if result, ok := c.exactMatch(merchant); ok {
		if result.Confidence >= AutoThreshold {
			return result
		}
		candidates = append(candidates, result)
	}

	if result, ok := c.regexMatch(merchant); ok {
		if result.Confidence >= AutoThreshold {
			return result
		}
		candidates = append(candidates, result)
	}

	if result, ok := c.fuzzyMatch(merchant); ok {
		if result.Confidence >= AutoThreshold {
			return result
		}
		candidates = append(candidates, result)
	}

	if result, ok := c.hintMatch(rawMerchant, userHint); ok {
		if result.Confidence >= ReviewThreshold {
			return result
		}
		candidates = append(candidates, result)
	}

	if c.fallback != nil {
		if result, ok := c.fallback.Classify(merchant); ok {
			if result.Confidence >= FallbackThreshold {
				return result
			}
			candidates = append(candidates, result)
		}
	}

	best := model.ClassificationResult{
		Merchant: rawMerchant,
		Method:   model.MethodNone,
		Evidence: "no rule matched",
	}
	for _, candidate := range candidates {
		if candidate.Confidence > best.Confidence {
			best = candidate
		}
	}

	if best.Method == model.MethodNone {
		c.logger.Debug("merchant unclassified", "merchant", rawMerchant)
	}
	return best
}

// exactMatch returns the highest-confidence rule whose pattern is a
// substring of the normalized merchant.
func (c *Classifier) exactMatch(merchant string) (model.ClassificationResult, bool) {
	var best model.MappingRule
	found := false

	for _, rule := range c.store.ExactRules() {
		if !strings.Contains(merchant, rule.Pattern) {
			continue
		}
		if !found || rule.BaseConfidence > best.BaseConfidence {
			best = rule
			found = true
		}
	}

	if !found {
		return model.ClassificationResult{}, false
	}

	c.store.RecordUse(best.Pattern, model.MatchExact)
	return model.ClassificationResult{
		Ticker:     best.Ticker,
		Merchant:   best.CanonicalMerchant,
		Category:   best.Category,
		Confidence: best.BaseConfidence,
		Method:     model.MethodExactMatch,
		Evidence:   fmt.Sprintf("pattern %q is a substring of merchant", best.Pattern),
	}, true
}

// regexMatch returns the highest-confidence regex rule matching the
// merchant. Rules with malformed patterns were never compiled and are
// skipped by the store.
func (c *Classifier) regexMatch(merchant string) (model.ClassificationResult, bool) {
	var best rules.CompiledRule
	found := false

	for _, compiled := range c.store.RegexRules() {
		if !compiled.Re.MatchString(merchant) {
			continue
		}
		if !found || compiled.Rule.BaseConfidence > best.Rule.BaseConfidence {
			best = compiled
			found = true
		}
	}

	if !found {
		return model.ClassificationResult{}, false
	}

	c.store.RecordUse(best.Rule.Pattern, model.MatchRegex)
	return model.ClassificationResult{
		Ticker:     best.Rule.Ticker,
		Merchant:   best.Rule.CanonicalMerchant,
		Category:   best.Rule.Category,
		Confidence: best.Rule.BaseConfidence,
		Method:     model.MethodRegexMatch,
		Evidence:   fmt.Sprintf("regex %q matched merchant", best.Rule.Pattern),
	}, true
}

// fuzzyMatch scores the merchant against every exact-type pattern and keeps
// the best candidate at or above the similarity cutoff. The candidate's
// confidence is the rule's base confidence scaled by the similarity ratio,
// so a fuzzy result never outranks the equivalent exact match.
func (c *Classifier) fuzzyMatch(merchant string) (model.ClassificationResult, bool) {
	var best model.MappingRule
	bestRatio := 0.0
	found := false

	for _, rule := range c.store.ExactRules() {
		ratio := similarityRatio(merchant, rule.Pattern)
		if ratio < fuzzyMinSimilarity {
			continue
		}
		if !found || rule.BaseConfidence*ratio > best.BaseConfidence*bestRatio {
			best = rule
			bestRatio = ratio
			found = true
		}
	}

	if !found {
		return model.ClassificationResult{}, false
	}

	c.store.RecordUse(best.Pattern, model.MatchExact)
	return model.ClassificationResult{
		Ticker:     best.Ticker,
		Merchant:   best.CanonicalMerchant,
		Category:   best.Category,
		Confidence: best.BaseConfidence * bestRatio,
		Method:     model.MethodFuzzyMatch,
		Evidence:   fmt.Sprintf("fuzzy match against %q (similarity %.2f)", best.Pattern, bestRatio),
	}, true
}

// hintMatch resolves a user-supplied ticker hint. A hint matching a known
// ticker earns higher confidence than one taken verbatim.
func (c *Classifier) hintMatch(rawMerchant, userHint string) (model.ClassificationResult, bool) {
	hint := strings.ToUpper(strings.TrimSpace(userHint))
	if hint == "" {
		return model.ClassificationResult{}, false
	}

	if rule, ok := c.store.RuleForTicker(hint); ok {
		return model.ClassificationResult{
			Ticker:     rule.Ticker,
			Merchant:   rule.CanonicalMerchant,
			Category:   rule.Category,
			Confidence: hintKnownConfidence,
			Method:     model.MethodUserHint,
			Evidence:   fmt.Sprintf("user hint %q matches a known ticker", hint),
		}, true
	}

	return model.ClassificationResult{
		Ticker:     hint,
		Merchant:   strings.TrimSpace(rawMerchant),
		Category:   "Unknown",
		Confidence: hintUnknownConfidence,
		Method:     model.MethodUserHint,
		Evidence:   fmt.Sprintf("user hint %q accepted verbatim", hint),
	}, true
}

// similarityRatio computes a normalized edit-distance similarity in [0,1].
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
