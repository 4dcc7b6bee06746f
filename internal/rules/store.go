// Package rules maintains the merchant-pattern mapping table consumed by the
// merchant classifier. The table is mutable at runtime; all access goes
// through the Store's own locking so concurrent classification workers never
// observe a partially written rule.
package rules

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sparevest/roundup/internal/common"
	"github.com/sparevest/roundup/internal/model"
)

// CompiledRule pairs a regex-type rule with its pre-compiled pattern.
type CompiledRule struct {
	Rule model.MappingRule
	Re   *regexp.Regexp
}

// Store is a thread-safe table of merchant mapping rules.
type Store struct {
	mu       sync.RWMutex
	rules    []*model.MappingRule
	compiled map[string]*regexp.Regexp
	logger   *slog.Logger
}

// NewStore creates an empty rule store. Seed rules that fail validation are
// rejected with an error.
func NewStore(logger *slog.Logger, seed ...model.MappingRule) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		compiled: make(map[string]*regexp.Regexp),
		logger:   logger,
	}

	for _, rule := range seed {
		if err := s.Add(rule); err != nil {
			return nil, fmt.Errorf("seed rule %q: %w", rule.Pattern, err)
		}
	}

	return s, nil
}

// Add validates a rule and inserts it into the table. Exact and fuzzy
// patterns are normalized to lower case; regex patterns are compiled
// case-insensitively up front. A regex rule whose pattern does not compile
// is kept but flagged for the rule administrator and skipped during
// matching.
func (s *Store) Add(rule model.MappingRule) error {
	if err := validateRule(&rule); err != nil {
		return err
	}

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rules {
		if existing.Pattern == rule.Pattern && existing.MatchType == rule.MatchType {
			return fmt.Errorf("rule %q: %w", rule.Pattern, common.ErrDuplicateEntry)
		}
	}

	if rule.MatchType == model.MatchRegex {
		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			s.logger.Warn("malformed regex rule, will be skipped during matching",
				"pattern", rule.Pattern,
				"error", err)
		} else {
			s.compiled[rule.Pattern] = re
		}
	}

	s.rules = append(s.rules, &rule)
	return nil
}

// Snapshot returns a copy of every rule in insertion order.
func (s *Store) Snapshot() []model.MappingRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.MappingRule, len(s.rules))
	for i, rule := range s.rules {
		out[i] = *rule
	}
	return out
}

// ExactRules returns a copy of every exact-match rule in insertion order.
func (s *Store) ExactRules() []model.MappingRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.MappingRule
	for _, rule := range s.rules {
		if rule.MatchType == model.MatchExact {
			out = append(out, *rule)
		}
	}
	return out
}

// RegexRules returns every regex-type rule paired with its compiled pattern.
// Rules whose pattern failed to compile are omitted.
func (s *Store) RegexRules() []CompiledRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []CompiledRule
	for _, rule := range s.rules {
		if rule.MatchType != model.MatchRegex {
			continue
		}
		re, ok := s.compiled[rule.Pattern]
		if !ok {
			continue
		}
		out = append(out, CompiledRule{Rule: *rule, Re: re})
	}
	return out
}

// RuleForTicker returns the first rule mapped to the given ticker symbol.
// Lookup is case-insensitive.
func (s *Store) RuleForTicker(ticker string) (model.MappingRule, bool) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return model.MappingRule{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.rules {
		if rule.Ticker == ticker {
			return *rule, true
		}
	}
	return model.MappingRule{}, false
}

// RecordUse increments the usage counter of the rule with the given pattern
// and match type. Usage counts are advisory analytics; a miss is not an
// error.
func (s *Store) RecordUse(pattern string, matchType model.MatchType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rule := range s.rules {
		if rule.Pattern == pattern && rule.MatchType == matchType {
			rule.UsageCount++
			return
		}
	}
}

// Len returns the number of rules in the table.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

func validateRule(rule *model.MappingRule) error {
	rule.Pattern = strings.TrimSpace(rule.Pattern)
	rule.Ticker = strings.ToUpper(strings.TrimSpace(rule.Ticker))

	if rule.Pattern == "" {
		return fmt.Errorf("%w: empty pattern", common.ErrInvalidRule)
	}
	if rule.Ticker == "" {
		return fmt.Errorf("%w: empty ticker", common.ErrInvalidRule)
	}
	if rule.BaseConfidence < 0 || rule.BaseConfidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", common.ErrInvalidRule, rule.BaseConfidence)
	}

	switch rule.MatchType {
	case model.MatchExact, model.MatchFuzzy:
		rule.Pattern = strings.ToLower(rule.Pattern)
	case model.MatchRegex:
	default:
		return fmt.Errorf("%w: unknown match type %q", common.ErrInvalidRule, rule.MatchType)
	}

	return nil
}
