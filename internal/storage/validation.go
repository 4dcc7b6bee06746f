package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sparevest/roundup/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidRule  = errors.New("invalid mapping rule")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateMappingRule validates a rule before persisting it.
func validateMappingRule(rule *model.MappingRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if strings.TrimSpace(rule.Pattern) == "" {
		return fmt.Errorf("%w: empty pattern", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Ticker) == "" {
		return fmt.Errorf("%w: empty ticker", ErrInvalidRule)
	}
	if rule.BaseConfidence < 0 || rule.BaseConfidence > 1 {
		return fmt.Errorf("%w: confidence %v outside [0,1]", ErrInvalidRule, rule.BaseConfidence)
	}
	switch rule.MatchType {
	case model.MatchExact, model.MatchRegex, model.MatchFuzzy:
		return nil
	default:
		return fmt.Errorf("%w: unknown match type %q", ErrInvalidRule, rule.MatchType)
	}
}

// validateDecision validates a decision before persisting it.
func validateDecision(decision *model.Decision) error {
	if decision == nil {
		return fmt.Errorf("%w: decision", ErrNilParameter)
	}
	if strings.TrimSpace(decision.ID) == "" {
		return fmt.Errorf("%w: decision ID", ErrEmptyString)
	}
	return nil
}
