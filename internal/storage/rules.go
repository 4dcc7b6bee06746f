package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sparevest/roundup/internal/model"
)

// SaveRule inserts or replaces a mapping rule.
func (s *SQLiteStorage) SaveRule(ctx context.Context, rule *model.MappingRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMappingRule(rule); err != nil {
		return err
	}

	createdAt := rule.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT OR REPLACE INTO mapping_rules (
			pattern, match_type, ticker, canonical_merchant,
			category, base_confidence, usage_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rule.Pattern, string(rule.MatchType), rule.Ticker, rule.CanonicalMerchant,
		rule.Category, rule.BaseConfidence, rule.UsageCount, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule: %w", err)
	}

	return nil
}

// GetRules returns every mapping rule in insertion order.
func (s *SQLiteStorage) GetRules(ctx context.Context) ([]model.MappingRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT pattern, match_type, ticker, canonical_merchant,
		       category, base_confidence, usage_count, created_at
		FROM mapping_rules
		ORDER BY created_at, pattern
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.MappingRule
	for rows.Next() {
		var rule model.MappingRule
		var matchType string
		if err := rows.Scan(
			&rule.Pattern, &matchType, &rule.Ticker, &rule.CanonicalMerchant,
			&rule.Category, &rule.BaseConfidence, &rule.UsageCount, &rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule.MatchType = model.MatchType(matchType)
		out = append(out, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return out, nil
}

// UpdateRuleUsage records the advisory usage counter for a rule.
func (s *SQLiteStorage) UpdateRuleUsage(ctx context.Context, pattern string, matchType model.MatchType, usageCount int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(pattern, "pattern"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		"UPDATE mapping_rules SET usage_count = ? WHERE pattern = ? AND match_type = ?",
		usageCount, pattern, string(matchType),
	)
	if err != nil {
		return fmt.Errorf("failed to update rule usage: %w", err)
	}

	return nil
}
