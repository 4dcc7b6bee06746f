// Package service defines the interfaces between the decision engine and
// its external collaborators.
package service

import (
	"context"
	"time"

	"github.com/sparevest/roundup/internal/model"
)

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Rule operations
	SaveRule(ctx context.Context, rule *model.MappingRule) error
	GetRules(ctx context.Context) ([]model.MappingRule, error)
	UpdateRuleUsage(ctx context.Context, pattern string, matchType model.MatchType, usageCount int64) error

	// Decision operations
	SaveDecision(ctx context.Context, decision *model.Decision) error
	GetDecision(ctx context.Context, id string) (*model.Decision, error)
	GetDecisionsByDisposition(ctx context.Context, disposition model.Disposition) ([]model.Decision, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// OrderExecutor is the black-box brokerage integration that buys fractional
// shares for auto-invested decisions.
type OrderExecutor interface {
	// Execute places one fractional-share order per allocation line.
	Execute(ctx context.Context, decisionID string, lines []model.AllocationLine) error
}

// BatchStats shows the results of a batch processing run.
type BatchStats struct {
	Duration     time.Duration
	Total        int
	AutoInvested int
	Queued       int
	Pending      int
	Skipped      int
	Failed       int
}
