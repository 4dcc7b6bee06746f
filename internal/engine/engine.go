// Package engine orchestrates the round-up decision pipeline: merchant
// classification, then fee calculation and allocation for approved
// transactions.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sparevest/roundup/internal/allocate"
	"github.com/sparevest/roundup/internal/classify"
	"github.com/sparevest/roundup/internal/common"
	"github.com/sparevest/roundup/internal/fee"
	"github.com/sparevest/roundup/internal/model"
	"github.com/sparevest/roundup/internal/service"
)

// Engine sequences the decision pipeline and hands results to the
// persistence and order-execution collaborators.
type Engine struct {
	classifier *classify.Classifier
	fees       *fee.Calculator
	allocator  *allocate.Allocator
	storage    service.Storage
	executor   service.OrderExecutor
	logger     *slog.Logger
	workers    int
}

// Config holds configuration options for the engine.
type Config struct {
	Workers int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Workers: 4}
}

// Option configures an Engine.
type Option func(*Engine)

// WithStorage attaches a decision store; processed decisions are recorded.
func WithStorage(storage service.Storage) Option {
	return func(e *Engine) { e.storage = storage }
}

// WithExecutor attaches a brokerage executor; auto-invested decisions place
// orders through it.
func WithExecutor(executor service.OrderExecutor) Option {
	return func(e *Engine) { e.executor = executor }
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithConfig overrides the default configuration.
func WithConfig(config Config) Option {
	return func(e *Engine) {
		if config.Workers > 0 {
			e.workers = config.Workers
		}
	}
}

// New creates an engine with the given pipeline components.
func New(classifier *classify.Classifier, fees *fee.Calculator, allocator *allocate.Allocator, opts ...Option) *Engine {
	e := &Engine{
		classifier: classifier,
		fees:       fees,
		allocator:  allocator,
		logger:     slog.Default(),
		workers:    DefaultConfig().Workers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DispositionFor maps a classification confidence to the pipeline verdict.
func DispositionFor(confidence float64) model.Disposition {
	switch {
	case confidence >= classify.AutoThreshold:
		return model.DispositionAutoInvest
	case confidence >= classify.ReviewThreshold:
		return model.DispositionReview
	default:
		return model.DispositionPending
	}
}

// Process runs one transaction through the full pipeline. Fee and
// allocations are produced only for auto-invested transactions; an
// allocation with no eligible candidates downgrades the decision to
// skipped and never places an order.
func (e *Engine) Process(ctx context.Context, txn model.Transaction) (*model.Decision, error) {
	result := e.classifier.Classify(txn.MerchantName, txn.UserHint)

	decision := &model.Decision{
		ID:             uuid.NewString(),
		DecidedAt:      time.Now(),
		Transaction:    txn,
		Classification: result,
		Disposition:    DispositionFor(result.Confidence),
	}

	if decision.Disposition == model.DispositionAutoInvest {
		lines, err := e.allocator.Allocate(txn.Items, txn.Retailer, txn.RoundUp)
		switch {
		case errors.Is(err, common.ErrNoRelevantStocks):
			// Fail closed: approved but nothing to buy.
			decision.Disposition = model.DispositionSkipped
			e.logger.Info("no eligible stocks, skipping investment",
				"transaction_id", txn.ID,
				"merchant", txn.MerchantName)
		case err != nil:
			return nil, fmt.Errorf("allocation failed: %w", err)
		default:
			feeBreakdown := e.fees.Calculate(txn.AccountType, txn.TierLevel, txn.RoundUp, txn.Signals)
			decision.Fee = &feeBreakdown
			decision.Allocations = lines
		}
	}

	if e.storage != nil {
		if err := e.storage.SaveDecision(ctx, decision); err != nil {
			return nil, fmt.Errorf("failed to save decision: %w", err)
		}
	}

	if decision.Disposition == model.DispositionAutoInvest && e.executor != nil {
		if err := e.executor.Execute(ctx, decision.ID, decision.Allocations); err != nil {
			return nil, fmt.Errorf("failed to place investment order: %w", err)
		}
	}

	e.logger.Debug("transaction processed",
		"transaction_id", txn.ID,
		"disposition", decision.Disposition,
		"ticker", result.Ticker,
		"confidence", result.Confidence)

	return decision, nil
}
