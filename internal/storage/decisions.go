package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sparevest/roundup/internal/common"
	"github.com/sparevest/roundup/internal/model"
)

// SaveDecision records a decision and its allocation lines atomically.
func (s *SQLiteStorage) SaveDecision(ctx context.Context, decision *model.Decision) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDecision(decision); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var baseFee, totalAdjustment, feeConfidence, finalFee sql.NullFloat64
	var feeFallback sql.NullBool
	var feeNotes sql.NullString
	if decision.Fee != nil {
		baseFee = sql.NullFloat64{Float64: decision.Fee.BaseFee, Valid: true}
		totalAdjustment = sql.NullFloat64{Float64: decision.Fee.TotalAdjustment, Valid: true}
		feeConfidence = sql.NullFloat64{Float64: decision.Fee.ConfidenceScore, Valid: true}
		finalFee = sql.NullFloat64{Float64: decision.Fee.FinalFee, Valid: true}
		feeFallback = sql.NullBool{Bool: decision.Fee.Fallback, Valid: true}
		feeNotes = sql.NullString{String: decision.Fee.Notes, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO decisions (
			id, transaction_id, merchant, ticker, category, method,
			confidence, evidence, disposition,
			base_fee, total_adjustment, fee_confidence, final_fee,
			fee_fallback, fee_notes, decided_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		decision.ID, decision.Transaction.ID, decision.Classification.Merchant,
		decision.Classification.Ticker, decision.Classification.Category,
		string(decision.Classification.Method), decision.Classification.Confidence,
		decision.Classification.Evidence, string(decision.Disposition),
		baseFee, totalAdjustment, feeConfidence, finalFee,
		feeFallback, feeNotes, decision.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}

	for i, line := range decision.Allocations {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO allocation_lines (
				decision_id, position, stock_symbol, stock_name,
				amount, percentage, confidence, reason
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			decision.ID, i, line.StockSymbol, line.StockName,
			line.Amount, line.Percentage, line.Confidence, line.Reason,
		)
		if err != nil {
			return fmt.Errorf("failed to save allocation line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit decision: %w", err)
	}

	return nil
}

// GetDecision retrieves a single decision with its allocation lines.
func (s *SQLiteStorage) GetDecision(ctx context.Context, id string) (*model.Decision, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, merchant, ticker, category, method,
		       confidence, evidence, disposition,
		       base_fee, total_adjustment, fee_confidence, final_fee,
		       fee_fallback, fee_notes, decided_at
		FROM decisions WHERE id = ?`, id)

	decision, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("decision %s: %w", id, common.ErrNotFound)
		}
		return nil, err
	}

	lines, err := s.getAllocationLines(ctx, id)
	if err != nil {
		return nil, err
	}
	decision.Allocations = lines

	return decision, nil
}

// GetDecisionsByDisposition lists decisions with the given verdict, newest
// first, without allocation lines.
func (s *SQLiteStorage) GetDecisionsByDisposition(ctx context.Context, disposition model.Disposition) ([]model.Decision, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, merchant, ticker, category, method,
		       confidence, evidence, disposition,
		       base_fee, total_adjustment, fee_confidence, final_fee,
		       fee_fallback, fee_notes, decided_at
		FROM decisions WHERE disposition = ?
		ORDER BY decided_at DESC`, string(disposition))
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Decision
	for rows.Next() {
		decision, scanErr := scanDecision(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, *decision)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}

	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*model.Decision, error) {
	var decision model.Decision
	var method, disposition string
	var baseFee, totalAdjustment, feeConfidence, finalFee sql.NullFloat64
	var feeFallback sql.NullBool
	var feeNotes sql.NullString

	err := row.Scan(
		&decision.ID, &decision.Transaction.ID, &decision.Classification.Merchant,
		&decision.Classification.Ticker, &decision.Classification.Category,
		&method, &decision.Classification.Confidence,
		&decision.Classification.Evidence, &disposition,
		&baseFee, &totalAdjustment, &feeConfidence, &finalFee,
		&feeFallback, &feeNotes, &decision.DecidedAt,
	)
	if err != nil {
		return nil, err
	}

	decision.Classification.Method = model.ClassificationMethod(method)
	decision.Disposition = model.Disposition(disposition)

	if finalFee.Valid {
		decision.Fee = &model.FeeBreakdown{
			BaseFee:         baseFee.Float64,
			TotalAdjustment: totalAdjustment.Float64,
			ConfidenceScore: feeConfidence.Float64,
			FinalFee:        finalFee.Float64,
			Fallback:        feeFallback.Bool,
			Notes:           feeNotes.String,
		}
	}

	return &decision, nil
}

func (s *SQLiteStorage) getAllocationLines(ctx context.Context, decisionID string) ([]model.AllocationLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stock_symbol, stock_name, amount, percentage, confidence, reason
		FROM allocation_lines WHERE decision_id = ?
		ORDER BY position`, decisionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.AllocationLine
	for rows.Next() {
		var line model.AllocationLine
		if err := rows.Scan(
			&line.StockSymbol, &line.StockName, &line.Amount,
			&line.Percentage, &line.Confidence, &line.Reason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan allocation line: %w", err)
		}
		out = append(out, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate allocation lines: %w", err)
	}

	return out, nil
}
