package model

import "time"

// Disposition is the pipeline's verdict for one transaction.
type Disposition string

// Disposition constants.
const (
	// DispositionAutoInvest means classification confidence cleared the
	// auto threshold and allocation succeeded.
	DispositionAutoInvest Disposition = "AUTO_INVEST"
	// DispositionReview means the transaction is queued for human review.
	DispositionReview Disposition = "REVIEW"
	// DispositionPending means classification confidence was too low to act.
	DispositionPending Disposition = "PENDING"
	// DispositionSkipped means classification approved investing but no
	// eligible stock candidates existed.
	DispositionSkipped Disposition = "SKIPPED"
)

// Decision is the engine's complete output for one transaction.
// Fee and Allocations are populated only for auto-invested transactions.
type Decision struct {
	DecidedAt      time.Time
	ID             string
	Transaction    Transaction
	Classification ClassificationResult
	Disposition    Disposition
	Fee            *FeeBreakdown
	Allocations    []AllocationLine
}
