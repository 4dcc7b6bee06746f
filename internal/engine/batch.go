package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sparevest/roundup/internal/model"
	"github.com/sparevest/roundup/internal/service"
)

// ProcessBatch maps the pipeline over many independent transactions with a
// bounded worker pool. Transactions are independent, so ordering between
// them is irrelevant; results keep the input order. A per-transaction
// failure is counted, logged, and leaves a nil slot rather than aborting
// the batch. onProgress, if non-nil, is invoked once per completed
// transaction.
func (e *Engine) ProcessBatch(ctx context.Context, txns []model.Transaction, onProgress func()) ([]*model.Decision, service.BatchStats, error) {
	start := time.Now()
	stats := service.BatchStats{Total: len(txns)}

	decisions := make([]*model.Decision, len(txns))
	indexes := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex

	workers := e.workers
	if workers > len(txns) {
		workers = len(txns)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				decision, err := e.Process(ctx, txns[i])

				mu.Lock()
				if err != nil {
					stats.Failed++
					e.logger.Error("batch transaction failed",
						"transaction_id", txns[i].ID,
						"error", err)
				} else {
					decisions[i] = decision
					switch decision.Disposition {
					case model.DispositionAutoInvest:
						stats.AutoInvested++
					case model.DispositionReview:
						stats.Queued++
					case model.DispositionPending:
						stats.Pending++
					case model.DispositionSkipped:
						stats.Skipped++
					}
				}
				if onProgress != nil {
					onProgress()
				}
				mu.Unlock()
			}
		}()
	}

	var ctxErr error
feed:
	for i := range txns {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if ctxErr == nil {
		ctxErr = ctx.Err()
	}

	stats.Duration = time.Since(start)
	return decisions, stats, ctxErr
}
