package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"astryxnodes/internal/domain"
	apperrors "astryxnodes/internal/errors"
	"astryxnodes/internal/sales"
)

type DueRecordClaimer interface {
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.OutboxRecord, error)
}

type OrderDeliverer interface {
	Deliver(ctx context.Context, recordID uint, previousAttempts int, order domain.Order) sales.Result
}

// OutboxRelay periodically re-forwards outbox records whose next attempt is
// due. Each batch is leased for the lease duration, which must exceed the
// time one delivery can take.
type OutboxRelay struct {
	claimer   DueRecordClaimer
	deliverer OrderDeliverer
	interval  time.Duration
	lease     time.Duration
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

func NewOutboxRelay(claimer DueRecordClaimer, deliverer OrderDeliverer, interval, lease time.Duration, batchSize int, logger *zap.Logger) *OutboxRelay {
	if batchSize < 1 {
		batchSize = 1
	}
	return &OutboxRelay{
		claimer:   claimer,
		deliverer: deliverer,
		interval:  interval,
		lease:     lease,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled.
func (w *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("outbox relay started", zap.Duration("interval", w.interval), zap.Int("batchSize", w.batchSize))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce processes one batch and returns how many records were attempted.
func (w *OutboxRelay) RunOnce(ctx context.Context) int {
	records, err := w.claimer.ClaimDue(ctx, w.now(), w.lease*time.Duration(w.batchSize), w.batchSize)
	if err != nil {
		if ie, ok := apperrors.IsInternalError(err); ok {
			w.logger.Error("failed to claim due outbox records", zap.String("operation", ie.Message), zap.Error(ie.Cause))
		} else {
			w.logger.Error("failed to claim due outbox records", zap.Error(err))
		}
		return 0
	}

	attempted := 0
	for _, rec := range records {
		if ctx.Err() != nil {
			break
		}

		var order domain.Order
		if err := json.Unmarshal(rec.Payload, &order); err != nil {
			w.logger.Error("undecodable outbox payload", zap.Uint("outboxId", rec.ID), zap.String("orderNumber", rec.OrderNumber), zap.Error(err))
			continue
		}

		result := w.deliverer.Deliver(ctx, rec.ID, rec.Attempts, order)
		attempted++
		if result.Success {
			w.logger.Info("outbox record forwarded", zap.Uint("outboxId", rec.ID), zap.String("orderNumber", rec.OrderNumber), zap.Int("previousAttempts", rec.Attempts))
		}
	}

	return attempted
}
