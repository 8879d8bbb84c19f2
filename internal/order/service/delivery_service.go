package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"astryxnodes/internal/domain"
	"astryxnodes/internal/sales"
)

type SalesForwarder interface {
	Forward(ctx context.Context, order domain.Order) sales.Result
}

type OutboxRepository interface {
	MarkSynced(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, attempts int, lastError string, nextAttemptAt time.Time, dead bool) error
}

type DeliveryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DeliveryService performs one forwarding attempt for an order and records
// the outcome against its outbox record. A record ID of zero means the order
// was never persisted and only the forwarding call is made.
type DeliveryService struct {
	forwarder SalesForwarder
	outbox    OutboxRepository
	policy    DeliveryPolicy
	logger    *zap.Logger
	now       func() time.Time
	jitter    func() float64
}

func NewDeliveryService(forwarder SalesForwarder, outbox OutboxRepository, policy DeliveryPolicy, logger *zap.Logger) *DeliveryService {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &DeliveryService{
		forwarder: forwarder,
		outbox:    outbox,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
		jitter:    rand.Float64,
	}
}

func (s *DeliveryService) Deliver(ctx context.Context, recordID uint, previousAttempts int, order domain.Order) sales.Result {
	logger := s.logger.With(zap.String("orderNumber", order.OrderNumber), zap.Uint("outboxId", recordID))

	result := s.forwarder.Forward(ctx, order)
	if recordID == 0 {
		return result
	}

	// Detached from the request so a client disconnect cannot leave the
	// record in a stale state.
	bookkeepingCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if result.Success {
		if err := s.outbox.MarkSynced(bookkeepingCtx, recordID); err != nil {
			logger.Error("failed to mark outbox record synced", zap.Error(err))
		}
		return result
	}

	if !result.Configured() {
		next := s.now().Add(s.policy.BaseBackoff)
		if err := s.outbox.MarkFailed(bookkeepingCtx, recordID, previousAttempts, result.Error, next, false); err != nil {
			logger.Error("failed to reschedule outbox record", zap.Error(err))
		}
		return result
	}

	attempts := previousAttempts + 1
	dead := attempts >= s.policy.MaxAttempts
	next := s.now().Add(s.Backoff(attempts))

	if err := s.outbox.MarkFailed(bookkeepingCtx, recordID, attempts, result.Error, next, dead); err != nil {
		logger.Error("failed to mark outbox record failed", zap.Error(err))
		return result
	}

	if dead {
		logger.Error("order forwarding abandoned", zap.Int("attempts", attempts), zap.String("lastError", result.Error))
	} else {
		logger.Warn("order forwarding failed, will retry", zap.Int("attempt", attempts), zap.Int("maxAttempts", s.policy.MaxAttempts), zap.Time("nextAttemptAt", next), zap.String("error", result.Error))
	}

	return result
}

// Backoff doubles the base delay per attempt up to MaxBackoff and applies
// ±20% jitter.
func (s *DeliveryService) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	backoff := s.policy.BaseBackoff
	for i := 1; i < attempt && backoff < s.policy.MaxBackoff; i++ {
		backoff *= 2
	}
	if s.policy.MaxBackoff > 0 && backoff > s.policy.MaxBackoff {
		backoff = s.policy.MaxBackoff
	}
	factor := 0.8 + s.jitter()*0.4
	return time.Duration(float64(backoff) * factor)
}
