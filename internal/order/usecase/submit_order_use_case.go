package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"astryxnodes/internal/domain"
	"astryxnodes/internal/dto"
	apperrors "astryxnodes/internal/errors"
	"astryxnodes/internal/sales"
)

type OrderNumberAssigner interface {
	Assign(ctx context.Context, supplied, traceID string) string
}

type OutboxWriter interface {
	Insert(ctx context.Context, order domain.Order, nextAttemptAt time.Time) (uint, error)
}

type OrderDeliverer interface {
	Deliver(ctx context.Context, recordID uint, previousAttempts int, order domain.Order) sales.Result
}

type EventPublisher interface {
	OrderSubmitted(ctx context.Context, traceID string, order domain.Order)
}

// SubmitOrderUseCase accepts an order, records it in the outbox and makes one
// forwarding attempt. Neither the outbox, the sales API nor the event stream
// can fail the submission.
type SubmitOrderUseCase struct {
	assigner    OrderNumberAssigner
	outbox      OutboxWriter
	deliverer   OrderDeliverer
	events      EventPublisher
	claimWindow time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

func NewSubmitOrderUseCase(
	assigner OrderNumberAssigner,
	outbox OutboxWriter,
	deliverer OrderDeliverer,
	events EventPublisher,
	claimWindow time.Duration,
	logger *zap.Logger,
) *SubmitOrderUseCase {
	return &SubmitOrderUseCase{
		assigner:    assigner,
		outbox:      outbox,
		deliverer:   deliverer,
		events:      events,
		claimWindow: claimWindow,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *SubmitOrderUseCase) CreateOrder(ctx context.Context, traceID string, req dto.SubmitOrderRequest) (domain.Order, error) {
	if req.Order == nil {
		return domain.Order{}, missingOrder()
	}

	status := domain.OrderStatus(req.Status)
	if status == "" {
		status = domain.OrderStatusPendingPayment
	}

	order := uc.assemble(ctx, traceID, req, domain.PaymentMethod(req.PaymentMethod), status)
	uc.logger.Info("new order received",
		zap.String("traceId", traceID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("plan", order.Plan),
		zap.String("price", order.Price),
		zap.String("paymentMethod", string(order.PaymentMethod)),
		zap.String("customerEmail", order.Customer.Email),
	)

	uc.dispatch(ctx, traceID, order)
	return order, nil
}

func (uc *SubmitOrderUseCase) CompleteOrder(ctx context.Context, traceID string, req dto.SubmitOrderRequest) (domain.Order, error) {
	if req.Order == nil {
		return domain.Order{}, missingOrder()
	}

	method := domain.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = domain.PaymentMethodStripe
	}

	order := uc.assemble(ctx, traceID, req, method, domain.OrderStatusCompleted)
	uc.logger.Info("order completed",
		zap.String("traceId", traceID),
		zap.String("orderNumber", order.OrderNumber),
		zap.String("plan", order.Plan),
		zap.String("price", order.Price),
		zap.String("paymentId", order.PaymentID),
		zap.String("customerEmail", order.Customer.Email),
	)

	uc.dispatch(ctx, traceID, order)
	return order, nil
}

func (uc *SubmitOrderUseCase) assemble(ctx context.Context, traceID string, req dto.SubmitOrderRequest, method domain.PaymentMethod, status domain.OrderStatus) domain.Order {
	var discord *string
	if req.Discord != "" {
		d := req.Discord
		discord = &d
	}

	return domain.Order{
		OrderNumber: uc.assigner.Assign(ctx, req.OrderNumber, traceID),
		Customer: domain.Customer{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Discord: discord,
		},
		Plan:  req.Order.Plan,
		Price: req.Order.Price,
		Specs: domain.Specs{
			RAM:  req.Order.RAM,
			CPU:  req.Order.CPU,
			Disk: req.Order.Disk,
		},
		PaymentMethod: method,
		PaymentID:     req.PaymentID,
		Status:        status,
		CreatedAt:     uc.now().UTC(),
	}
}

func (uc *SubmitOrderUseCase) dispatch(ctx context.Context, traceID string, order domain.Order) {
	logger := uc.logger.With(zap.String("traceId", traceID), zap.String("orderNumber", order.OrderNumber))

	// The submission is accepted at this point; a client disconnect must not
	// abort the forward, which is bounded by the sales client timeout.
	ctx = context.WithoutCancel(ctx)

	recordID, err := uc.outbox.Insert(ctx, order, uc.now().Add(uc.claimWindow))
	if err != nil {
		if ie, ok := apperrors.IsInternalError(err); ok {
			logger.Error("failed to save order to outbox", zap.String("operation", ie.Message), zap.Error(ie.Cause))
		} else {
			logger.Error("failed to save order to outbox", zap.Error(err))
		}
		recordID = 0
	}

	result := uc.deliverer.Deliver(ctx, recordID, 0, order)
	if result.Success {
		logger.Info("order forwarded to sales API")
	} else {
		logger.Warn("order not forwarded to sales API", zap.String("error", result.Error))
	}

	uc.events.OrderSubmitted(ctx, traceID, order)
}

func missingOrder() error {
	return apperrors.NewValidationError("Missing required fields", apperrors.ValidationDetail{
		Field:   "order",
		Message: "order is required",
	})
}
