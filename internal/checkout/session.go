package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"astryxnodes/internal/domain"
	"astryxnodes/internal/dto"
	"astryxnodes/internal/order/ordernumber"
)

var (
	ErrSessionClosed         = errors.New("checkout session is closed")
	ErrPaymentMethodRequired = errors.New("please select a payment method")
	ErrCardNotConfigured     = errors.New("card payments are not available")
)

// PaymentIncompleteError is returned when the processor confirmed the intent
// with a status other than succeeded. No order is submitted in that case.
type PaymentIncompleteError struct {
	PaymentID string
	Status    string
}

func (e *PaymentIncompleteError) Error() string {
	return fmt.Sprintf("payment %s not completed: %s", e.PaymentID, e.Status)
}

type API interface {
	CreatePaymentIntent(ctx context.Context, req dto.CreatePaymentIntentRequest) (string, error)
	CreateOrder(ctx context.Context, req dto.SubmitOrderRequest) (dto.SubmitOrderResponse, error)
	CompleteOrder(ctx context.Context, req dto.SubmitOrderRequest) (dto.SubmitOrderResponse, error)
}

type Customer struct {
	Name    string
	Email   string
	Phone   string
	Discord string
}

type Receipt struct {
	OrderNumber   string
	Order         domain.Order
	PaymentMethod domain.PaymentMethod
	PaymentID     string
}

// Session holds one checkout in progress: the selected plan, the buyer and
// the payment method. It is single-use: after a successful Submit or Close
// every call returns ErrSessionClosed. A failed Submit leaves it open so the
// buyer can try again.
type Session struct {
	api       API
	confirmer CardConfirmer
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	plan       dto.OrderInfo
	customer   Customer
	method     domain.PaymentMethod
	submitting bool
	closed     bool
}

// NewSession starts a checkout for plan. confirmer may be nil when card
// payments are unavailable.
func NewSession(api API, confirmer CardConfirmer, plan dto.OrderInfo, logger *zap.Logger) *Session {
	return &Session{
		api:       api,
		confirmer: confirmer,
		logger:    logger,
		now:       time.Now,
		plan:      plan,
	}
}

func (s *Session) SetCustomer(c Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.customer = c
	return nil
}

func (s *Session) SelectPaymentMethod(m domain.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.method = m
	return nil
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Submit places the order. Card payments create and confirm a payment intent
// first and only complete the order once the processor reports success.
// Manual methods create a pending order carrying a locally generated number.
func (s *Session) Submit(ctx context.Context) (Receipt, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Receipt{}, ErrSessionClosed
	}
	if s.method == "" {
		s.mu.Unlock()
		return Receipt{}, ErrPaymentMethodRequired
	}
	if s.submitting {
		s.mu.Unlock()
		return Receipt{}, errors.New("checkout already in progress")
	}
	s.submitting = true
	plan, customer, method := s.plan, s.customer, s.method
	s.mu.Unlock()

	var (
		receipt Receipt
		err     error
	)
	if method == domain.PaymentMethodStripe {
		receipt, err = s.payByCard(ctx, plan, customer)
	} else {
		receipt, err = s.payManually(ctx, plan, customer, method)
	}

	s.mu.Lock()
	s.submitting = false
	if err == nil {
		s.closed = true
	}
	s.mu.Unlock()

	return receipt, err
}

func (s *Session) payByCard(ctx context.Context, plan dto.OrderInfo, customer Customer) (Receipt, error) {
	if s.confirmer == nil {
		return Receipt{}, ErrCardNotConfigured
	}

	amount, err := minorUnits(plan.Price)
	if err != nil {
		return Receipt{}, err
	}

	clientSecret, err := s.api.CreatePaymentIntent(ctx, dto.CreatePaymentIntentRequest{
		Amount:   &amount,
		Currency: "php",
		Customer: &dto.CustomerInfo{Name: customer.Name, Email: customer.Email, Phone: customer.Phone},
		Order:    &plan,
	})
	if err != nil {
		return Receipt{}, err
	}

	confirmation, err := s.confirmer.Confirm(ctx, clientSecret)
	if err != nil {
		return Receipt{}, err
	}
	if !confirmation.Succeeded() {
		s.logger.Warn("card payment not completed", zap.String("paymentId", confirmation.PaymentID), zap.String("status", confirmation.Status))
		return Receipt{}, &PaymentIncompleteError{PaymentID: confirmation.PaymentID, Status: confirmation.Status}
	}

	number := ordernumber.Generate(s.now())
	resp, err := s.api.CompleteOrder(ctx, s.request(plan, customer, domain.PaymentMethodStripe, number, confirmation.PaymentID, domain.OrderStatusCompleted))
	if err != nil {
		// the card is charged at this point; the payment ID is what support
		// needs to reconcile the order
		s.logger.Error("order completion failed after successful payment", zap.String("paymentId", confirmation.PaymentID), zap.String("orderNumber", number), zap.Error(err))
		return Receipt{}, fmt.Errorf("payment %s succeeded but the order could not be recorded: %w", confirmation.PaymentID, err)
	}

	if resp.Order.OrderNumber != "" {
		number = resp.Order.OrderNumber
	}
	return Receipt{
		OrderNumber:   number,
		Order:         resp.Order,
		PaymentMethod: domain.PaymentMethodStripe,
		PaymentID:     confirmation.PaymentID,
	}, nil
}

func (s *Session) payManually(ctx context.Context, plan dto.OrderInfo, customer Customer, method domain.PaymentMethod) (Receipt, error) {
	number := ordernumber.Generate(s.now())
	resp, err := s.api.CreateOrder(ctx, s.request(plan, customer, method, number, "", domain.OrderStatusPendingPayment))
	if err != nil {
		return Receipt{}, err
	}

	return Receipt{
		OrderNumber:   number,
		Order:         resp.Order,
		PaymentMethod: method,
	}, nil
}

func (s *Session) request(plan dto.OrderInfo, customer Customer, method domain.PaymentMethod, number, paymentID string, status domain.OrderStatus) dto.SubmitOrderRequest {
	return dto.SubmitOrderRequest{
		Name:          customer.Name,
		Email:         customer.Email,
		Phone:         customer.Phone,
		Discord:       customer.Discord,
		PaymentMethod: string(method),
		Order:         &plan,
		OrderNumber:   number,
		PaymentID:     paymentID,
		Status:        string(status),
	}
}

// minorUnits converts a display price such as "150" or "149.50" to centavos.
func minorUnits(price string) (float64, error) {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return 0, fmt.Errorf("invalid plan price %q", price)
	}
	return d.Mul(decimal.NewFromInt(100)).InexactFloat64(), nil
}
