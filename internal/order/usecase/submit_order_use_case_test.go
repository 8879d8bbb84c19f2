package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"astryxnodes/internal/domain"
	"astryxnodes/internal/dto"
	apperrors "astryxnodes/internal/errors"
	"astryxnodes/internal/order/repository"
	"astryxnodes/internal/order/service"
	"astryxnodes/internal/sales"
)

type mockAssigner struct {
	AssignFunc func(ctx context.Context, supplied, traceID string) string
}

func (m *mockAssigner) Assign(ctx context.Context, supplied, traceID string) string {
	if m.AssignFunc != nil {
		return m.AssignFunc(ctx, supplied, traceID)
	}
	if supplied != "" {
		return supplied
	}
	return "AST-1-GENERATED"
}

type mockOutbox struct {
	InsertFunc func(ctx context.Context, order domain.Order, nextAttemptAt time.Time) (uint, error)
	inserted   []domain.Order
}

func (m *mockOutbox) Insert(ctx context.Context, order domain.Order, nextAttemptAt time.Time) (uint, error) {
	m.inserted = append(m.inserted, order)
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, order, nextAttemptAt)
	}
	return 7, nil
}

type deliverCall struct {
	recordID uint
	order    domain.Order
}

type mockDeliverer struct {
	result sales.Result
	calls  []deliverCall
}

func (m *mockDeliverer) Deliver(ctx context.Context, recordID uint, previousAttempts int, order domain.Order) sales.Result {
	m.calls = append(m.calls, deliverCall{recordID, order})
	return m.result
}

type mockEvents struct {
	published []domain.Order
}

func (m *mockEvents) OrderSubmitted(ctx context.Context, traceID string, order domain.Order) {
	m.published = append(m.published, order)
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("PHT", 8*60*60))

func newTestUseCase(outbox OutboxWriter, deliverer OrderDeliverer, events EventPublisher) *SubmitOrderUseCase {
	uc := NewSubmitOrderUseCase(&mockAssigner{}, outbox, deliverer, events, 30*time.Second, zap.NewNop())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func basicRequest() dto.SubmitOrderRequest {
	return dto.SubmitOrderRequest{
		Name:          "Juan",
		Email:         "j@x.ph",
		Phone:         "0917",
		PaymentMethod: "gcash",
		Order: &dto.OrderInfo{
			Plan:  "Basic",
			Price: "150",
			RAM:   "2GB",
			CPU:   "1 vCPU",
			Disk:  "10GB",
		},
		OrderNumber: "AST-1-ABC",
		Status:      "pending_payment",
	}
}

func TestCreateOrder_EchoesClientFields(t *testing.T) {
	outbox := &mockOutbox{}
	deliverer := &mockDeliverer{result: sales.Result{Success: true}}
	events := &mockEvents{}
	uc := newTestUseCase(outbox, deliverer, events)

	order, err := uc.CreateOrder(context.Background(), "trace-1", basicRequest())
	require.NoError(t, err)

	assert.Equal(t, "AST-1-ABC", order.OrderNumber)
	assert.Equal(t, "Basic", order.Plan)
	assert.Equal(t, "150", order.Price)
	assert.Equal(t, domain.Specs{RAM: "2GB", CPU: "1 vCPU", Disk: "10GB"}, order.Specs)
	assert.Equal(t, "Juan", order.Customer.Name)
	assert.Nil(t, order.Customer.Discord)
	assert.Equal(t, domain.PaymentMethodGCash, order.PaymentMethod)
	assert.Equal(t, domain.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, time.UTC, order.CreatedAt.Location())
	assert.True(t, order.CreatedAt.Equal(fixedNow))

	require.Len(t, outbox.inserted, 1)
	require.Len(t, deliverer.calls, 1)
	assert.Equal(t, uint(7), deliverer.calls[0].recordID)
	assert.Equal(t, order, deliverer.calls[0].order)
	require.Len(t, events.published, 1)
}

func TestCreateOrder_DefaultsStatusAndAssignsNumber(t *testing.T) {
	req := basicRequest()
	req.Status = ""
	req.OrderNumber = ""
	req.Discord = "juan#1"

	uc := newTestUseCase(&mockOutbox{}, &mockDeliverer{}, &mockEvents{})
	order, err := uc.CreateOrder(context.Background(), "trace-1", req)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, "AST-1-GENERATED", order.OrderNumber)
	require.NotNil(t, order.Customer.Discord)
	assert.Equal(t, "juan#1", *order.Customer.Discord)
}

func TestCreateOrder_ForwardingFailureDoesNotFailSubmission(t *testing.T) {
	deliverer := &mockDeliverer{result: sales.Result{Success: false, Error: "Sales API error: 500"}}
	events := &mockEvents{}
	uc := newTestUseCase(&mockOutbox{}, deliverer, events)

	order, err := uc.CreateOrder(context.Background(), "trace-1", basicRequest())
	require.NoError(t, err)
	assert.Equal(t, "AST-1-ABC", order.OrderNumber)
	assert.Len(t, events.published, 1)
}

func TestCreateOrder_OutboxFailureStillForwards(t *testing.T) {
	outbox := &mockOutbox{InsertFunc: func(context.Context, domain.Order, time.Time) (uint, error) {
		return 0, errors.New("connection refused")
	}}
	deliverer := &mockDeliverer{result: sales.Result{Success: true}}
	uc := newTestUseCase(outbox, deliverer, &mockEvents{})

	_, err := uc.CreateOrder(context.Background(), "trace-1", basicRequest())
	require.NoError(t, err)
	require.Len(t, deliverer.calls, 1)
	assert.Equal(t, uint(0), deliverer.calls[0].recordID)
}

func TestCreateOrder_InsertLeavesClaimWindow(t *testing.T) {
	var next time.Time
	outbox := &mockOutbox{InsertFunc: func(_ context.Context, _ domain.Order, nextAttemptAt time.Time) (uint, error) {
		next = nextAttemptAt
		return 1, nil
	}}
	uc := newTestUseCase(outbox, &mockDeliverer{}, &mockEvents{})

	_, err := uc.CreateOrder(context.Background(), "trace-1", basicRequest())
	require.NoError(t, err)
	assert.True(t, next.Equal(fixedNow.Add(30*time.Second)))
}

func TestCreateOrder_MissingOrder(t *testing.T) {
	req := basicRequest()
	req.Order = nil
	deliverer := &mockDeliverer{}
	uc := newTestUseCase(&mockOutbox{}, deliverer, &mockEvents{})

	_, err := uc.CreateOrder(context.Background(), "trace-1", req)
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "Missing required fields", ve.Message)
	assert.Empty(t, deliverer.calls)
}

func TestCompleteOrder_ForcesCompletedAndDefaultsMethod(t *testing.T) {
	req := basicRequest()
	req.PaymentMethod = ""
	req.Status = "pending_payment"
	req.PaymentID = "pi_123"

	uc := newTestUseCase(&mockOutbox{}, &mockDeliverer{}, &mockEvents{})
	order, err := uc.CompleteOrder(context.Background(), "trace-2", req)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	assert.Equal(t, domain.PaymentMethodStripe, order.PaymentMethod)
	assert.Equal(t, "pi_123", order.PaymentID)
}

func TestCompleteOrder_KeepsSuppliedMethod(t *testing.T) {
	req := basicRequest()
	req.PaymentMethod = "maya"

	uc := newTestUseCase(&mockOutbox{}, &mockDeliverer{}, &mockEvents{})
	order, err := uc.CompleteOrder(context.Background(), "trace-2", req)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodMaya, order.PaymentMethod)
}

func TestCompleteOrder_MissingOrder(t *testing.T) {
	req := basicRequest()
	req.Order = nil
	uc := newTestUseCase(&mockOutbox{}, &mockDeliverer{}, &mockEvents{})

	_, err := uc.CompleteOrder(context.Background(), "trace-2", req)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestCreateOrder_ForwardsSalesRecordEndToEnd(t *testing.T) {
	var body map[string]interface{}
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-API-Key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	client := sales.NewClient(srv.URL, "k", 5*time.Second, 1, zap.NewNop())
	delivery := service.NewDeliveryService(client, repository.NopOutboxRepository{}, service.DeliveryPolicy{
		MaxAttempts: 3,
		BaseBackoff: time.Second,
		MaxBackoff:  time.Minute,
	}, zap.NewNop())
	uc := newTestUseCase(repository.NopOutboxRepository{}, delivery, &mockEvents{})

	req := basicRequest()
	req.PaymentMethod = "bank"
	_, err := uc.CreateOrder(context.Background(), "trace-3", req)
	require.NoError(t, err)

	assert.Equal(t, "k", apiKey)
	assert.Equal(t, "Juan", body["customer_name"])
	assert.Equal(t, "Basic", body["plan"])
	assert.Equal(t, float64(150), body["amount"])
	assert.Equal(t, "Bank Transfer", body["payment_method"])
	assert.Equal(t, "Pending", body["status"])
}

func TestCreateOrder_SalesErrorStillAcknowledged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := sales.NewClient(srv.URL, "k", 5*time.Second, 1, zap.NewNop())
	delivery := service.NewDeliveryService(client, repository.NopOutboxRepository{}, service.DeliveryPolicy{MaxAttempts: 1}, zap.NewNop())
	uc := newTestUseCase(repository.NopOutboxRepository{}, delivery, &mockEvents{})

	order, err := uc.CreateOrder(context.Background(), "trace-4", basicRequest())
	require.NoError(t, err)
	assert.Equal(t, "AST-1-ABC", order.OrderNumber)
}

type recordingOutbox struct {
	synced []uint
	failed []uint
}

func (o *recordingOutbox) Insert(context.Context, domain.Order, time.Time) (uint, error) {
	return 11, nil
}

func (o *recordingOutbox) MarkSynced(ctx context.Context, id uint) error {
	o.synced = append(o.synced, id)
	return nil
}

func (o *recordingOutbox) MarkFailed(ctx context.Context, id uint, attempts int, lastError string, nextAttemptAt time.Time, dead bool) error {
	o.failed = append(o.failed, id)
	return nil
}

func TestCreateOrder_CancelledContextStillForwards(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	outbox := &recordingOutbox{}
	delivery := service.NewDeliveryService(
		sales.NewClient(srv.URL, "k", 5*time.Second, 1, zap.NewNop()),
		outbox,
		service.DeliveryPolicy{MaxAttempts: 3, BaseBackoff: time.Second, MaxBackoff: time.Minute},
		zap.NewNop(),
	)
	uc := newTestUseCase(outbox, delivery, &mockEvents{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.CreateOrder(ctx, "trace-6", basicRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, []uint{11}, outbox.synced)
}

func TestCreateOrder_OutboxInternalErrorStillForwards(t *testing.T) {
	outbox := &mockOutbox{InsertFunc: func(context.Context, domain.Order, time.Time) (uint, error) {
		return 0, apperrors.NewInternalError("inserting outbox record", errors.New("database is closed"))
	}}
	deliverer := &mockDeliverer{result: sales.Result{Success: true}}
	uc := newTestUseCase(outbox, deliverer, &mockEvents{})

	order, err := uc.CreateOrder(context.Background(), "trace-7", basicRequest())
	require.NoError(t, err)
	assert.Equal(t, "AST-1-ABC", order.OrderNumber)
	require.Len(t, deliverer.calls, 1)
	assert.Equal(t, uint(0), deliverer.calls[0].recordID)
}
