package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"astryxnodes/internal/domain"
)

func testOrder() domain.Order {
	return domain.Order{
		OrderNumber:   "AST-1700000000000-K3J9XQ2ZP",
		Customer:      domain.Customer{Name: "Steve", Email: "steve@example.com", Phone: "09171234567"},
		Plan:          "Basic",
		Price:         "500",
		Specs:         domain.Specs{RAM: "2GB", CPU: "1vCPU", Disk: "10GB"},
		PaymentMethod: domain.PaymentMethodBank,
		Status:        domain.OrderStatusPendingPayment,
	}
}

func TestStatusName(t *testing.T) {
	assert.Equal(t, "Pending", StatusName(domain.OrderStatusPendingPayment))
	assert.Equal(t, "Paid", StatusName(domain.OrderStatusCompleted))
	assert.Equal(t, "refunded", StatusName(domain.OrderStatus("refunded")))
}

func TestPaymentMethodName(t *testing.T) {
	tests := []struct {
		in   domain.PaymentMethod
		want string
	}{
		{domain.PaymentMethodGCash, "GCash"},
		{domain.PaymentMethodMaya, "Maya"},
		{domain.PaymentMethodBank, "Bank Transfer"},
		{domain.PaymentMethodStripe, "Stripe"},
		{domain.PaymentMethod("paypal"), "paypal"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentMethodName(tt.in))
		})
	}
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2026, 3, 15, 22, 0, 0, 0, time.UTC)

	rec := NewRecord(testOrder(), now, 1)

	assert.Equal(t, "2026-03-15", rec.DateBought)
	assert.Equal(t, "1 month", rec.Duration)
	assert.Equal(t, "2026-04-15", rec.DateExpiry)
	assert.Equal(t, "Steve", rec.CustomerName)
	assert.Equal(t, "Basic", rec.Plan)
	assert.Equal(t, "1vCPU", rec.CPU)
	assert.Equal(t, "2GB", rec.RAM)
	assert.Equal(t, "10GB", rec.Disk)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 500.0, *rec.Amount)
	assert.Equal(t, "Bank Transfer", rec.PaymentMethod)
	assert.Equal(t, "Pending", rec.Status)
}

func TestNewRecord_UsesUTCDate(t *testing.T) {
	manila := time.FixedZone("PHT", 8*60*60)
	now := time.Date(2026, 3, 16, 5, 0, 0, 0, manila)

	rec := NewRecord(testOrder(), now, 1)

	assert.Equal(t, "2026-03-15", rec.DateBought)
}

func TestNewRecord_MultiMonthTerm(t *testing.T) {
	now := time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC)

	rec := NewRecord(testOrder(), now, 3)

	assert.Equal(t, "3 months", rec.Duration)
	assert.Equal(t, "2027-03-02", rec.DateExpiry)
}

func TestNewRecord_UnparsablePrice(t *testing.T) {
	order := testOrder()
	order.Price = "five hundred"

	rec := NewRecord(order, time.Now(), 1)

	assert.Nil(t, rec.Amount)
}

func TestNewRecord_DecimalPrice(t *testing.T) {
	order := testOrder()
	order.Price = "1299.50"

	rec := NewRecord(order, time.Now(), 1)

	require.NotNil(t, rec.Amount)
	assert.Equal(t, 1299.5, *rec.Amount)
}
