package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_JSONShape(t *testing.T) {
	discord := "steve#0001"
	order := Order{
		OrderNumber: "AST-1700000000000-ABCDEFGHI",
		Customer: Customer{
			Name:    "Steve",
			Email:   "steve@example.com",
			Phone:   "09171234567",
			Discord: &discord,
		},
		Plan:          "Basic",
		Price:         "500",
		Specs:         Specs{RAM: "2GB", CPU: "1vCPU", Disk: "10GB"},
		PaymentMethod: PaymentMethodBank,
		Status:        OrderStatusPendingPayment,
		CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	raw, err := json.Marshal(order)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "AST-1700000000000-ABCDEFGHI", got["orderNumber"])
	assert.Equal(t, "bank", got["paymentMethod"])
	assert.Equal(t, "pending_payment", got["status"])
	assert.Equal(t, "2026-01-02T03:04:05Z", got["createdAt"])
	assert.NotContains(t, got, "paymentId")
	assert.Equal(t, map[string]any{"ram": "2GB", "cpu": "1vCPU", "disk": "10GB"}, got["specs"])
}

func TestOrder_NilDiscordEncodesNull(t *testing.T) {
	raw, err := json.Marshal(Customer{Name: "Alex"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"discord":null`)
}

func TestPaymentMethod_Manual(t *testing.T) {
	tests := []struct {
		method PaymentMethod
		manual bool
	}{
		{PaymentMethodGCash, true},
		{PaymentMethodMaya, true},
		{PaymentMethodBank, true},
		{PaymentMethodStripe, false},
		{PaymentMethod("paypal"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.manual, tt.method.Manual())
		})
	}
}

func TestOrder_StatusConstants(t *testing.T) {
	assert.Equal(t, OrderStatus("pending_payment"), OrderStatusPendingPayment)
	assert.Equal(t, OrderStatus("completed"), OrderStatusCompleted)
}
