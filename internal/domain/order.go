package domain

import "time"

type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusCompleted      OrderStatus = "completed"
)

type PaymentMethod string

const (
	PaymentMethodGCash  PaymentMethod = "gcash"
	PaymentMethodMaya   PaymentMethod = "maya"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodStripe PaymentMethod = "stripe"
)

// Manual reports whether the method is settled out-of-band by the customer.
func (m PaymentMethod) Manual() bool {
	switch m {
	case PaymentMethodGCash, PaymentMethodMaya, PaymentMethodBank:
		return true
	}
	return false
}

type Specs struct {
	RAM  string `json:"ram"`
	CPU  string `json:"cpu"`
	Disk string `json:"disk"`
}

type Customer struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Discord *string `json:"discord"`
}

// Order is assembled from the client's submission; the server only stamps
// CreatedAt and fills defaults for omitted fields.
type Order struct {
	OrderNumber   string        `json:"orderNumber"`
	Customer      Customer      `json:"customer"`
	Plan          string        `json:"plan"`
	Price         string        `json:"price"`
	Specs         Specs         `json:"specs"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	PaymentID     string        `json:"paymentId,omitempty"`
	Status        OrderStatus   `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}
