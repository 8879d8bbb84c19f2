package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"astryxnodes/internal/domain"
)

const dateLayout = "2006-01-02"

var statusNames = map[domain.OrderStatus]string{
	domain.OrderStatusPendingPayment: "Pending",
	domain.OrderStatusCompleted:      "Paid",
}

var paymentMethodNames = map[domain.PaymentMethod]string{
	domain.PaymentMethodStripe: "Stripe",
	domain.PaymentMethodGCash:  "GCash",
	domain.PaymentMethodMaya:   "Maya",
	domain.PaymentMethodBank:   "Bank Transfer",
}

// Record is the body accepted by POST /api/sales/auto.
type Record struct {
	DateBought    string   `json:"date_bought"`
	Duration      string   `json:"duration"`
	DateExpiry    string   `json:"date_expiry"`
	CustomerName  string   `json:"customer_name"`
	Plan          string   `json:"plan"`
	CPU           string   `json:"cpu"`
	RAM           string   `json:"ram"`
	Disk          string   `json:"disk"`
	Amount        *float64 `json:"amount"`
	PaymentMethod string   `json:"payment_method"`
	Status        string   `json:"status"`
}

// StatusName maps an order status to the sales vocabulary. Unknown values
// pass through unchanged.
func StatusName(s domain.OrderStatus) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return string(s)
}

// PaymentMethodName maps a payment method tag to its display name. Unknown
// values pass through unchanged.
func PaymentMethodName(m domain.PaymentMethod) string {
	if name, ok := paymentMethodNames[m]; ok {
		return name
	}
	return string(m)
}

// NewRecord translates an order into a sales record bought on the UTC date
// of bought and expiring termMonths later.
func NewRecord(order domain.Order, bought time.Time, termMonths int) Record {
	if termMonths < 1 {
		termMonths = 1
	}
	today := bought.UTC()

	return Record{
		DateBought:    today.Format(dateLayout),
		Duration:      durationLabel(termMonths),
		DateExpiry:    today.AddDate(0, termMonths, 0).Format(dateLayout),
		CustomerName:  order.Customer.Name,
		Plan:          order.Plan,
		CPU:           order.Specs.CPU,
		RAM:           order.Specs.RAM,
		Disk:          order.Specs.Disk,
		Amount:        parseAmount(order.Price),
		PaymentMethod: PaymentMethodName(order.PaymentMethod),
		Status:        StatusName(order.Status),
	}
}

func durationLabel(months int) string {
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}

// parseAmount returns nil for prices that are not decimal numbers, which
// the sales API receives as JSON null.
func parseAmount(price string) *float64 {
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
