package checkout

import (
	"fmt"

	"astryxnodes/internal/domain"
	"astryxnodes/internal/dto"
)

var methodNames = map[domain.PaymentMethod]string{
	domain.PaymentMethodGCash:  "GCash",
	domain.PaymentMethodMaya:   "Maya",
	domain.PaymentMethodBank:   "Bank Transfer",
	domain.PaymentMethodStripe: "Card",
}

func MethodName(m domain.PaymentMethod) string {
	if n, ok := methodNames[m]; ok {
		return n
	}
	return string(m)
}

// Instructions lists what the buyer must do to settle a manual payment.
// Card receipts need no instructions and return nil.
func Instructions(r Receipt, cfg dto.PaymentConfigResponse) []string {
	if !r.PaymentMethod.Manual() {
		return nil
	}

	price := r.Order.Price
	var lines []string
	switch r.PaymentMethod {
	case domain.PaymentMethodGCash:
		lines = append(lines, "GCash Number: "+orNA(cfg.GCash.Number))
	case domain.PaymentMethodMaya:
		lines = append(lines, "Maya Number: "+orNA(cfg.Maya.Number))
	case domain.PaymentMethodBank:
		lines = append(lines,
			"Bank: "+orNA(cfg.Bank.Name),
			"Account Name: "+orNA(cfg.Bank.AccountName),
			"Account Number: "+orNA(cfg.Bank.AccountNumber),
		)
	}

	return append(lines,
		fmt.Sprintf("Send exactly ₱%s using %s.", price, MethodName(r.PaymentMethod)),
		fmt.Sprintf("Include your order number %s in the payment reference.", r.OrderNumber),
	)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
