package dto

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CreatePaymentIntentRequest struct {
	Amount   *float64      `json:"amount"`
	Currency string        `json:"currency"`
	Customer *CustomerInfo `json:"customer"`
	Order    *OrderInfo    `json:"order"`
}

type CreatePaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

type StripeKeyResponse struct {
	PublishableKey string `json:"publishableKey"`
}

type WalletDetails struct {
	Number string `json:"number"`
}

type BankDetails struct {
	Name          string `json:"name"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
}

type PaymentConfigResponse struct {
	GCash WalletDetails `json:"gcash"`
	Maya  WalletDetails `json:"maya"`
	Bank  BankDetails   `json:"bank"`
}
