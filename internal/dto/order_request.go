package dto

// OrderInfo is the plan selection as the page sends it; every field is an
// opaque string taken from the plan card.
type OrderInfo struct {
	Plan  string `json:"plan"`
	Price string `json:"price"`
	RAM   string `json:"ram"`
	CPU   string `json:"cpu"`
	Disk  string `json:"disk"`
}

type SubmitOrderRequest struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Discord       string     `json:"discord,omitempty"`
	PaymentMethod string     `json:"paymentMethod"`
	Order         *OrderInfo `json:"order"`
	OrderNumber   string     `json:"orderNumber,omitempty"`
	PaymentID     string     `json:"paymentId,omitempty"`
	Status        string     `json:"status,omitempty"`
}
