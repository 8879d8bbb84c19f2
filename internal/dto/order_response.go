package dto

import "astryxnodes/internal/domain"

type SubmitOrderResponse struct {
	Success     bool         `json:"success"`
	OrderNumber string       `json:"orderNumber"`
	Order       domain.Order `json:"order"`
}
