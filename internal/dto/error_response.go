package dto

import (
	"time"

	apperrors "astryxnodes/internal/errors"
)

// ErrorResponse keeps the human readable message under "error", which is
// what the checkout page shows to the buyer.
type ErrorResponse struct {
	TraceID   string                       `json:"traceId,omitempty"`
	Error     string                       `json:"error"`
	Code      string                       `json:"code,omitempty"`
	Message   string                       `json:"message,omitempty"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}
