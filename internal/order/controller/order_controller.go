package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"astryxnodes/internal/domain"
	"astryxnodes/internal/dto"
	apperrors "astryxnodes/internal/errors"
)

type SubmitOrderUseCase interface {
	CreateOrder(ctx context.Context, traceID string, req dto.SubmitOrderRequest) (domain.Order, error)
	CompleteOrder(ctx context.Context, traceID string, req dto.SubmitOrderRequest) (domain.Order, error)
}

type OrderController struct {
	useCase SubmitOrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase SubmitOrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "request body must be valid JSON")
		return
	}

	if err := validateCreateOrderRequest(req); err != nil {
		ve, _ := apperrors.IsValidationError(err)
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	order, err := c.useCase.CreateOrder(r.Context(), traceID, req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger, "Failed to create order")
		return
	}

	c.writeJSON(w, http.StatusOK, dto.SubmitOrderResponse{
		Success:     true,
		OrderNumber: order.OrderNumber,
		Order:       order,
	})
}

func (c *OrderController) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, traceID, "request body must be valid JSON")
		return
	}

	order, err := c.useCase.CompleteOrder(r.Context(), traceID, req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger, "Failed to complete order")
		return
	}

	c.writeJSON(w, http.StatusOK, dto.SubmitOrderResponse{
		Success:     true,
		OrderNumber: order.OrderNumber,
		Order:       order,
	})
}

func validateCreateOrderRequest(req dto.SubmitOrderRequest) error {
	var details []apperrors.ValidationDetail

	required := []struct {
		field string
		value string
	}{
		{"name", req.Name},
		{"email", req.Email},
		{"phone", req.Phone},
		{"paymentMethod", req.PaymentMethod},
	}
	for _, f := range required {
		if f.value == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   f.field,
				Message: f.field + " is required",
			})
		}
	}

	if req.Order == nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "order",
			Message: "order is required",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("Missing required fields", details...)
	}

	return nil
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger, fallback string) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, traceID, ve.Message, ve.Details...)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
		TraceID:   traceID,
		Error:     fallback,
		Code:      "INTERNAL_ERROR",
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, traceID string, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		TraceID:   traceID,
		Error:     message,
		Code:      "VALIDATION_ERROR",
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
