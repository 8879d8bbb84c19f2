package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"astryxnodes/internal/config"
	"astryxnodes/internal/dto"
	apperrors "astryxnodes/internal/errors"
)

type CreatePaymentIntentUseCase interface {
	CreatePaymentIntent(ctx context.Context, req dto.CreatePaymentIntentRequest) (string, error)
}

type PaymentController struct {
	useCase        CreatePaymentIntentUseCase
	paymentConfig  dto.PaymentConfigResponse
	publishableKey string
	logger         *zap.Logger
}

func NewPaymentController(
	useCase CreatePaymentIntentUseCase,
	paymentCfg config.PaymentConfig,
	publishableKey string,
	logger *zap.Logger,
) *PaymentController {
	return &PaymentController{
		useCase: useCase,
		paymentConfig: dto.PaymentConfigResponse{
			GCash: dto.WalletDetails{Number: paymentCfg.GCashNumber},
			Maya:  dto.WalletDetails{Number: paymentCfg.MayaNumber},
			Bank: dto.BankDetails{
				Name:          paymentCfg.BankName,
				AccountName:   paymentCfg.BankAccountName,
				AccountNumber: paymentCfg.BankAccountNumber,
			},
		},
		publishableKey: publishableKey,
		logger:         logger,
	}
}

func (c *PaymentController) PaymentConfig(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, c.paymentConfig)
}

func (c *PaymentController) StripeKey(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, dto.StripeKeyResponse{PublishableKey: c.publishableKey})
}

func (c *PaymentController) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreatePaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON", nil)
		return
	}

	clientSecret, err := c.useCase.CreatePaymentIntent(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, traceID, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.CreatePaymentIntentResponse{ClientSecret: clientSecret})
}

func (c *PaymentController) handleUseCaseError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message, ve.Details)
		return
	}

	if ce, ok := apperrors.IsConfigurationError(err); ok {
		logger.Error("payment processor not configured")
		c.writeError(w, traceID, http.StatusInternalServerError, "CONFIGURATION_ERROR", ce.Message, nil)
		return
	}

	if ue, ok := apperrors.IsUpstreamError(err); ok {
		logger.Error("payment processor error", zap.String("upstream", ue.Upstream), zap.Error(err))
		c.writeError(w, traceID, http.StatusInternalServerError, "UPSTREAM_ERROR", ue.Message, nil)
		return
	}

	if ie, ok := apperrors.IsInternalError(err); ok {
		logger.Error("payment intent creation failed", zap.String("operation", ie.Message), zap.Error(ie.Cause))
		c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", ie.Message, nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "Stripe payment intent creation failed", nil)
}

func (c *PaymentController) writeError(w http.ResponseWriter, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Error:     message,
		Code:      code,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (c *PaymentController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
