package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"astryxnodes/internal/dto"
	apperrors "astryxnodes/internal/errors"
)

const defaultCurrency = "php"

type PaymentIntentInput struct {
	Amount        int64
	Currency      string
	Description   string
	Plan          string
	CustomerName  string
	CustomerEmail string
}

type PaymentProcessor interface {
	CreatePaymentIntent(ctx context.Context, in PaymentIntentInput) (clientSecret string, err error)
}

type CreatePaymentIntentUseCase struct {
	processor PaymentProcessor
	logger    *zap.Logger
}

// NewCreatePaymentIntentUseCase accepts a nil processor, meaning no
// secret key was configured.
func NewCreatePaymentIntentUseCase(processor PaymentProcessor, logger *zap.Logger) *CreatePaymentIntentUseCase {
	return &CreatePaymentIntentUseCase{
		processor: processor,
		logger:    logger,
	}
}

func (uc *CreatePaymentIntentUseCase) CreatePaymentIntent(ctx context.Context, req dto.CreatePaymentIntentRequest) (string, error) {
	if uc.processor == nil {
		return "", apperrors.NewConfigurationError("Stripe is not configured. Please set STRIPE_SECRET_KEY environment variable.")
	}

	amount, ok := minorUnits(req.Amount)
	if !ok {
		return "", apperrors.NewValidationError("Invalid amount", apperrors.ValidationDetail{
			Field:   "amount",
			Message: "amount must be a positive number of minor units",
		})
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	in := PaymentIntentInput{
		Amount:   amount,
		Currency: currency,
	}
	if req.Order != nil {
		in.Plan = req.Order.Plan
	}
	if req.Customer != nil {
		in.CustomerName = req.Customer.Name
		in.CustomerEmail = req.Customer.Email
	}
	in.Description = fmt.Sprintf("Minecraft Server - %s", in.Plan)

	clientSecret, err := uc.processor.CreatePaymentIntent(ctx, in)
	if err != nil {
		uc.logger.Error("payment intent creation failed", zap.Int64("amount", amount), zap.String("currency", currency), zap.Error(err))
		return "", err
	}

	uc.logger.Info("payment intent created", zap.Int64("amount", amount), zap.String("currency", currency), zap.String("plan", in.Plan))
	return clientSecret, nil
}

// minorUnits rounds the client supplied amount (price * 100, possibly with
// float noise) to an integer. Amounts that round to zero are rejected.
func minorUnits(amount *float64) (int64, bool) {
	if amount == nil || math.IsNaN(*amount) || math.IsInf(*amount, 0) || *amount <= 0 {
		return 0, false
	}
	rounded := int64(math.Round(*amount))
	if rounded <= 0 {
		return 0, false
	}
	return rounded, true
}
