package payment

import (
	"go.uber.org/zap"

	"astryxnodes/internal/config"
	"astryxnodes/internal/payment/controller"
	"astryxnodes/internal/payment/processor"
	"astryxnodes/internal/payment/usecase"
)

func NewModule(cfg *config.Config, logger *zap.Logger) *controller.PaymentController {
	var proc usecase.PaymentProcessor
	if cfg.Stripe.SecretKey != "" {
		proc = processor.NewStripeProcessor(cfg.Stripe.SecretKey)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, card payments disabled")
	}

	uc := usecase.NewCreatePaymentIntentUseCase(proc, logger)
	return controller.NewPaymentController(uc, cfg.Payment, cfg.Stripe.PublishableKey, logger)
}
