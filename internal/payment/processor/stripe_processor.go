package processor

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	apperrors "astryxnodes/internal/errors"
	"astryxnodes/internal/payment/usecase"
)

const (
	upstreamName   = "stripe"
	creationFailed = "Stripe payment intent creation failed"
)

type StripeProcessor struct {
	api *client.API
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProcessor{api: api}
}

// NewStripeProcessorWithURL points the processor at a non-default API host,
// such as stripe-mock.
func NewStripeProcessorWithURL(secretKey, apiURL string) *StripeProcessor {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(apiURL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &StripeProcessor{api: api}
}

func (p *StripeProcessor) CreatePaymentIntent(ctx context.Context, in usecase.PaymentIntentInput) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(in.Amount),
		Currency:    stripe.String(in.Currency),
		Description: stripe.String(in.Description),
	}
	params.Context = ctx
	params.AddMetadata("plan", in.Plan)
	params.AddMetadata("customer_name", in.CustomerName)
	params.AddMetadata("customer_email", in.CustomerEmail)

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if !errors.As(err, &stripeErr) {
			return "", apperrors.NewInternalError(creationFailed, err)
		}
		msg := creationFailed
		if stripeErr.Msg != "" {
			msg = stripeErr.Msg
		}
		return "", apperrors.NewUpstreamError(upstreamName, msg, err)
	}

	return pi.ClientSecret, nil
}
