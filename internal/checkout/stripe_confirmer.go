package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// CardConfirmation is the processor's verdict on a payment intent.
type CardConfirmation struct {
	PaymentID string
	Status    string
}

func (c CardConfirmation) Succeeded() bool {
	return c.Status == string(stripe.PaymentIntentStatusSucceeded)
}

type CardConfirmer interface {
	Confirm(ctx context.Context, clientSecret string) (CardConfirmation, error)
}

// StripeConfirmer confirms a payment intent with the publishable key, the
// way a browser would, using a saved payment method such as pm_card_visa.
type StripeConfirmer struct {
	api           *client.API
	paymentMethod string
}

func NewStripeConfirmer(publishableKey, paymentMethod string) *StripeConfirmer {
	api := &client.API{}
	api.Init(publishableKey, nil)
	return &StripeConfirmer{api: api, paymentMethod: paymentMethod}
}

func NewStripeConfirmerWithURL(publishableKey, paymentMethod, apiURL string) *StripeConfirmer {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(apiURL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	api := &client.API{}
	api.Init(publishableKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return &StripeConfirmer{api: api, paymentMethod: paymentMethod}
}

func (s *StripeConfirmer) Confirm(ctx context.Context, clientSecret string) (CardConfirmation, error) {
	id, err := intentID(clientSecret)
	if err != nil {
		return CardConfirmation{}, err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(s.paymentMethod),
	}
	params.Context = ctx
	params.AddExtra("client_secret", clientSecret)

	pi, err := s.api.PaymentIntents.Confirm(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return CardConfirmation{}, errors.New(stripeErr.Msg)
		}
		return CardConfirmation{}, fmt.Errorf("confirming card payment: %w", err)
	}

	return CardConfirmation{PaymentID: pi.ID, Status: string(pi.Status)}, nil
}

// intentID extracts pi_xxx from pi_xxx_secret_yyy.
func intentID(clientSecret string) (string, error) {
	i := strings.Index(clientSecret, "_secret_")
	if i <= 0 {
		return "", fmt.Errorf("malformed client secret")
	}
	return clientSecret[:i], nil
}
