package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/ephemeralkey"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"golang-payment-sheet/internal/services/payments/types"
)

var errEmptyResponse = errors.New("empty response from stripe")

// StripeProvider talks to the Stripe API through the process-wide stripe-go
// backend, so only one should be constructed per process.
type StripeProvider struct{}

// NewStripeProvider sets the API key and configures the API backend. apiBase
// is optional and replaces https://api.stripe.com when set.
func NewStripeProvider(secretKey, apiBase string) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, errors.New("secretKey required for StripeProvider")
	}
	stripe.Key = secretKey

	backendCfg := &stripe.BackendConfig{
		// Failed calls surface to the caller as-is.
		MaxNetworkRetries: stripe.Int64(0),
	}
	if apiBase != "" {
		backendCfg.URL = stripe.String(apiBase)
	}
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg))

	return &StripeProvider{}, nil
}

func (p *StripeProvider) CreateCustomer(ctx context.Context) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	c, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("creating customer: %w", err)
	}
	if c.ID == "" {
		return "", fmt.Errorf("creating customer: %w", errEmptyResponse)
	}

	return c.ID, nil
}

func (p *StripeProvider) CreateEphemeralKey(ctx context.Context, customerID, apiVersion string) (string, error) {
	if customerID == "" {
		return "", errors.New("creating ephemeral key: customer id required")
	}

	params := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(customerID),
		StripeVersion: stripe.String(apiVersion),
	}
	params.Context = ctx

	key, err := ephemeralkey.New(params)
	if err != nil {
		return "", fmt.Errorf("creating ephemeral key: %w", err)
	}
	if key.Secret == "" {
		return "", fmt.Errorf("creating ephemeral key: %w", errEmptyResponse)
	}

	return key.Secret, nil
}

func (p *StripeProvider) CreatePaymentIntent(ctx context.Context, req types.IntentParams) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if req.SessionID != "" {
		params.Metadata = map[string]string{
			"session_id": req.SessionID,
		}
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("creating payment intent: %w", err)
	}
	if pi.ClientSecret == "" {
		return "", fmt.Errorf("creating payment intent: %w", errEmptyResponse)
	}

	return pi.ClientSecret, nil
}

func (p *StripeProvider) DeleteCustomer(ctx context.Context, customerID string) error {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	if _, err := customer.Del(customerID, params); err != nil {
		return fmt.Errorf("deleting customer %s: %w", customerID, err)
	}

	return nil
}
