package payments

import (
	"context"

	"golang-payment-sheet/internal/services/payments/types"
)

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mocks

// PaymentProvider is the slice of the payment processor's API that the
// checkout flow needs. Each method is one outbound call.
type PaymentProvider interface {
	// CreateCustomer creates an attribute-less customer and returns its id.
	CreateCustomer(ctx context.Context) (string, error)
	// CreateEphemeralKey returns the secret of a key scoped to customerID.
	CreateEphemeralKey(ctx context.Context, customerID, apiVersion string) (string, error)
	// CreatePaymentIntent returns the intent's client secret. An empty
	// CustomerID creates an intent with no customer attached.
	CreatePaymentIntent(ctx context.Context, params types.IntentParams) (string, error)
	DeleteCustomer(ctx context.Context, customerID string) error
}
