// Package payments prepares client-side checkout sessions: it resolves a
// customer, issues an ephemeral key for it and creates a payment intent.
package payments

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"golang-payment-sheet/internal/services/payments/types"
)

const (
	DefaultAmount   int64 = 1099
	DefaultCurrency       = "usd"

	// EphemeralKeyAPIVersion is the API version the mobile SDKs expect ephemeral
	// keys to be minted with.
	EphemeralKeyAPIVersion = "2020-08-27"
)

type Service struct {
	provider          PaymentProvider
	validate          *validator.Validate
	logger            *slog.Logger
	compensateOrphans bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithOrphanCompensation makes the service delete a customer it created when
// a later call in the same request fails.
func WithOrphanCompensation(enabled bool) Option {
	return func(s *Service) {
		s.compensateOrphans = enabled
	}
}

func NewService(provider PaymentProvider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		validate: newValidator(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSessionForCustomer reuses req.CustomerID or creates a customer, then
// issues an ephemeral key and a payment intent bound to that customer.
func (s *Service) CreateSessionForCustomer(ctx context.Context, req types.PaymentRequest) (*types.SessionResponse, error) {
	params, err := s.resolveParams(req)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("session_id", params.SessionID)

	created := false
	if params.CustomerID == "" {
		customerID, err := s.provider.CreateCustomer(ctx)
		if err != nil {
			return nil, s.fail(ctx, log, "creating customer", err, "")
		}
		params.CustomerID = customerID
		created = true
		log.Debug("customer created", "customer", customerID)
	} else {
		log.Debug("reusing customer", "customer", params.CustomerID)
	}

	orphan := ""
	if created {
		orphan = params.CustomerID
		// A customer now exists remotely; a client disconnect or router
		// timeout must not cut the session short and leave it orphaned.
		ctx = context.WithoutCancel(ctx)
	}

	ephemeralKey, err := s.provider.CreateEphemeralKey(ctx, params.CustomerID, EphemeralKeyAPIVersion)
	if err != nil {
		return nil, s.fail(ctx, log, "creating ephemeral key", err, orphan)
	}
	log.Debug("ephemeral key created", "customer", params.CustomerID)

	clientSecret, err := s.provider.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, s.fail(ctx, log, "creating payment intent", err, orphan)
	}

	log.Info("payment session created",
		"customer", params.CustomerID,
		"new_customer", created,
		"amount", params.Amount,
		"currency", params.Currency,
	)

	return &types.SessionResponse{
		PaymentIntent: clientSecret,
		EphemeralKey:  ephemeralKey,
		Customer:      params.CustomerID,
	}, nil
}

// CreateAnonymousSession creates a payment intent with no customer attached.
// Any customer_id in the request is ignored.
func (s *Service) CreateAnonymousSession(ctx context.Context, req types.PaymentRequest) (*types.AnonymousSessionResponse, error) {
	req.CustomerID = ""
	params, err := s.resolveParams(req)
	if err != nil {
		return nil, err
	}
	log := s.logger.With("session_id", params.SessionID)

	clientSecret, err := s.provider.CreatePaymentIntent(ctx, params)
	if err != nil {
		return nil, s.fail(ctx, log, "creating payment intent", err, "")
	}

	log.Info("anonymous payment session created", "amount", params.Amount, "currency", params.Currency)

	return &types.AnonymousSessionResponse{PaymentIntent: clientSecret}, nil
}

// resolveParams validates req and applies the checkout defaults. It runs
// before any provider call.
func (s *Service) resolveParams(req types.PaymentRequest) (types.IntentParams, error) {
	if err := s.validateRequest(req); err != nil {
		return types.IntentParams{}, err
	}

	params := types.IntentParams{
		Amount:     DefaultAmount,
		Currency:   DefaultCurrency,
		CustomerID: req.CustomerID,
		SessionID:  uuid.NewString(),
	}
	if req.Amount != nil {
		params.Amount = *req.Amount
	}
	if req.Currency != "" {
		params.Currency = strings.ToLower(req.Currency)
	}

	return params, nil
}

// fail wraps a provider error. When orphanID is set the customer was created
// earlier in this request and the error becomes a PartialCompletionError.
func (s *Service) fail(ctx context.Context, log *slog.Logger, op string, err error, orphanID string) error {
	pe := &ProviderError{Op: op, Err: err}
	if orphanID == "" {
		log.Error("payment provider call failed", "op", op, "error", err)
		return pe
	}

	compensated := false
	if s.compensateOrphans {
		// The request context may already be done; the cleanup must still run.
		if derr := s.provider.DeleteCustomer(context.WithoutCancel(ctx), orphanID); derr != nil {
			log.Error("deleting orphaned customer", "customer", orphanID, "error", derr)
		} else {
			compensated = true
		}
	}

	log.Warn("payment session partially completed",
		"op", op,
		"error", err,
		"customer", orphanID,
		"compensated", compensated,
	)

	return &PartialCompletionError{
		ProviderError: pe,
		CustomerID:    orphanID,
		Compensated:   compensated,
	}
}
