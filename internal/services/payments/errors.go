package payments

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid payment request")
	ErrProvider   = errors.New("payment provider error")
)

// ValidationError rejects a request before any provider call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ProviderError wraps a failed call to the payment provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// PartialCompletionError is a ProviderError raised after this request had
// already created a customer with the provider.
type PartialCompletionError struct {
	*ProviderError
	CustomerID  string
	Compensated bool
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf("%s (customer created earlier in request, compensated=%t)", e.ProviderError.Error(), e.Compensated)
}

func (e *PartialCompletionError) Unwrap() error {
	return e.ProviderError
}
