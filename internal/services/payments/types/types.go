package types

// PaymentRequest is the body accepted by both intent endpoints. Amount is in
// minor currency units; nil fields fall back to the checkout defaults.
type PaymentRequest struct {
	Amount     *int64 `json:"amount" validate:"omitempty,gt=0"`
	Currency   string `json:"currency" validate:"omitempty,iso4217ci"`
	CustomerID string `json:"customer_id"`
}

// IntentParams is what gets sent to the provider once defaults are resolved.
type IntentParams struct {
	Amount     int64
	Currency   string
	CustomerID string
	SessionID  string
}

type SessionResponse struct {
	PaymentIntent string `json:"paymentIntent"`
	EphemeralKey  string `json:"ephemeralKey"`
	Customer      string `json:"customer"`
}

type AnonymousSessionResponse struct {
	PaymentIntent string `json:"paymentIntent"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
