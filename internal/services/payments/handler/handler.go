package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stripe/stripe-go/v84"

	"golang-payment-sheet/internal/services/payments"
	"golang-payment-sheet/internal/services/payments/types"
)

const maxBodyBytes = int64(65536)

// SessionService is implemented by payments.Service.
type SessionService interface {
	CreateSessionForCustomer(ctx context.Context, req types.PaymentRequest) (*types.SessionResponse, error)
	CreateAnonymousSession(ctx context.Context, req types.PaymentRequest) (*types.AnonymousSessionResponse, error)
}

type handler struct {
	sessions SessionService
}

func NewHandler(sessions SessionService) *handler {
	return &handler{
		sessions: sessions,
	}
}

func (h *handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	slog.Debug("running CreateIntent", "request_id", middleware.GetReqID(r.Context()))

	body, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.sessions.CreateSessionForCustomer(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) CreateIntentWithoutCustomer(w http.ResponseWriter, r *http.Request) {
	slog.Debug("running CreateIntentWithoutCustomer", "request_id", middleware.GetReqID(r.Context()))

	body, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.sessions.CreateAnonymousSession(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeRequest accepts an empty body as an empty request.
func decodeRequest(w http.ResponseWriter, r *http.Request) (types.PaymentRequest, bool) {
	var body types.PaymentRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(&body)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return body, true
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: "Request too large"})
			return body, false
		}
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Invalid JSON: " + err.Error()})
		return body, false
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	// The Timeout middleware answers 504 itself once the deadline passes.
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		slog.Warn("payment session request timed out",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("payment session request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	writeJSON(w, status, types.ErrorResponse{Error: publicMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, payments.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, payments.ErrProvider):
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeInvalidRequest &&
			(stripeErr.HTTPStatusCode == http.StatusBadRequest || stripeErr.HTTPStatusCode == http.StatusNotFound) {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps identifiers of resources created during a failed
// request out of the response body.
func publicMessage(err error) string {
	var pe *payments.ProviderError
	if errors.As(err, &pe) {
		var stripeErr *stripe.Error
		if errors.As(pe.Err, &stripeErr) && stripeErr.Msg != "" {
			return "Failed " + pe.Op + ": " + stripeErr.Msg
		}
		return "Failed " + pe.Op
	}
	if errors.Is(err, payments.ErrValidation) {
		return err.Error()
	}
	return "Internal server error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
