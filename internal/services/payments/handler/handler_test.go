package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/mock/gomock"

	"golang-payment-sheet/internal/services/payments"
	"golang-payment-sheet/internal/services/payments/handler"
	"golang-payment-sheet/internal/services/payments/mocks"
	"golang-payment-sheet/internal/services/payments/types"
)

func newServer(t *testing.T) (*httptest.Server, *mocks.MockPaymentProvider) {
	t.Helper()
	return newServerWithTimeout(t, 5*time.Second)
}

func newServerWithTimeout(t *testing.T, timeout time.Duration) (*httptest.Server, *mocks.MockPaymentProvider) {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockPaymentProvider(ctrl)

	svc := payments.NewService(provider, payments.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	srv := httptest.NewServer(handler.NewRouter(handler.NewHandler(svc), timeout))
	t.Cleanup(srv.Close)

	return srv, provider
}

func post(t *testing.T, srv *httptest.Server, path, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCreateIntent_EmptyBodyCreatesCustomer(t *testing.T) {
	srv, provider := newServer(t)

	provider.EXPECT().CreateCustomer(gomock.Any()).Return("cus_new", nil)
	provider.EXPECT().CreateEphemeralKey(gomock.Any(), "cus_new", payments.EphemeralKeyAPIVersion).Return("ek_secret", nil)
	provider.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p types.IntentParams) (string, error) {
			assert.Equal(t, int64(1099), p.Amount)
			assert.Equal(t, "usd", p.Currency)
			return "pi_secret", nil
		})

	status, body := post(t, srv, "/intent", `{}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{
		"paymentIntent": "pi_secret",
		"ephemeralKey":  "ek_secret",
		"customer":      "cus_new",
	}, body)
}

func TestCreateIntent_NoBody(t *testing.T) {
	srv, provider := newServer(t)

	provider.EXPECT().CreateCustomer(gomock.Any()).Return("cus_new", nil)
	provider.EXPECT().CreateEphemeralKey(gomock.Any(), "cus_new", gomock.Any()).Return("ek_secret", nil)
	provider.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).Return("pi_secret", nil)

	status, body := post(t, srv, "/intent", ``)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cus_new", body["customer"])
}

func TestCreateIntent_ExistingCustomer(t *testing.T) {
	srv, provider := newServer(t)

	provider.EXPECT().CreateEphemeralKey(gomock.Any(), "cus_123", payments.EphemeralKeyAPIVersion).Return("ek_secret", nil)
	provider.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p types.IntentParams) (string, error) {
			assert.Equal(t, int64(500), p.Amount)
			assert.Equal(t, "eur", p.Currency)
			assert.Equal(t, "cus_123", p.CustomerID)
			return "pi_secret", nil
		})

	status, body := post(t, srv, "/intent", `{"customer_id":"cus_123","amount":500,"currency":"eur"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cus_123", body["customer"])
}

func TestCreateIntentWithoutCustomer(t *testing.T) {
	srv, provider := newServer(t)

	provider.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p types.IntentParams) (string, error) {
			assert.Equal(t, int64(2000), p.Amount)
			assert.Empty(t, p.CustomerID)
			return "pi_anon", nil
		})

	status, body := post(t, srv, "/intent/without-customer", `{"amount":2000}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"paymentIntent": "pi_anon"}, body)
}

func TestCreateIntent_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"amount":`},
		{name: "fractional amount", body: `{"amount":10.5}`},
		{name: "string amount", body: `{"amount":"100"}`},
		{name: "negative amount", body: `{"amount":-1}`},
		{name: "unknown currency", body: `{"currency":"zzz"}`},
		{name: "non-tender currency", body: `{"currency":"xts"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t)

			for _, path := range []string{"/intent", "/intent/without-customer"} {
				status, body := post(t, srv, path, tt.body)
				assert.Equal(t, http.StatusBadRequest, status, path)
				assert.NotEmpty(t, body["error"], path)
			}
		})
	}
}

func TestCreateIntent_PartialCompletionHidesCustomer(t *testing.T) {
	srv, provider := newServer(t)

	provider.EXPECT().CreateCustomer(gomock.Any()).Return("cus_orphan", nil)
	provider.EXPECT().CreateEphemeralKey(gomock.Any(), "cus_orphan", gomock.Any()).Return("", errors.New("connection reset"))

	status, body := post(t, srv, "/intent", `{}`)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.NotContains(t, body, "customer")
	assert.NotContains(t, body["error"], "cus_orphan")
}

func TestCreateIntent_ProviderRejectsRequest(t *testing.T) {
	srv, provider := newServer(t)

	stripeErr := &stripe.Error{
		Type:           stripe.ErrorTypeInvalidRequest,
		HTTPStatusCode: http.StatusBadRequest,
		Msg:            "No such customer: 'cus_missing'",
	}
	provider.EXPECT().CreateEphemeralKey(gomock.Any(), "cus_missing", gomock.Any()).Return("", stripeErr)

	status, body := post(t, srv, "/intent", `{"customer_id":"cus_missing"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "No such customer")
}

func TestCreateIntent_ProviderAuthFailure(t *testing.T) {
	srv, provider := newServer(t)

	stripeErr := &stripe.Error{
		Type:           stripe.ErrorTypeInvalidRequest,
		HTTPStatusCode: http.StatusUnauthorized,
		Msg:            "Invalid API Key provided",
	}
	provider.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).Return("", stripeErr)

	status, _ := post(t, srv, "/intent/without-customer", `{}`)
	assert.Equal(t, http.StatusBadGateway, status)
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateIntentWithoutCustomer_Timeout(t *testing.T) {
	srv, provider := newServerWithTimeout(t, 50*time.Millisecond)

	provider.EXPECT().CreatePaymentIntent(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ types.IntentParams) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	resp, err := http.Post(srv.URL+"/intent/without-customer", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, raw)
}
