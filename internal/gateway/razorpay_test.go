package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *RazorpayGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewRazorpayGateway(config.RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
	})
}

func TestCreateOrder(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var body createOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(50000), body.Amount)
		assert.Equal(t, "INR", body.Currency)
		assert.Equal(t, 1, body.PaymentCapture)

		_, _ = w.Write([]byte(`{"id":"order_X","amount":50000,"currency":"INR","status":"created"}`))
	})

	order, err := g.CreateOrder(context.Background(), 50000, "INR", true)
	require.NoError(t, err)
	assert.Equal(t, "order_X", order.ID)
	assert.Equal(t, int64(50000), order.Amount)
}

func TestCreateOrderProviderError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`))
	})

	_, err := g.CreateOrder(context.Background(), 10, "INR", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGateway))
	assert.Contains(t, err.Error(), "atleast INR 1.00")
}

func TestCreateOrderMissingID(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := g.CreateOrder(context.Background(), 100, "INR", true)
	assert.ErrorIs(t, err, ErrGateway)
}

func TestCreateOrderTimeout(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := g.CreateOrder(ctx, 100, "INR", true)
	assert.ErrorIs(t, err, ErrGateway)
}

func TestVerifySignature(t *testing.T) {
	g := NewRazorpayGateway(config.RazorpayConfig{KeyID: "k", KeySecret: "secret"})
	valid := Sign("secret", "order_X", "pay_1")

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		wantErr   bool
	}{
		{"valid", "order_X", "pay_1", valid, false},
		{"tampered payment", "order_X", "pay_2", valid, true},
		{"other order", "order_Y", "pay_1", valid, true},
		{"wrong secret", "order_X", "pay_1", Sign("other", "order_X", "pay_1"), true},
		{"empty signature", "order_X", "pay_1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.VerifySignature(tt.orderID, tt.paymentID, tt.signature)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSignature)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignKnownVector(t *testing.T) {
	// printf 'order_X|pay_1' | openssl dgst -sha256 -hmac secret
	assert.Equal(t, "a8a5dd1392b8e884696a1d3a18a4a1ce299a3efb9f973e78425163db55956315", Sign("secret", "order_X", "pay_1"))
}
