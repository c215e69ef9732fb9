package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaystackGateway_Initialize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 250000, body["amount"])
		assert.Equal(t, "ref-1", body["reference"])

		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"authorization_url":"https://checkout/abc","access_code":"abc","reference":"ref-1"}}`))
	}))
	defer server.Close()

	gateway := NewPaystackGateway(PaystackConfig{SecretKey: "sk_test", BaseURL: server.URL})
	charge, err := gateway.Initialize(context.Background(), ChargeRequest{
		Email:     "stu@example.com",
		Amount:    250000,
		Currency:  "NGN",
		Reference: "ref-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout/abc", charge.AuthorizationURL)
	assert.Equal(t, "ref-1", charge.Reference)
}

func TestPaystackGateway_Verify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/transaction/verify/ref-ok":
			_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"status":"success","reference":"ref-ok","amount":5000,"currency":"NGN"}}`))
		case "/transaction/verify/ref-bad":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	gateway := NewPaystackGateway(PaystackConfig{SecretKey: "sk_test", BaseURL: server.URL})
	ctx := context.Background()

	verification, err := gateway.Verify(ctx, "ref-ok")
	require.NoError(t, err)
	assert.True(t, verification.Successful())
	assert.EqualValues(t, 5000, verification.Amount)

	_, err = gateway.Verify(ctx, "ref-bad")
	assert.ErrorIs(t, err, ErrChargeRejected)

	_, err = gateway.Verify(ctx, "ref-down")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestPaystackGateway_VerifySignature(t *testing.T) {
	gateway := NewPaystackGateway(PaystackConfig{SecretKey: "sk_test"})
	payload := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	assert.True(t, gateway.VerifySignature(payload, Sign("sk_test", payload)))
	assert.False(t, gateway.VerifySignature(payload, Sign("other", payload)))
	assert.False(t, gateway.VerifySignature(payload, "not-hex"))
	assert.False(t, gateway.VerifySignature(payload, ""))
}
