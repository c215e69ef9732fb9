package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultPaystackURL = "https://api.paystack.co"

type PaystackConfig struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// PaystackGateway talks to the Paystack transaction API
type PaystackGateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewPaystackGateway(cfg PaystackConfig) *PaystackGateway {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultPaystackURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &PaystackGateway{
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

type paystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *PaystackGateway) Initialize(ctx context.Context, req ChargeRequest) (*Charge, error) {
	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.Amount,
		"currency":  req.Currency,
		"reference": req.Reference,
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}

	return &Charge{
		Reference:        data.Reference,
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
	}, nil
}

func (p *PaystackGateway) Verify(ctx context.Context, reference string) (*Verification, error) {
	var data struct {
		Status    string     `json:"status"`
		Reference string     `json:"reference"`
		Amount    int64      `json:"amount"`
		Currency  string     `json:"currency"`
		PaidAt    *time.Time `json:"paid_at"`
	}
	if err := p.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &data); err != nil {
		return nil, err
	}

	return &Verification{
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    data.Amount,
		Currency:  data.Currency,
		PaidAt:    data.PaidAt,
	}, nil
}

// VerifySignature checks the hex HMAC-SHA512 of the raw webhook body
func (p *PaystackGateway) VerifySignature(payload []byte, signature string) bool {
	if signature == "" || p.secretKey == "" {
		return false
	}
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(p.secretKey))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

func (p *PaystackGateway) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode paystack request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build paystack request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var envelope paystackEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%w: undecodable response: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		return fmt.Errorf("%w: %s", ErrChargeRejected, envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode paystack data: %w", err)
		}
	}
	return nil
}

// Sign returns the signature Paystack would send for payload
func Sign(secretKey string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
