package payment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrChargeRejected     = errors.New("payment gateway rejected the charge")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
)

// ChargeRequest asks the gateway to start a checkout. Amount is in minor units.
type ChargeRequest struct {
	Email       string
	Amount      int64
	Currency    string
	Reference   string
	CallbackURL string
	Metadata    map[string]string
}

// Charge is an initialised checkout the customer is redirected to
type Charge struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
}

// Verification is the gateway's view of a charge
type Verification struct {
	Reference string
	Status    string
	Amount    int64
	Currency  string
	PaidAt    *time.Time
}

// Successful reports whether the charge was captured
func (v *Verification) Successful() bool {
	return v != nil && v.Status == "success"
}

// WebhookEvent is the decoded body of a gateway callback
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

type Gateway interface {
	Initialize(ctx context.Context, req ChargeRequest) (*Charge, error)
	Verify(ctx context.Context, reference string) (*Verification, error)
	VerifySignature(payload []byte, signature string) bool
}
