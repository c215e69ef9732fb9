// Package identity verifies bearer tokens issued by the external identity
// provider and turns them into subjects. It never touches local accounts.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingToken = errors.New("authorization token missing")
	ErrInvalidToken = errors.New("invalid token")
)

// Subject is the identity asserted by a verified token.
type Subject struct {
	ID          string
	Email       string
	DisplayName string
	Avatar      string
}

// Session is the outcome of a completed login.
type Session struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	Subject      Subject
}

// Verifier validates a bearer token and returns its subject.
type Verifier interface {
	Verify(ctx context.Context, token string) (Subject, error)
}

// Exchanger completes an authorization-code login.
type Exchanger interface {
	Exchange(ctx context.Context, code, state string) (*Session, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
