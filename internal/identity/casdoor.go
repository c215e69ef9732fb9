package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// CasdoorConfig holds the Casdoor application credentials
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// CasdoorProvider verifies Casdoor-issued JWTs and completes OAuth logins
type CasdoorProvider struct {
	client *casdoorsdk.Client
}

// NewCasdoorProvider creates a provider bound to one Casdoor application
func NewCasdoorProvider(cfg CasdoorConfig) *CasdoorProvider {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &CasdoorProvider{client: client}
}

// Verify parses and validates token with the application certificate
func (p *CasdoorProvider) Verify(ctx context.Context, token string) (Subject, error) {
	if strings.TrimSpace(token) == "" {
		return Subject{}, ErrMissingToken
	}

	claims, err := p.client.ParseJwtToken(token)
	if err != nil {
		return Subject{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return subjectFromClaims(claims)
}

// Exchange trades an authorization code for tokens and the verified subject
func (p *CasdoorProvider) Exchange(ctx context.Context, code, state string) (*Session, error) {
	token, err := p.client.GetOAuthToken(code, state)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	claims, err := p.client.ParseJwtToken(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := subjectFromClaims(claims)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
		Subject:      subject,
	}, nil
}

func subjectFromClaims(claims *casdoorsdk.Claims) (Subject, error) {
	id := claims.User.Id
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return Subject{}, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	name := claims.User.DisplayName
	if name == "" {
		name = claims.User.Name
	}

	return Subject{
		ID:          id,
		Email:       strings.ToLower(claims.User.Email),
		DisplayName: name,
		Avatar:      claims.User.Avatar,
	}, nil
}
