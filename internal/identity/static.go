package identity

import (
	"context"
	"sync"
)

// StaticVerifier maps fixed tokens to subjects. It backs local development
// (AUTH_MODE=static) and handler tests.
type StaticVerifier struct {
	mu     sync.RWMutex
	tokens map[string]Subject
}

func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{tokens: make(map[string]Subject)}
}

// Add registers token as proving subject
func (v *StaticVerifier) Add(token string, subject Subject) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = subject
}

func (v *StaticVerifier) Verify(ctx context.Context, token string) (Subject, error) {
	if token == "" {
		return Subject{}, ErrMissingToken
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	s, ok := v.tokens[token]
	if !ok {
		return Subject{}, ErrInvalidToken
	}
	return s, nil
}
