package authz

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
)

// Principal is the resolved caller of a request. It is copied into the
// request context by value and never shared between requests.
type Principal struct {
	AccountID   string
	Email       string
	DisplayName string
	Role        Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// PrincipalFromAccount builds a Principal, normalising the stored role.
func PrincipalFromAccount(a *models.Account) Principal {
	return Principal{
		AccountID:   a.ID,
		Email:       a.Email,
		DisplayName: a.FullName,
		Role:        NormalizeRole(string(a.Role)),
	}
}

type principalKey struct{}

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// CurrentPrincipal reads the principal from a gin request.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	return PrincipalFromContext(c.Request.Context())
}
