package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/course-marketplace/internal/identity"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

// OwnerLookup returns the owner account id of the resource named by id.
// It must report a missing resource with repositories.ErrNotFound.
type OwnerLookup func(ctx context.Context, id string) (string, error)

// UintOwnerLookup adapts a lookup keyed by a numeric id. Ids that do not
// parse are reported as missing resources.
func UintOwnerLookup(fn func(ctx context.Context, id uint) (string, error)) OwnerLookup {
	return func(ctx context.Context, raw string) (string, error) {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return "", fmt.Errorf("invalid resource id %q: %w", raw, repositories.ErrNotFound)
		}
		return fn(ctx, uint(id))
	}
}

type ownerBinding struct {
	param  string
	lookup OwnerLookup
}

// Guard composes authentication, the role policy and the ownership check
// into gin middleware. It holds no per-request state.
type Guard struct {
	verifier identity.Verifier
	resolver *PrincipalResolver
	policies map[Operation]Policy
	owners   map[Resource]ownerBinding
	metrics  *Metrics
	logger   *slog.Logger
}

type GuardOption func(*Guard)

func WithMetrics(m *Metrics) GuardOption {
	return func(g *Guard) { g.metrics = m }
}

func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

// WithPolicies replaces the operation table.
func WithPolicies(p map[Operation]Policy) GuardOption {
	return func(g *Guard) { g.policies = p }
}

func NewGuard(verifier identity.Verifier, resolver *PrincipalResolver, opts ...GuardOption) *Guard {
	g := &Guard{
		verifier: verifier,
		resolver: resolver,
		policies: DefaultPolicies,
		owners:   make(map[Resource]ownerBinding),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RegisterOwner binds a resource kind to the route parameter holding its id
// and the lookup that reads its owner. Call during router setup only.
func (g *Guard) RegisterOwner(kind Resource, param string, lookup OwnerLookup) {
	g.owners[kind] = ownerBinding{param: param, lookup: lookup}
}

// Authenticate verifies the bearer token, resolves the account and stores
// the principal in the request context.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		token, err := identity.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			g.abort(c, "", StageAuthenticate, fmt.Errorf("%w: %v", ErrUnauthenticated, err))
			return
		}

		subject, err := g.verifier.Verify(ctx, token)
		if err != nil {
			g.abort(c, "", StageAuthenticate, fmt.Errorf("%w: %v", ErrUnauthenticated, err))
			return
		}

		principal, _, err := g.resolver.Resolve(ctx, subject.ID)
		if err != nil {
			g.abort(c, "", StageAuthenticate, err)
			return
		}

		c.Request = c.Request.WithContext(WithPrincipal(ctx, principal))
		c.Next()
	}
}

// Authorize enforces the table entry of op. An operation missing from the
// table is denied.
func (g *Guard) Authorize(op Operation) gin.HandlerFunc {
	policy, known := g.policies[op]
	return func(c *gin.Context) {
		if !known {
			g.logger.ErrorContext(c.Request.Context(), "Operation has no policy", "operation", op)
			g.abort(c, op, StageRole, ErrForbidden)
			return
		}
		g.enforce(c, op, policy)
	}
}

// Require enforces an ad hoc requirement, optionally ownership-scoped to one
// registered resource kind.
func (g *Guard) Require(req Requirement, ownership ...Resource) gin.HandlerFunc {
	policy := Policy{Requirement: req}
	if len(ownership) > 0 {
		policy.Resource = ownership[0]
	}
	op := Operation("require:" + string(req))
	return func(c *gin.Context) {
		g.enforce(c, op, policy)
	}
}

func (g *Guard) enforce(c *gin.Context, op Operation, policy Policy) {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		g.abort(c, op, StageAuthenticate, ErrUnauthenticated)
		return
	}

	var resourceID string
	if policy.OwnershipScoped() {
		if binding, ok := g.owners[policy.Resource]; ok {
			resourceID = c.Param(binding.param)
		}
	}

	if stage, err := g.check(c.Request.Context(), op, principal, policy, resourceID); err != nil {
		g.abort(c, op, stage, err)
		return
	}

	g.logger.DebugContext(c.Request.Context(), "Authorization allowed",
		"operation", op,
		"account_id", principal.AccountID,
		"role", principal.Role)
	c.Next()
}

// Check evaluates policy for principal outside of HTTP. resourceID is only
// read when the policy is ownership-scoped.
func (g *Guard) Check(ctx context.Context, op Operation, principal Principal, policy Policy, resourceID string) error {
	_, err := g.check(ctx, op, principal, policy, resourceID)
	return err
}

func (g *Guard) check(ctx context.Context, op Operation, principal Principal, policy Policy, resourceID string) (string, error) {
	if DecideRole(principal.Role, policy.Requirement) != Allow {
		return StageRole, ErrForbidden
	}
	g.metrics.observe(op, StageRole, Allow.String())

	if !policy.OwnershipScoped() {
		return "", nil
	}

	// Admins pass ownership without reading the owner.
	if principal.IsAdmin() {
		g.metrics.observe(op, StageOwnership, Allow.String())
		return "", nil
	}

	binding, ok := g.owners[policy.Resource]
	if !ok {
		g.logger.ErrorContext(ctx, "No owner lookup registered", "resource", policy.Resource, "operation", op)
		return StageOwnership, ErrForbidden
	}
	// A missing resource is indistinguishable from someone else's.
	if resourceID == "" {
		return StageOwnership, ErrForbidden
	}

	ownerID, err := binding.lookup(ctx, resourceID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return StageOwnership, ErrForbidden
		}
		return StageOwnership, Unavailable("lookup owner", err)
	}

	if DecideOwnership(principal.AccountID, principal.Role, ownerID) != Allow {
		return StageOwnership, ErrForbidden
	}
	g.metrics.observe(op, StageOwnership, Allow.String())
	return "", nil
}

func (g *Guard) abort(c *gin.Context, op Operation, stage string, err error) {
	ctx := c.Request.Context()
	outcome := Deny.String()
	if errors.Is(err, ErrUnavailable) {
		outcome = "error"
		g.logger.ErrorContext(ctx, "Authorization failed", "operation", op, "stage", stage, "error", err)
	} else {
		g.logger.InfoContext(ctx, "Authorization denied", "operation", op, "stage", stage, "reason", ErrorCode(err))
	}
	g.metrics.observe(op, stage, outcome)

	c.AbortWithStatusJSON(HTTPStatus(err), gin.H{
		"error":   ErrorCode(err),
		"message": publicMessage(err),
	})
}

// publicMessage never names owners or the reason a check failed.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "authentication required"
	case errors.Is(err, ErrForbidden):
		return "you do not have permission to perform this action"
	case errors.Is(err, ErrNotFound):
		return "resource not found"
	default:
		return "authorization is temporarily unavailable"
	}
}
