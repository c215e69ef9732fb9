package authz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-marketplace/internal/identity"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

type guardFixture struct {
	router      *gin.Engine
	metrics     *Metrics
	accounts    map[string]*models.Account
	owners      map[string]string
	ownerCalls  int
	accountErr  error
	handlerRuns int
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &guardFixture{
		accounts: map[string]*models.Account{
			"stu":   {ID: "stu", Email: "stu@example.com", Role: models.RoleStudent},
			"inst":  {ID: "inst", Email: "inst@example.com", Role: models.RoleInstructor},
			"inst2": {ID: "inst2", Email: "inst2@example.com", Role: models.RoleInstructor},
			"adm":   {ID: "adm", Email: "adm@example.com", Role: models.RoleAdmin},
			"blank": {ID: "blank", Email: "blank@example.com", Role: ""},
		},
		owners: map[string]string{"10": "inst", "11": ""},
	}

	verifier := identity.NewStaticVerifier()
	for _, id := range []string{"stu", "inst", "inst2", "adm", "blank", "ghost"} {
		verifier.Add("tok-"+id, identity.Subject{ID: id})
	}

	resolver := NewPrincipalResolver(AccountReaderFunc(func(ctx context.Context, id string) (*models.Account, error) {
		if f.accountErr != nil {
			return nil, f.accountErr
		}
		a, ok := f.accounts[id]
		if !ok {
			return nil, repositories.ErrNotFound
		}
		return a, nil
	}))

	f.metrics = NewMetrics(prometheus.NewRegistry())
	guard := NewGuard(verifier, resolver, WithMetrics(f.metrics))
	guard.RegisterOwner(ResourceCourse, "id", func(ctx context.Context, id string) (string, error) {
		f.ownerCalls++
		owner, ok := f.owners[id]
		if !ok {
			return "", repositories.ErrNotFound
		}
		return owner, nil
	})

	ok := func(c *gin.Context) {
		f.handlerRuns++
		p, _ := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"account_id": p.AccountID})
	}

	r := gin.New()
	api := r.Group("/api", guard.Authenticate())
	api.GET("/me", guard.Authorize(OpAccountProfileRead), ok)
	api.POST("/courses", guard.Authorize(OpCourseCreate), ok)
	api.DELETE("/courses/:id", guard.Authorize(OpCourseDelete), ok)
	api.POST("/applications/:id/approve", guard.Authorize(OpApplicationReview), ok)
	api.GET("/unknown", guard.Authorize("nothing.here"), ok)
	api.GET("/adhoc/:id", guard.Require(RequireInstructor, ResourceCourse), ok)
	f.router = r
	return f
}

func (f *guardFixture) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestGuard_Authentication(t *testing.T) {
	f := newGuardFixture(t)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"bad token", "forged", http.StatusUnauthorized},
		{"unknown account", "tok-ghost", http.StatusUnauthorized},
		{"valid", "tok-stu", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, "/api/me", tt.token)
			assert.Equal(t, tt.want, w.Code)
		})
	}
	assert.Equal(t, 1, f.handlerRuns)
}

func TestGuard_AccountStoreFailureIsUnavailable(t *testing.T) {
	f := newGuardFixture(t)
	f.accountErr = errors.New("connection refused")

	w := f.do(http.MethodGet, "/api/me", "tok-stu")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Zero(t, f.handlerRuns)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unavailable", body["error"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestGuard_RoleStage(t *testing.T) {
	f := newGuardFixture(t)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/courses", "tok-stu").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/courses", "tok-blank").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/courses", "tok-inst").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/courses", "tok-adm").Code)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/applications/1/approve", "tok-inst").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/applications/1/approve", "tok-adm").Code)

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.DecisionsTotal.WithLabelValues(string(OpCourseCreate), StageRole, "deny")))
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.DecisionsTotal.WithLabelValues(string(OpCourseCreate), StageRole, "allow")))
}

func TestGuard_OwnershipStage(t *testing.T) {
	f := newGuardFixture(t)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"owner deletes", "/api/courses/10", "tok-inst", http.StatusOK},
		{"other instructor", "/api/courses/10", "tok-inst2", http.StatusForbidden},
		{"student stopped at role", "/api/courses/10", "tok-stu", http.StatusForbidden},
		{"admin deletes", "/api/courses/10", "tok-adm", http.StatusOK},
		{"missing course", "/api/courses/99", "tok-inst", http.StatusForbidden},
		{"missing course as admin", "/api/courses/99", "tok-adm", http.StatusOK},
		{"ownerless course", "/api/courses/11", "tok-inst", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodDelete, tt.path, tt.token)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.NotContains(t, w.Body.String(), "inst\"")
			}
		})
	}
}

func TestGuard_OwnershipSkipsLookupForAdminsAndRoleDenials(t *testing.T) {
	f := newGuardFixture(t)

	f.do(http.MethodDelete, "/api/courses/10", "tok-adm")
	f.do(http.MethodDelete, "/api/courses/10", "tok-stu")
	assert.Zero(t, f.ownerCalls)

	f.do(http.MethodDelete, "/api/courses/10", "tok-inst2")
	assert.Equal(t, 1, f.ownerCalls)
}

func TestGuard_UnknownOperationIsDenied(t *testing.T) {
	f := newGuardFixture(t)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/unknown", "tok-inst").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/unknown", "tok-adm").Code)
	assert.Zero(t, f.handlerRuns)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.DecisionsTotal.WithLabelValues("nothing.here", StageRole, "deny")))
}

func TestGuard_RequireAdHoc(t *testing.T) {
	f := newGuardFixture(t)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/adhoc/10", "tok-inst").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/adhoc/10", "tok-inst2").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/adhoc/10", "tok-stu").Code)
}

func TestGuard_PrincipalIsRequestScoped(t *testing.T) {
	f := newGuardFixture(t)

	w1 := f.do(http.MethodGet, "/api/me", "tok-stu")
	w2 := f.do(http.MethodGet, "/api/me", "tok-adm")
	assert.Contains(t, w1.Body.String(), `"stu"`)
	assert.Contains(t, w2.Body.String(), `"adm"`)
}

func TestGuard_CheckOutsideHTTP(t *testing.T) {
	guard := NewGuard(identity.NewStaticVerifier(), NewPrincipalResolver(AccountReaderFunc(
		func(ctx context.Context, id string) (*models.Account, error) { return nil, repositories.ErrNotFound })))
	guard.RegisterOwner(ResourceCourse, "id", UintOwnerLookup(func(ctx context.Context, id uint) (string, error) {
		if id == 5 {
			return "inst", nil
		}
		return "", repositories.ErrNotFound
	}))

	ctx := context.Background()
	policy := DefaultPolicies[OpCourseUpdate]
	inst := Principal{AccountID: "inst", Role: RoleInstructor}
	other := Principal{AccountID: "other", Role: RoleInstructor}

	assert.NoError(t, guard.Check(ctx, OpCourseUpdate, inst, policy, "5"))
	assert.ErrorIs(t, guard.Check(ctx, OpCourseUpdate, other, policy, "5"), ErrForbidden)
	assert.ErrorIs(t, guard.Check(ctx, OpCourseUpdate, inst, policy, "abc"), ErrForbidden)
	assert.ErrorIs(t, guard.Check(ctx, OpCourseUpdate, inst, policy, "6"), ErrForbidden)
	assert.NoError(t, guard.Check(ctx, OpCourseUpdate, Principal{AccountID: "adm", Role: RoleAdmin}, policy, "6"))
}

func TestGuard_ChangesApplyOnNextRequest(t *testing.T) {
	f := newGuardFixture(t)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/courses/10", "tok-inst2").Code)

	f.owners["10"] = "inst2"
	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/courses/10", "tok-inst2").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/courses/10", "tok-inst").Code)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/api/courses", "tok-stu").Code)
	f.accounts["stu"].Role = models.RoleInstructor
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/api/courses", "tok-stu").Code)
}
