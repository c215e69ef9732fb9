package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/cache"
	"github.com/SAP-F-2025/course-marketplace/internal/events"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/payment"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
	"github.com/SAP-F-2025/course-marketplace/internal/testutil"
	"github.com/SAP-F-2025/course-marketplace/internal/validator"
)

type fixture struct {
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	gateway   *fakeGateway
	cache     *cache.CacheManager
	redis     *miniredis.Miniredis
	services  services.ServiceManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewSQLite(t)
	logger := testLogger()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		db:        db,
		repo:      postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db}),
		publisher: events.NewMockEventPublisher(logger),
		gateway:   newFakeGateway(),
		cache:     cache.NewCacheManager(client),
		redis:     mr,
	}
	f.services = services.NewServiceManager(db, f.repo, logger, validator.New(), services.ServiceManagerConfig{
		Cache:       f.cache,
		Publisher:   f.publisher,
		Gateway:     f.gateway,
		CallbackURL: "https://marketplace.example.com/payments/callback",
	})
	require.NoError(t, f.services.Initialize(context.Background()))
	return f
}

// principal seeds an account and returns its principal
func (f *fixture) principal(t *testing.T, id string, role models.UserRole) authz.Principal {
	t.Helper()
	return authz.PrincipalFromAccount(testutil.SeedAccount(t, f.db, id, role))
}

func (f *fixture) role(t *testing.T, id string) models.UserRole {
	t.Helper()
	account, err := f.repo.Account().GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	return account.Role
}

func validApplication() *models.ApplicationSubmitRequest {
	return &models.ApplicationSubmitRequest{
		Motivation: "I have taught backend engineering to hundreds of students",
		Expertise:  []string{"go", "databases"},
	}
}

// fakeGateway is an in-memory payment gateway
type fakeGateway struct {
	mu       sync.Mutex
	charges  map[string]int64
	status   string
	initErr  error
	validSig string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{charges: make(map[string]int64), status: "success", validSig: "good-signature"}
}

func (g *fakeGateway) Initialize(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return nil, g.initErr
	}
	g.charges[req.Reference] = req.Amount
	return &payment.Charge{
		Reference:        req.Reference,
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		AccessCode:       "code",
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*payment.Verification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.charges[reference]
	if !ok {
		return nil, payment.ErrChargeRejected
	}
	return &payment.Verification{Reference: reference, Status: g.status, Amount: amount, Currency: "NGN"}, nil
}

func (g *fakeGateway) VerifySignature(payload []byte, signature string) bool {
	return signature == g.validSig
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// studentPrincipal builds a principal for an account seeded earlier
func studentPrincipal(id string) authz.Principal {
	return authz.Principal{AccountID: id, Email: id + "@example.com", Role: authz.RoleStudent}
}
