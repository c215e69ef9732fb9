package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

func TestPrincipalResolver(t *testing.T) {
	reads := 0
	store := AccountReaderFunc(func(ctx context.Context, id string) (*models.Account, error) {
		reads++
		switch id {
		case "stu":
			return &models.Account{ID: "stu", Email: "s@example.com", FullName: "Stu", Role: models.RoleStudent}, nil
		case "legacy":
			return &models.Account{ID: "legacy", Email: "l@example.com"}, nil
		case "broken":
			return nil, errors.New("i/o timeout")
		default:
			return nil, repositories.ErrNotFound
		}
	})
	r := NewPrincipalResolver(store)
	ctx := context.Background()

	p, account, err := r.Resolve(ctx, "stu")
	require.NoError(t, err)
	assert.Equal(t, Principal{AccountID: "stu", Email: "s@example.com", DisplayName: "Stu", Role: RoleStudent}, p)
	assert.Equal(t, "stu", account.ID)

	p, _, err = r.Resolve(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, p.Role)

	_, _, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.NotErrorIs(t, err, ErrAccountNotFound)

	_, _, err = r.Resolve(ctx, "ghost")
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, _, err = r.Resolve(ctx, "broken")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrUnauthenticated)

	// Every call reads the store; nothing is cached between requests.
	before := reads
	_, _, _ = r.Resolve(ctx, "stu")
	_, _, _ = r.Resolve(ctx, "stu")
	assert.Equal(t, before+2, reads)
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	_, ok := PrincipalFromContext(ctx)
	assert.False(t, ok)

	p := Principal{AccountID: "a", Role: RoleAdmin}
	child := WithPrincipal(ctx, p)
	got, ok := PrincipalFromContext(child)
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.True(t, got.IsAdmin())

	_, ok = PrincipalFromContext(ctx)
	assert.False(t, ok)
}
