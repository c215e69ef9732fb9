package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-marketplace/internal/authz"
	"github.com/SAP-F-2025/course-marketplace/internal/events"
	"github.com/SAP-F-2025/course-marketplace/internal/identity"
	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/services"
)

func TestAccountService_ProvisionCreatesStudentOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accounts := f.services.Account()

	subject := identity.Subject{ID: "sub-1", Email: "Ada@Example.com", DisplayName: "Ada Lovelace"}
	account, err := accounts.Provision(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, account.Role)
	assert.Equal(t, "ada@example.com", account.Email)
	assert.Equal(t, "Ada Lovelace", account.FullName)

	// A later login refreshes identity fields and keeps the role
	require.NoError(t, f.repo.Account().UpdateRole(ctx, nil, "sub-1", models.RoleStudent, models.RoleInstructor))
	subject.DisplayName = "Ada King"
	again, err := accounts.Provision(ctx, subject)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", again.FullName)
	assert.Equal(t, models.RoleInstructor, again.Role)
	assert.NotNil(t, again.LastLoginAt)
}

func TestAccountService_ProvisionSubjectsWithoutEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	accounts := f.services.Account()

	first, err := accounts.Provision(ctx, identity.Subject{ID: "sub-a"})
	require.NoError(t, err)
	second, err := accounts.Provision(ctx, identity.Subject{ID: "sub-b"})
	require.NoError(t, err)

	assert.Equal(t, "sub-a", first.ID)
	assert.Equal(t, "sub-b", second.ID)
	assert.Empty(t, second.Email)

	// A taken address is still refused for a different subject
	_, err = accounts.Provision(ctx, identity.Subject{ID: "sub-c", Email: "shared@example.com"})
	require.NoError(t, err)
	_, err = accounts.Provision(ctx, identity.Subject{ID: "sub-d", Email: "Shared@example.com"})
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestAccountService_ProvisionRejectsEmptySubject(t *testing.T) {
	f := newFixture(t)

	_, err := f.services.Account().Provision(context.Background(), identity.Subject{})
	assert.ErrorIs(t, err, authz.ErrUnauthenticated)
}

func TestAccountService_UpdateProfileNeverTouchesRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.principal(t, "stu", models.RoleStudent)

	name := "Renamed"
	country := "ng"
	bio := "Learning Go"
	account, err := f.services.Account().UpdateProfile(ctx, "stu", &models.ProfileUpdateRequest{
		FullName: &name,
		Country:  &country,
		Bio:      &bio,
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", account.FullName)
	require.NotNil(t, account.Country)
	assert.Equal(t, "NG", *account.Country)
	assert.Equal(t, models.RoleStudent, f.role(t, "stu"))

	bad := "XX"
	_, err = f.services.Account().UpdateProfile(ctx, "stu", &models.ProfileUpdateRequest{Country: &bad})
	var verrs services.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.services.Account().UpdateProfile(ctx, "missing", &models.ProfileUpdateRequest{FullName: &name})
	assert.ErrorIs(t, err, services.ErrAccountNotFound)
}

func TestAccountService_ChangeRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.principal(t, "adm", models.RoleAdmin)
	instructor := f.principal(t, "ins", models.RoleInstructor)
	f.principal(t, "stu", models.RoleStudent)
	accounts := f.services.Account()

	tests := []struct {
		name    string
		actor   authz.Principal
		target  string
		role    models.UserRole
		wantErr error
	}{
		{name: "non admin is forbidden", actor: instructor, target: "stu", role: models.RoleInstructor, wantErr: authz.ErrForbidden},
		{name: "same role is rejected", actor: admin, target: "stu", role: models.RoleStudent, wantErr: services.ErrInvalidRoleChange},
		{name: "demotion is rejected", actor: admin, target: "ins", role: models.RoleStudent, wantErr: services.ErrInvalidRoleChange},
		{name: "unknown target", actor: admin, target: "ghost", role: models.RoleAdmin, wantErr: services.ErrAccountNotFound},
		{name: "promotion succeeds", actor: admin, target: "stu", role: models.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := accounts.ChangeRole(ctx, tt.actor, tt.target, &models.RoleChangeRequest{Role: tt.role})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.RoleStudent, resp.PreviousRole)
			assert.Equal(t, tt.role, resp.Role)
		})
	}

	assert.Equal(t, models.RoleAdmin, f.role(t, "stu"))
	assert.Equal(t, models.RoleInstructor, f.role(t, "ins"))
	assert.Len(t, f.publisher.EventsOfType(events.AccountRoleChanged), 1)
}

func TestAccountService_List(t *testing.T) {
	f := newFixture(t)
	f.principal(t, "s1", models.RoleStudent)
	f.principal(t, "s2", models.RoleStudent)
	f.principal(t, "i1", models.RoleInstructor)

	page, err := f.services.Account().List(context.Background(), &models.ListAccountsParams{Page: 1, Size: 10, Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalElements)
	assert.True(t, page.First)
	assert.True(t, page.Last)
}
