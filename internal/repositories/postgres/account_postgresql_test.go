package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-marketplace/internal/testutil"
)

func TestAccountPostgreSQL_CreateAndGet(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewAccountPostgreSQL(db)
	ctx := context.Background()

	account := &models.Account{ID: "sub-1", FullName: "Ada", Email: "  Ada@Example.com ", Role: models.RoleStudent}
	require.NoError(t, repo.Create(ctx, nil, account))

	got, err := repo.GetByID(ctx, nil, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, models.RoleStudent, got.Role)

	byEmail, err := repo.GetByEmail(ctx, nil, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", byEmail.ID)

	_, err = repo.GetByID(ctx, nil, "missing")
	assert.True(t, repositories.IsNotFound(err))

	dup := &models.Account{ID: "sub-2", FullName: "Other", Email: "ada@example.com"}
	err = repo.Create(ctx, nil, dup)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestAccountPostgreSQL_UpdateProfileKeepsRole(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewAccountPostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "inst", models.RoleInstructor)

	bio := "teaches go"
	err := repo.UpdateProfile(ctx, nil, &models.Account{
		ID:       "inst",
		FullName: "Renamed",
		Email:    "inst@example.com",
		Bio:      &bio,
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, nil, "inst")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.FullName)
	assert.Equal(t, models.RoleInstructor, got.Role)

	err = repo.UpdateProfile(ctx, nil, &models.Account{ID: "ghost", FullName: "x", Email: "g@example.com"})
	assert.True(t, repositories.IsNotFound(err))
}

func TestAccountPostgreSQL_UpdateRoleCompareAndSet(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewAccountPostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "stu", models.RoleStudent)

	require.NoError(t, repo.UpdateRole(ctx, nil, "stu", models.RoleStudent, models.RoleInstructor))

	err := repo.UpdateRole(ctx, nil, "stu", models.RoleStudent, models.RoleAdmin)
	assert.ErrorIs(t, err, repositories.ErrConflict)

	got, err := repo.GetByID(ctx, nil, "stu")
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, got.Role)

	err = repo.UpdateRole(ctx, nil, "ghost", models.RoleStudent, models.RoleAdmin)
	assert.True(t, repositories.IsNotFound(err))
}

func TestAccountPostgreSQL_PromoteToInstructor(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewAccountPostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "stu", models.RoleStudent)
	testutil.SeedAccount(t, db, "adm", models.RoleAdmin)

	tests := []struct {
		name     string
		id       string
		wantRole models.UserRole
	}{
		{"student is promoted", "stu", models.RoleInstructor},
		{"instructor stays instructor", "stu", models.RoleInstructor},
		{"admin is never demoted", "adm", models.RoleAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, repo.PromoteToInstructor(ctx, nil, tt.id))
			got, err := repo.GetByID(ctx, nil, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, got.Role)
		})
	}

	err := repo.PromoteToInstructor(ctx, nil, "ghost")
	assert.True(t, repositories.IsNotFound(err))
}

func TestAccountPostgreSQL_ListAndCount(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewAccountPostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "stu1", models.RoleStudent)
	testutil.SeedAccount(t, db, "stu2", models.RoleStudent)
	testutil.SeedAccount(t, db, "inst", models.RoleInstructor)
	testutil.SeedAccount(t, db, "adm", models.RoleAdmin)
	require.NoError(t, db.Exec("UPDATE accounts SET role = ? WHERE id = ?", "", "stu2").Error)

	role := models.RoleInstructor
	accounts, total, err := repo.List(ctx, nil, repositories.AccountFilters{Role: &role, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, accounts, 1)
	assert.Equal(t, "inst", accounts[0].ID)

	accounts, total, err = repo.List(ctx, nil, repositories.AccountFilters{Query: "STU", Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, accounts, 1)

	counts, err := repo.CountByRole(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[models.RoleStudent])
	assert.EqualValues(t, 1, counts[models.RoleInstructor])
	assert.EqualValues(t, 1, counts[models.RoleAdmin])

	require.NoError(t, repo.TouchLogin(ctx, nil, "adm", time.Now()))
	got, err := repo.GetByID(ctx, nil, "adm")
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)
}
