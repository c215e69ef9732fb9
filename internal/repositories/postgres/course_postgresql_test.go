package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories/postgres"
	"github.com/SAP-F-2025/course-marketplace/internal/testutil"
)

func TestCoursePostgreSQL_GetOwnerID(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewCoursePostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "inst", models.RoleInstructor)
	course := testutil.SeedCourse(t, db, "inst", models.CourseDraft, 0)

	owner, err := repo.GetOwnerID(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "inst", owner)

	_, err = repo.GetOwnerID(ctx, nil, 9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCoursePostgreSQL_UpdateNeverMovesOwnership(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewCoursePostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "inst", models.RoleInstructor)
	course := testutil.SeedCourse(t, db, "inst", models.CourseDraft, 0)

	course.Title = "Renamed"
	course.Price = 5000
	course.InstructorID = "someone-else"
	require.NoError(t, repo.Update(ctx, nil, course))

	got, err := repo.GetByID(ctx, nil, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.EqualValues(t, 5000, got.Price)
	assert.Equal(t, "inst", got.InstructorID)

	err = repo.Update(ctx, nil, &models.Course{ID: 9999, Title: "x"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCoursePostgreSQL_DeleteCascades(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewCoursePostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "inst", models.RoleInstructor)
	testutil.SeedAccount(t, db, "stu", models.RoleStudent)
	course := testutil.SeedCourse(t, db, "inst", models.CoursePublished, 0)

	require.NoError(t, db.Create(&models.CourseModule{CourseID: course.ID, Title: "Intro"}).Error)
	require.NoError(t, db.Create(&models.Enrollment{UserID: "stu", CourseID: course.ID, Status: models.EnrollmentActive}).Error)

	require.NoError(t, repo.Delete(ctx, nil, course.ID))

	var modules, enrollments int64
	db.Model(&models.CourseModule{}).Where("course_id = ?", course.ID).Count(&modules)
	db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments)
	assert.Zero(t, modules)
	assert.Zero(t, enrollments)

	_, err := repo.GetByID(ctx, nil, course.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Delete(ctx, nil, course.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCoursePostgreSQL_ListFilters(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewCoursePostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "inst", models.RoleInstructor)
	testutil.SeedAccount(t, db, "inst2", models.RoleInstructor)
	testutil.SeedCourse(t, db, "inst", models.CoursePublished, 0)
	testutil.SeedCourse(t, db, "inst", models.CourseDraft, 100)
	testutil.SeedCourse(t, db, "inst2", models.CoursePublished, 200)

	published := models.CoursePublished
	courses, total, err := repo.List(ctx, nil, repositories.CourseFilters{Status: &published, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, courses, 2)

	owner := "inst"
	courses, total, err = repo.List(ctx, nil, repositories.CourseFilters{InstructorID: &owner, SortBy: "price", SortOrder: "asc", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, courses, 2)
	assert.LessOrEqual(t, courses[0].Price, courses[1].Price)

	count, err := repo.CountByInstructor(ctx, nil, "inst2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	exists, err := repo.ExistsBySlug(ctx, nil, courses[0].Slug, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsBySlug(ctx, nil, courses[0].Slug, &courses[0].ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCategoryPostgreSQL_DeleteDetachesCourses(t *testing.T) {
	db := testutil.NewSQLite(t)
	repo := postgres.NewCategoryPostgreSQL(db)
	ctx := context.Background()
	testutil.SeedAccount(t, db, "inst", models.RoleInstructor)

	category := &models.Category{Name: "Go", Slug: "go"}
	require.NoError(t, repo.Create(ctx, nil, category))
	course := testutil.SeedCourse(t, db, "inst", models.CoursePublished, 0)
	require.NoError(t, db.Model(course).Update("category_id", category.ID).Error)

	err := repo.Create(ctx, nil, &models.Category{Name: "Go", Slug: "go-2"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	require.NoError(t, repo.Delete(ctx, nil, category.ID))

	var reloaded models.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Nil(t, reloaded.CategoryID)

	_, err = repo.GetByID(ctx, nil, category.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
