package services_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/testutil"
)

func TestDashboardService_Instructor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.principal(t, "ins", models.RoleInstructor)
	published := testutil.SeedCourse(t, f.db, "ins", models.CoursePublished, 0)
	testutil.SeedCourse(t, f.db, "ins", models.CourseDraft, 0)

	for _, id := range []string{"s1", "s2"} {
		_, err := f.services.Enrollment().Enroll(ctx, f.principal(t, id, models.RoleStudent), published.ID, nil)
		require.NoError(t, err)
	}

	dashboard, err := f.services.Dashboard().GetInstructorDashboard(ctx, "ins")
	require.NoError(t, err)
	assert.Equal(t, int64(2), dashboard.TotalCourses)
	assert.Equal(t, int64(1), dashboard.PublishedCourses)
	assert.Equal(t, int64(2), dashboard.ActiveEnrollments)
	assert.Len(t, dashboard.Courses, 2)
}

func TestDashboardService_Admin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.principal(t, "adm", models.RoleAdmin)
	f.principal(t, "ins", models.RoleInstructor)
	student := f.principal(t, "stu", models.RoleStudent)
	testutil.SeedCourse(t, f.db, "ins", models.CoursePublished, 0)

	_, err := f.services.Application().Submit(ctx, student, validApplication())
	require.NoError(t, err)

	dashboard, err := f.services.Dashboard().GetAdminDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.AccountsByRole[models.RoleAdmin])
	assert.Equal(t, int64(1), dashboard.AccountsByRole[models.RoleStudent])
	assert.Equal(t, int64(1), dashboard.ApplicationsByStatus[models.ApplicationPending])
	assert.Equal(t, int64(0), dashboard.ApplicationsByStatus[models.ApplicationApproved])
	assert.Equal(t, int64(1), dashboard.PublishedCourses)
	assert.False(t, dashboard.GeneratedAt.IsZero())
}

func TestReportService_ExportApplications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.principal(t, "adm", models.RoleAdmin)

	for _, id := range []string{"s1", "s2"} {
		_, err := f.services.Application().Submit(ctx, f.principal(t, id, models.RoleStudent), validApplication())
		require.NoError(t, err)
	}
	apps, err := f.services.Application().ListMine(ctx, "s1")
	require.NoError(t, err)
	_, err = f.services.Application().Reject(ctx, apps[0].ID, admin, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.services.Report().ExportApplications(ctx, &models.ListApplicationsParams{}, &buf))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Applications")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Applicant", rows[0][1])
	assert.Contains(t, []string{rows[1][3], rows[2][3]}, "rejected")
	assert.Equal(t, "go, databases", rows[1][4])

	buf.Reset()
	require.NoError(t, f.services.Report().ExportApplications(ctx, &models.ListApplicationsParams{Status: models.ApplicationPending}, &buf))
	book, err = excelize.OpenReader(&buf)
	require.NoError(t, err)
	rows, err = book.GetRows("Applications")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
