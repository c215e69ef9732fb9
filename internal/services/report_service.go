package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/course-marketplace/internal/models"
	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

const (
	applicationsSheet = "Applications"
	exportBatchSize   = 500
)

var applicationColumns = []interface{}{
	"ID", "Applicant", "Email", "Status", "Expertise", "Portfolio", "Submitted At", "Reviewed At", "Reviewer", "Comments",
}

type reportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, logger *slog.Logger) ReportService {
	return &reportService{repo: repo, logger: logger}
}

func (s *reportService) ExportApplications(ctx context.Context, params *models.ListApplicationsParams, w io.Writer) error {
	s.logger.Info("Exporting instructor applications", "status", params.Status)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", applicationsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(applicationsSheet, "A1", &applicationColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastColumn, err := excelize.ColumnNumberToName(len(applicationColumns))
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(applicationsSheet, "A1", lastColumn+"1", header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	filters := applicationFilters(params, exportBatchSize, 0)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		apps, _, err := s.repo.Application().List(ctx, nil, filters)
		if err != nil {
			return fmt.Errorf("failed to list applications: %w", err)
		}

		for _, app := range apps {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			values := applicationRow(app)
			if err := f.SetSheetRow(applicationsSheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
			row++
		}

		if len(apps) < exportBatchSize {
			break
		}
		filters.Offset += exportBatchSize
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Instructor applications exported", "rows", row-2)
	return nil
}

func applicationRow(app *models.InstructorApplication) []interface{} {
	var name, email string
	if app.User != nil {
		name, email = app.User.FullName, app.User.Email
	}

	var expertise []string
	if len(app.Expertise) > 0 {
		_ = json.Unmarshal(app.Expertise, &expertise)
	}

	values := []interface{}{
		app.ID,
		name,
		email,
		string(app.Status),
		strings.Join(expertise, ", "),
		deref(app.PortfolioURL),
		app.SubmittedAt.UTC().Format("2006-01-02 15:04:05"),
		"",
		deref(app.ReviewerID),
		deref(app.ReviewComments),
	}
	if app.ReviewedAt != nil {
		values[7] = app.ReviewedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return values
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
