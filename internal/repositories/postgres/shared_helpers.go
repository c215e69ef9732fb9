package postgres

import (
	"strings"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/course-marketplace/internal/repositories"
)

// SharedHelpers contains common query building
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyCourseFilters applies common filters to course queries
func (h *SharedHelpers) ApplyCourseFilters(query *gorm.DB, filters repositories.CourseFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.Search != "" {
		pattern := likePattern(filters.Search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	return query
}

// ApplyApplicationFilters applies common filters to instructor application queries
func (h *SharedHelpers) ApplyApplicationFilters(query *gorm.DB, filters repositories.ApplicationFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"id":           true,
		"title":        true,
		"status":       true,
		"price":        true,
		"published_at": true,
		"submitted_at": true,
	}

	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if !strings.EqualFold(sortOrder, "asc") {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder).Order("id " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}

// likePattern builds a case-insensitive LIKE pattern that works on both
// PostgreSQL and SQLite.
func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	replacer := strings.NewReplacer("%", "", "_", "")
	return "%" + replacer.Replace(term) + "%"
}
