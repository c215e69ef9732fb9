package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/course-marketplace/internal/events"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps 1-based paging input and returns the row offset
func normalizePage(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, (page - 1) * size
}

// publishAfterCommit delivers an event once the caller's transaction has
// committed. Delivery failures are logged and never undo the write.
func publishAfterCommit(ctx context.Context, publisher events.Publisher, logger *slog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

// jsonList stores trimmed, non-empty strings as a JSON array column
func jsonList(values []string) datatypes.JSON {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	raw, _ := json.Marshal(cleaned)
	return datatypes.JSON(raw)
}
