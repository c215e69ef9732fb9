package cache

import (
	"context"
	"log/slog"
	"strconv"
)

// Invalidation failures are logged and swallowed. A stale catalog entry
// expires with its TTL and must never fail the write that caused it.

func logInvalidation(ctx context.Context, err error, namespace string, what ...any) {
	if err == nil {
		return
	}
	slog.ErrorContext(ctx, "Catalog cache invalidation failed",
		append([]any{"error", err, "namespace", namespace}, what...)...)
}

// InvalidateCourseCache drops the cached detail of a course, every catalog
// listing that may contain it and the dashboard aggregates.
func InvalidateCourseCache(ctx context.Context, cm *CacheManager, courseID uint) {
	logInvalidation(ctx, cm.Course.Delete(ctx, "id:"+strconv.FormatUint(uint64(courseID), 10)),
		CourseCacheConfig.Prefix, "course_id", courseID)
	logInvalidation(ctx, cm.Course.InvalidatePattern(ctx, "list:*"), CourseCacheConfig.Prefix, "pattern", "list:*")
	logInvalidation(ctx, cm.Stats.InvalidatePattern(ctx, "*"), StatsCacheConfig.Prefix, "pattern", "*")
}

// InvalidateCategoryCache drops category listings and the course lists
// filtered by them.
func InvalidateCategoryCache(ctx context.Context, cm *CacheManager) {
	logInvalidation(ctx, cm.Category.InvalidatePattern(ctx, "*"), CategoryCacheConfig.Prefix, "pattern", "*")
	logInvalidation(ctx, cm.Course.InvalidatePattern(ctx, "list:*"), CourseCacheConfig.Prefix, "pattern", "list:*")
}
