package pkg

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SAP-F-2025/course-marketplace/internal/config"
)

// InitDatabase opens the PostgreSQL pool. TranslateError makes unique
// violations surface as gorm.ErrDuplicatedKey.
func InitDatabase(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := NewGormLogger(log, cfg.IsProduction())

	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// NewGormLogger routes gorm's query log through log. Outside production every
// statement is logged; in production only slow queries and errors.
func NewGormLogger(log *slog.Logger, production bool) logger.Interface {
	logLevel := logger.Info
	if production {
		logLevel = logger.Warn
	}

	return logger.New(
		slog.NewLogLogger(log.With("component", "gorm").Handler(), slog.LevelInfo),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
