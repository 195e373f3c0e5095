package persistence

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/spec-kit/crisis-service/internal/config"
)

// SQLite wraps a gorm handle on an embedded SQLite database.
type SQLite struct {
	DB *gorm.DB
}

// NewSQLite opens the database file and applies the schema for the given models.
func NewSQLite(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger, models ...any) (*SQLite, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path not provided")
	}

	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; serialize access through one connection.
	sqlDB.SetMaxOpenConns(1)

	if len(models) > 0 {
		if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	logger.Info("opened sqlite store", zap.String("path", cfg.Path))
	return &SQLite{DB: db}, nil
}

// Close releases the underlying connection.
func (s *SQLite) Close() {
	if s == nil || s.DB == nil {
		return
	}
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// Handle returns the gorm handle.
func (s *SQLite) Handle() *gorm.DB {
	if s == nil {
		return nil
	}
	return s.DB
}
