package database

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/N16ht0wl/Electricity-Meter-Measurement-Program/internal/config"
)

// SQLite owns the single connection to the readings database.
type SQLite struct {
	DB   *gorm.DB
	path string
	log  *logrus.Logger
}

func Open(cfg config.DatabaseConfig, log *logrus.Logger) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql DB: %w", err)
	}

	// One connection: every ledger operation runs on the same handle.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Path, err)
	}

	log.WithField("path", cfg.Path).Debug("opened SQLite database")

	return &SQLite{DB: db, path: cfg.Path, log: log}, nil
}

func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	s.log.WithField("path", s.path).Debug("closing SQLite database")
	return sqlDB.Close()
}
