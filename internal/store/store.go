// Package store keeps a history of analysis runs in a SQL database through
// gorm. A DSN starting with postgres:// (or a key=value DSN with host=) opens
// PostgreSQL; anything else is treated as a SQLite file path.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xab-mack/nexeth/internal/ast"
	"github.com/xab-mack/nexeth/internal/engine"
	"github.com/xab-mack/nexeth/internal/model"
)

// Run is one recorded analysis of a source file.
type Run struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	File       string            `gorm:"index" json:"file"`
	Pragma     string            `json:"pragma,omitempty"`
	Attempted  int               `json:"attempted"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	Total      int               `json:"total"`
	CreatedAt  time.Time         `json:"createdAt"`
	Violations []ViolationRecord `gorm:"constraint:OnDelete:CASCADE" json:"violations,omitempty"`
}

type ViolationRecord struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	RunID       uint   `gorm:"index" json:"-"`
	DetectorID  string `gorm:"index" json:"detectorId"`
	Severity    string `json:"severity"`
	Contract    string `json:"contract"`
	Message     string `json:"message"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	Fingerprint string `gorm:"index" json:"fingerprint"`
}

type Store struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("store: empty DSN")
	}
	var dialector gorm.Dialector
	if isPostgres(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		path := strings.TrimPrefix(dsn, "sqlite://")
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialector.Name(), err)
	}
	if err := db.AutoMigrate(&Run{}, &ViolationRecord{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun records result together with its violations.
func (s *Store) SaveRun(ctx context.Context, unit *ast.SourceUnit, result *model.DetectorResult) (*Run, error) {
	run := &Run{
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
		Failed:    len(result.Errors),
		Total:     result.Total,
	}
	if unit != nil {
		run.File = unit.Path
		run.Pragma = unit.PragmaVersion
	}
	for _, v := range result.All() {
		pos := unit.Position(v.Src)
		run.Violations = append(run.Violations, ViolationRecord{
			DetectorID:  v.DetectorID,
			Severity:    string(v.Severity),
			Contract:    v.Contract,
			Message:     v.Message,
			Line:        pos.Line,
			Column:      pos.Column,
			Fingerprint: engine.Fingerprint(unit, v),
		})
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}
	return run, nil
}

// History returns the most recent runs, newest first. limit <= 0 returns
// every run.
func (s *Store) History(ctx context.Context, limit int) ([]Run, error) {
	q := s.db.WithContext(ctx).
		Preload("Violations", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []Run
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return runs, nil
}
