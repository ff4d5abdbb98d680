// Package store provides storage backends for the growth coach quota ledger.
//
// This file implements the SQLite-backed ledger.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/localspark/growthcoach/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is a quota ledger backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN (a file path).
// The parent directory is created if it does not exist.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ConsumeQuestion implements Store. The reservation is a single conditional
// UPDATE, so concurrent submissions cannot exceed the daily limit.
func (s *SQLiteStore) ConsumeQuestion(userID, date string, limit int) (models.QuotaRecord, bool, error) {
	var rec models.QuotaRecord
	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("SQLiteStore ConsumeQuestion begin failed", "error", err, "userID", userID)
		return rec, false, fmt.Errorf("failed to begin quota transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO quota_usage (user_id, date, used, daily_limit) VALUES (?, ?, 0, ?)`, userID, date, limit); err != nil {
		slog.Error("SQLiteStore ConsumeQuestion insert failed", "error", err, "userID", userID, "date", date)
		return rec, false, fmt.Errorf("failed to ensure quota row for %s: %w", userID, err)
	}

	res, err := tx.Exec(`UPDATE quota_usage SET used = used + 1, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND date = ? AND used < daily_limit`, userID, date)
	if err != nil {
		slog.Error("SQLiteStore ConsumeQuestion update failed", "error", err, "userID", userID, "date", date)
		return rec, false, fmt.Errorf("failed to consume question for %s: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return rec, false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	consumed := affected > 0

	row := tx.QueryRow(`SELECT user_id, date, used, daily_limit FROM quota_usage WHERE user_id = ? AND date = ?`, userID, date)
	if err := row.Scan(&rec.UserID, &rec.Date, &rec.Used, &rec.Limit); err != nil {
		slog.Error("SQLiteStore ConsumeQuestion scan failed", "error", err, "userID", userID, "date", date)
		return rec, false, fmt.Errorf("failed to read quota row for %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("SQLiteStore ConsumeQuestion commit failed", "error", err, "userID", userID, "date", date)
		return rec, false, fmt.Errorf("failed to commit quota transaction: %w", err)
	}
	slog.Debug("SQLiteStore ConsumeQuestion succeeded", "userID", userID, "date", date, "used", rec.Used, "consumed", consumed)
	return rec, consumed, nil
}

// ReleaseQuestion implements Store.
func (s *SQLiteStore) ReleaseQuestion(userID, date string) error {
	_, err := s.db.Exec(`UPDATE quota_usage SET used = used - 1, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND date = ? AND used > 0`, userID, date)
	if err != nil {
		slog.Error("SQLiteStore ReleaseQuestion failed", "error", err, "userID", userID, "date", date)
		return fmt.Errorf("failed to release question for %s: %w", userID, err)
	}
	slog.Debug("SQLiteStore ReleaseQuestion succeeded", "userID", userID, "date", date)
	return nil
}

// GetQuota implements Store.
func (s *SQLiteStore) GetQuota(userID, date string) (*models.QuotaRecord, error) {
	var rec models.QuotaRecord
	row := s.db.QueryRow(`SELECT user_id, date, used, daily_limit FROM quota_usage WHERE user_id = ? AND date = ?`, userID, date)
	if err := row.Scan(&rec.UserID, &rec.Date, &rec.Used, &rec.Limit); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Error("SQLiteStore GetQuota failed", "error", err, "userID", userID, "date", date)
		return nil, fmt.Errorf("failed to query quota for %s: %w", userID, err)
	}
	return &rec, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
