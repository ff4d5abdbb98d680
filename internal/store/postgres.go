// Package store provides storage backends for the growth coach quota ledger.
//
// This file implements the PostgreSQL-backed ledger.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/localspark/growthcoach/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is a quota ledger backed by PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// ConsumeQuestion implements Store. The upsert plus conditional UPDATE keeps
// the increment-and-check atomic under concurrent submissions.
func (s *PostgresStore) ConsumeQuestion(userID, date string, limit int) (models.QuotaRecord, bool, error) {
	var rec models.QuotaRecord
	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("PostgresStore ConsumeQuestion begin failed", "error", err, "userID", userID)
		return rec, false, fmt.Errorf("failed to begin quota transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO quota_usage (user_id, date, used, daily_limit) VALUES ($1, $2, 0, $3) ON CONFLICT (user_id, date) DO NOTHING`, userID, date, limit); err != nil {
		slog.Error("PostgresStore ConsumeQuestion insert failed", "error", err, "userID", userID, "date", date)
		return rec, false, fmt.Errorf("failed to ensure quota row for %s: %w", userID, err)
	}

	res, err := tx.Exec(`UPDATE quota_usage SET used = used + 1, updated_at = NOW() WHERE user_id = $1 AND date = $2 AND used < daily_limit`, userID, date)
	if err != nil {
		slog.Error("PostgresStore ConsumeQuestion update failed", "error", err, "userID", userID, "date", date)
		return rec, false, fmt.Errorf("failed to consume question for %s: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return rec, false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	consumed := affected > 0

	row := tx.QueryRow(`SELECT user_id, date, used, daily_limit FROM quota_usage WHERE user_id = $1 AND date = $2`, userID, date)
	if err := row.Scan(&rec.UserID, &rec.Date, &rec.Used, &rec.Limit); err != nil {
		slog.Error("PostgresStore ConsumeQuestion scan failed", "error", err, "userID", userID, "date", date)
		return rec, false, fmt.Errorf("failed to read quota row for %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("PostgresStore ConsumeQuestion commit failed", "error", err, "userID", userID, "date", date)
		return rec, false, fmt.Errorf("failed to commit quota transaction: %w", err)
	}
	slog.Debug("PostgresStore ConsumeQuestion succeeded", "userID", userID, "date", date, "used", rec.Used, "consumed", consumed)
	return rec, consumed, nil
}

// ReleaseQuestion implements Store.
func (s *PostgresStore) ReleaseQuestion(userID, date string) error {
	_, err := s.db.Exec(`UPDATE quota_usage SET used = used - 1, updated_at = NOW() WHERE user_id = $1 AND date = $2 AND used > 0`, userID, date)
	if err != nil {
		slog.Error("PostgresStore ReleaseQuestion failed", "error", err, "userID", userID, "date", date)
		return fmt.Errorf("failed to release question for %s: %w", userID, err)
	}
	slog.Debug("PostgresStore ReleaseQuestion succeeded", "userID", userID, "date", date)
	return nil
}

// GetQuota implements Store.
func (s *PostgresStore) GetQuota(userID, date string) (*models.QuotaRecord, error) {
	var rec models.QuotaRecord
	row := s.db.QueryRow(`SELECT user_id, date, used, daily_limit FROM quota_usage WHERE user_id = $1 AND date = $2`, userID, date)
	if err := row.Scan(&rec.UserID, &rec.Date, &rec.Used, &rec.Limit); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Error("PostgresStore GetQuota failed", "error", err, "userID", userID, "date", date)
		return nil, fmt.Errorf("failed to query quota for %s: %w", userID, err)
	}
	return &rec, nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
