// Package store provides storage backends for the growth coach quota ledger.
//
// The quota ledger is the authoritative per-day question counter, keyed by
// user id and calendar date. Backends must implement ConsumeQuestion as an
// atomic increment-if-under-limit so rapid duplicate submissions cannot race
// past the daily cap.
package store

import (
	"strings"

	"github.com/localspark/growthcoach/internal/models"
)

// Store is the quota ledger interface.
type Store interface {
	// ConsumeQuestion atomically reserves one question for the user on the
	// given date, creating the day's record if needed. It returns the record
	// after the attempt and whether a question was actually consumed. A false
	// result with a nil error means the daily limit is exhausted.
	ConsumeQuestion(userID, date string, limit int) (models.QuotaRecord, bool, error)

	// ReleaseQuestion returns one previously consumed question, used when the
	// assistant call fails after the reservation. Releasing below zero is a
	// no-op.
	ReleaseQuestion(userID, date string) error

	// GetQuota returns the day's record, or nil if none exists yet.
	GetQuota(userID, date string) (*models.QuotaRecord, error)

	// Close releases backend resources.
	Close() error
}

// Opts holds store configuration.
type Opts struct {
	// DSN is the database connection string. Empty selects the in-memory store.
	DSN string
	// Driver is "sqlite3" or "postgres"; derived from the DSN when empty.
	Driver string
}

// Option configures the store.
type Option func(*Opts)

// WithSQLiteDSN configures an SQLite-backed store at the given file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
		o.Driver = "sqlite3"
	}
}

// WithPostgresDSN configures a PostgreSQL-backed store.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
		o.Driver = "postgres"
	}
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite" based on its shape.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// NewStore builds a store from options: Postgres or SQLite when a DSN is
// configured, in-memory otherwise.
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return NewInMemoryStore(), nil
	}
	driver := cfg.Driver
	if driver == "" {
		if DetectDSNType(cfg.DSN) == "postgres" {
			driver = "postgres"
		} else {
			driver = "sqlite3"
		}
	}
	if driver == "postgres" {
		return NewPostgresStore(opts...)
	}
	return NewSQLiteStore(opts...)
}
