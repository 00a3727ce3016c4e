// Package db provides PostgreSQL persistence for the application lifecycle
// subsystem. Embedded documents (the status ledger, interviews, alert
// preferences) are stored as JSONB, preserving the document semantics the
// records originally had.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the subsystem's tables if they do not exist. The
// surrounding system owns users and jobs; the statements here only add what
// this subsystem writes.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			job_id UUID NOT NULL,
			applicant_id UUID NOT NULL,
			status TEXT NOT NULL,
			status_history JSONB NOT NULL DEFAULT '[]',
			interviews JSONB NOT NULL DEFAULT '[]',
			current_interview JSONB,
			internal_notes TEXT NOT NULL DEFAULT '',
			cover_letter TEXT NOT NULL DEFAULT '',
			evaluations JSONB NOT NULL DEFAULT '[]',
			offer_details JSONB,
			applied_at TIMESTAMPTZ NOT NULL,
			last_activity_at TIMESTAMPTZ NOT NULL,
			UNIQUE (job_id, applicant_id)
		)`,
		`CREATE TABLE IF NOT EXISTS in_app_notifications (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			data JSONB,
			link TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT 'low',
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alert_preferences (
			user_id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			categories JSONB NOT NULL DEFAULT '[]',
			locations JSONB NOT NULL DEFAULT '[]',
			job_types JSONB NOT NULL DEFAULT '[]',
			keywords JSONB NOT NULL DEFAULT '[]',
			min_salary INTEGER NOT NULL DEFAULT 0,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_job ON applications (job_id)`,
		`CREATE INDEX IF NOT EXISTS idx_applications_applicant ON applications (applicant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_in_app_notifications_user ON in_app_notifications (user_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
