package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/applyflow/internal/types"
)

// ListAlertSubscribers retrieves every user with job alerts enabled and an
// active account. The dispatcher filters this set in memory against the job
// posting.
func (db *DB) ListAlertSubscribers(ctx context.Context) ([]types.AlertPreference, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT user_id, name, email, categories, locations, job_types,
			keywords, min_salary, enabled, updated_at
		 FROM alert_preferences
		 WHERE enabled = TRUE AND active = TRUE`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert subscribers: %w", err)
	}
	defer rows.Close()

	var prefs []types.AlertPreference
	for rows.Next() {
		var (
			p          types.AlertPreference
			categories []byte
			locations  []byte
			jobTypes   []byte
			keywords   []byte
		)
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &categories,
			&locations, &jobTypes, &keywords, &p.MinSalary, &p.Enabled,
			&p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert preference: %w", err)
		}
		for _, pair := range []struct {
			raw  []byte
			dest *[]string
		}{
			{categories, &p.Categories},
			{locations, &p.Locations},
			{jobTypes, &p.JobTypes},
			{keywords, &p.Keywords},
		} {
			if len(pair.raw) > 0 {
				if err := json.Unmarshal(pair.raw, pair.dest); err != nil {
					return nil, fmt.Errorf("failed to unmarshal alert preference list: %w", err)
				}
			}
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert preferences: %w", err)
	}
	return prefs, nil
}

// UpsertAlertPreference creates or replaces a user's alert subscription.
func (db *DB) UpsertAlertPreference(ctx context.Context, p types.AlertPreference) error {
	categories, err := json.Marshal(p.Categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}
	locations, err := json.Marshal(p.Locations)
	if err != nil {
		return fmt.Errorf("failed to marshal locations: %w", err)
	}
	jobTypes, err := json.Marshal(p.JobTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal job types: %w", err)
	}
	keywords, err := json.Marshal(p.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO alert_preferences
			(user_id, name, email, categories, locations, job_types, keywords,
			 min_salary, enabled, active, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10)
		 ON CONFLICT (user_id) DO UPDATE SET
			name = $2, email = $3, categories = $4, locations = $5,
			job_types = $6, keywords = $7, min_salary = $8, enabled = $9,
			updated_at = $10`,
		p.UserID, p.Name, p.Email, categories, locations, jobTypes, keywords,
		p.MinSalary, p.Enabled, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert alert preference: %w", err)
	}
	return nil
}
