package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/applyflow/internal/types"
)

// The jobs and users tables belong to the surrounding system; this subsystem
// reads the narrow summaries it needs for addressing and rendering
// notifications.

// GetJobSummary retrieves the title and company name of a job posting.
// Returns (nil, nil) if no such job exists.
func (db *DB) GetJobSummary(ctx context.Context, jobID uuid.UUID) (*types.JobSummary, error) {
	var summary types.JobSummary
	err := db.pool.QueryRow(ctx,
		`SELECT title, company_name FROM jobs WHERE id = $1`,
		jobID,
	).Scan(&summary.Title, &summary.CompanyName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job summary: %w", err)
	}
	return &summary, nil
}

// GetUserSummary retrieves the name and email of a user.
// Returns (nil, nil) if no such user exists.
func (db *DB) GetUserSummary(ctx context.Context, userID uuid.UUID) (*types.UserSummary, error) {
	var summary types.UserSummary
	err := db.pool.QueryRow(ctx,
		`SELECT name, email FROM users WHERE id = $1`,
		userID,
	).Scan(&summary.Name, &summary.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user summary: %w", err)
	}
	return &summary, nil
}

// GetJobPosting retrieves the full posting view used by the alert
// dispatcher. Returns (nil, nil) if no such job exists.
func (db *DB) GetJobPosting(ctx context.Context, jobID uuid.UUID) (*types.JobPosting, error) {
	var job types.JobPosting
	var skills []string
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company_name, COALESCE(category, ''),
			COALESCE(location, ''), COALESCE(job_type, ''),
			COALESCE(description, ''), COALESCE(skills, '{}'),
			COALESCE(salary_range, ''), created_at
		 FROM jobs WHERE id = $1`,
		jobID,
	).Scan(&job.ID, &job.Title, &job.CompanyName, &job.Category, &job.Location,
		&job.JobType, &job.Description, &skills, &job.SalaryRange, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job posting: %w", err)
	}
	job.Skills = skills
	return &job, nil
}
