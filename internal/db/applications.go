package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/applyflow/internal/types"
)

// ErrDuplicateApplication indicates the (job, applicant) pair already has an
// application.
var ErrDuplicateApplication = errors.New("application already exists for this job and applicant")

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// CreateApplication inserts a new application record. Returns
// ErrDuplicateApplication if the (job, applicant) pair already exists.
func (db *DB) CreateApplication(ctx context.Context, app *types.Application) error {
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal status history: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO applications
			(id, job_id, applicant_id, status, status_history, interviews,
			 internal_notes, cover_letter, evaluations, applied_at, last_activity_at)
		 VALUES ($1, $2, $3, $4, $5, '[]', $6, $7, '[]', $8, $9)`,
		app.ID, app.JobID, app.ApplicantID, app.Status, history,
		app.InternalNotes, app.CoverLetter, app.AppliedAt, app.LastActivityAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetApplication retrieves an application with its full ledger and interview
// documents. Returns (nil, nil) if no such application exists.
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	var (
		app              types.Application
		history          []byte
		interviews       []byte
		currentInterview []byte
		evaluations      []byte
		offerDetails     []byte
	)

	err := db.pool.QueryRow(ctx,
		`SELECT id, job_id, applicant_id, status, status_history, interviews,
			current_interview, internal_notes, cover_letter, evaluations,
			offer_details, applied_at, last_activity_at
		 FROM applications WHERE id = $1`,
		id,
	).Scan(&app.ID, &app.JobID, &app.ApplicantID, &app.Status, &history,
		&interviews, &currentInterview, &app.InternalNotes, &app.CoverLetter,
		&evaluations, &offerDetails, &app.AppliedAt, &app.LastActivityAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if err := json.Unmarshal(history, &app.StatusHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status history: %w", err)
	}
	if err := json.Unmarshal(interviews, &app.Interviews); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interviews: %w", err)
	}
	if len(currentInterview) > 0 {
		if err := json.Unmarshal(currentInterview, &app.CurrentInterview); err != nil {
			return nil, fmt.Errorf("failed to unmarshal current interview: %w", err)
		}
	}
	if len(evaluations) > 0 {
		if err := json.Unmarshal(evaluations, &app.Evaluations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal evaluations: %w", err)
		}
	}
	if len(offerDetails) > 0 {
		if err := json.Unmarshal(offerDetails, &app.OfferDetails); err != nil {
			return nil, fmt.Errorf("failed to unmarshal offer details: %w", err)
		}
	}

	return &app, nil
}

// SaveApplication writes the full application document back. The services
// mutate the in-memory document and persist it whole, matching the
// read-modify-write pattern of the original document store.
func (db *DB) SaveApplication(ctx context.Context, app *types.Application) error {
	history, err := json.Marshal(app.StatusHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal status history: %w", err)
	}
	interviews, err := json.Marshal(app.Interviews)
	if err != nil {
		return fmt.Errorf("failed to marshal interviews: %w", err)
	}

	var currentInterview []byte
	if app.CurrentInterview != nil {
		currentInterview, err = json.Marshal(app.CurrentInterview)
		if err != nil {
			return fmt.Errorf("failed to marshal current interview: %w", err)
		}
	}
	evaluations, err := json.Marshal(app.Evaluations)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluations: %w", err)
	}
	var offerDetails []byte
	if app.OfferDetails != nil {
		offerDetails, err = json.Marshal(app.OfferDetails)
		if err != nil {
			return fmt.Errorf("failed to marshal offer details: %w", err)
		}
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE applications SET
			status = $1, status_history = $2, interviews = $3,
			current_interview = $4, internal_notes = $5, cover_letter = $6,
			evaluations = $7, offer_details = $8, last_activity_at = $9
		 WHERE id = $10`,
		app.Status, history, interviews, currentInterview, app.InternalNotes,
		app.CoverLetter, evaluations, offerDetails, app.LastActivityAt, app.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("application not found: %s", app.ID)
	}
	return nil
}

// SetHistoryDelivery records the delivery outcome on one ledger entry,
// addressed by its index. Only notification_sent and notification_error are
// touched; the rest of the entry stays immutable.
func (db *DB) SetHistoryDelivery(ctx context.Context, applicationID uuid.UUID, entryIndex int, sent bool, deliveryErr string) error {
	patch := map[string]any{"notification_sent": sent}
	if deliveryErr != "" {
		patch["notification_error"] = deliveryErr
	}
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery patch: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE applications
		 SET status_history = jsonb_set(status_history, ARRAY[$1::text],
			 status_history -> $1 || $2::jsonb)
		 WHERE id = $3 AND jsonb_array_length(status_history) > $1`,
		entryIndex, patchJSON, applicationID,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery outcome: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ledger entry %d not found on application %s", entryIndex, applicationID)
	}
	return nil
}

// DeleteApplication removes an application entirely. Hard delete; the
// surrounding system exposes this to admins only.
func (db *DB) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("application not found: %s", id)
	}
	return nil
}

// ListApplicationsByJob retrieves all applications for one job posting.
func (db *DB) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]types.Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id FROM applications WHERE job_id = $1 ORDER BY applied_at DESC`,
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan application id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}

	apps := make([]types.Application, 0, len(ids))
	for _, id := range ids {
		app, err := db.GetApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		if app != nil {
			apps = append(apps, *app)
		}
	}
	return apps, nil
}
