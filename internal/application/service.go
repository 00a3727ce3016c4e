// Package application owns the application status state machine and its
// append-only ledger. It is the only component permitted to mutate an
// application's status; every transition appends a ledger entry and fires
// the notification pipeline out-of-band.
package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/db"
	"github.com/jonathan/applyflow/internal/notify"
	"github.com/jonathan/applyflow/internal/types"
)

// Store is the persistence the state machine needs.
type Store interface {
	CreateApplication(ctx context.Context, app *types.Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error)
	SaveApplication(ctx context.Context, app *types.Application) error
	SetHistoryDelivery(ctx context.Context, applicationID uuid.UUID, entryIndex int, sent bool, deliveryErr string) error
}

// Directory resolves the narrow job and user summaries needed to address
// notifications. Both return (nil, nil) when the record does not exist.
type Directory interface {
	GetJobSummary(ctx context.Context, jobID uuid.UUID) (*types.JobSummary, error)
	GetUserSummary(ctx context.Context, userID uuid.UUID) (*types.UserSummary, error)
}

// EmailChannel delivers one rendered email, retrying internally. It never
// returns a Go error; the outcome is folded into the Result.
type EmailChannel interface {
	Send(ctx context.Context, to, subject, htmlBody string) notify.Result
}

// StatusNotifier records an in-app notification for a status change.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, userID uuid.UUID, status types.Status, applicationID uuid.UUID, job types.JobSummary)
}

// Service is the application state machine.
type Service struct {
	store     Store
	directory Directory
	email     EmailChannel
	inApp     StatusNotifier
	log       *zap.SugaredLogger

	now func() time.Time
	wg  sync.WaitGroup
}

// NewService creates the state machine service. email and inApp may be nil,
// in which case the corresponding deliveries are skipped.
func NewService(store Store, directory Directory, email EmailChannel, inApp StatusNotifier, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		store:     store,
		directory: directory,
		email:     email,
		inApp:     inApp,
		log:       log,
		now:       time.Now,
	}
}

// TransitionOptions carries the optional inputs of a status transition.
type TransitionOptions struct {
	Notes     string
	ChangedBy *uuid.UUID
	Notify    bool

	// Payload adds event-specific template fields (interview slots, meeting
	// links) to the outgoing notification.
	Payload map[string]string

	// EventOverride replaces the status-derived event type, used by the
	// interview scheduler to send a reschedule email on an
	// InterviewScheduled transition.
	EventOverride types.EventType
}

// Apply creates a new application for the (job, applicant) pair with status
// Pending and one seeded ledger entry. Returns a ConflictError if the pair
// already applied and a NotFoundError if the job or applicant is unknown.
func (s *Service) Apply(ctx context.Context, jobID, applicantID uuid.UUID, coverLetter string, sendNotification bool) (*types.Application, error) {
	job, err := s.directory.GetJobSummary(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, &NotFoundError{Kind: "job", ID: jobID}
	}
	user, err := s.directory.GetUserSummary(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &NotFoundError{Kind: "user", ID: applicantID}
	}

	now := s.now().UTC()
	app := &types.Application{
		ID:          uuid.New(),
		JobID:       jobID,
		ApplicantID: applicantID,
		Status:      types.StatusPending,
		StatusHistory: []types.StatusHistoryEntry{{
			Status:    types.StatusPending,
			ChangedAt: now,
			Notes:     "Application submitted",
		}},
		CoverLetter:    coverLetter,
		AppliedAt:      now,
		LastActivityAt: now,
	}

	if err := s.store.CreateApplication(ctx, app); err != nil {
		if isDuplicate(err) {
			return nil, &ConflictError{Message: "you have already applied to this job"}
		}
		return nil, err
	}

	if sendNotification {
		s.dispatchNotifications(app.ID, app.ApplicantID, types.StatusPending, 0, nil, "")
	}

	return app, nil
}

// Transition sets the application's status. Any status may transition to
// any other; the ledger carries the audit trail a stricter transition graph
// would otherwise provide, so no transition-guard logic is applied here.
//
// The transition is successful once persisted. Notification delivery runs
// out-of-band and its outcome is recorded on the appended ledger entry,
// best effort; delivery failures are never surfaced to the caller.
func (s *Service) Transition(ctx context.Context, applicationID uuid.UUID, newStatus types.Status, opts TransitionOptions) (*types.Application, error) {
	if !types.IsKnownStatus(newStatus) {
		return nil, &ValidationError{Message: "unknown status " + string(newStatus)}
	}

	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, &NotFoundError{Kind: "application", ID: applicationID}
	}

	now := s.now().UTC()
	app.Status = newStatus
	app.StatusHistory = append(app.StatusHistory, types.StatusHistoryEntry{
		Status:    newStatus,
		ChangedAt: now,
		ChangedBy: opts.ChangedBy,
		Notes:     opts.Notes,
	})
	app.LastActivityAt = now

	if err := s.store.SaveApplication(ctx, app); err != nil {
		return nil, err
	}

	if opts.Notify {
		entryIndex := len(app.StatusHistory) - 1
		s.dispatchNotifications(app.ID, app.ApplicantID, newStatus, entryIndex, opts.Payload, opts.EventOverride)
	}

	return app, nil
}

// Get retrieves an application with its ledger and interviews populated.
func (s *Service) Get(ctx context.Context, applicationID uuid.UUID) (*types.Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, &NotFoundError{Kind: "application", ID: applicationID}
	}
	return app, nil
}

// SaveOwned persists a document mutated by a collaborating service (the
// interview scheduler). Status mutation stays the exclusive business of
// Transition.
func (s *Service) SaveOwned(ctx context.Context, app *types.Application) error {
	return s.store.SaveApplication(ctx, app)
}

// Wait blocks until all in-flight notification deliveries have settled.
// Called on shutdown and by tests; a process exit without Wait simply loses
// in-flight deliveries (at-most-once).
func (s *Service) Wait() {
	s.wg.Wait()
}

// dispatchNotifications fires the email and in-app deliveries for a status
// change on a detached goroutine. The caller returns immediately; the email
// outcome is written back to the ledger entry at entryIndex once delivery
// settles. Failures of that write-back are logged and dropped, so the
// ledger may under-report delivery status.
func (s *Service) dispatchNotifications(applicationID, applicantID uuid.UUID, status types.Status, entryIndex int, payload map[string]string, eventOverride types.EventType) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Deliveries outlive the triggering request.
		ctx := context.Background()

		user, err := s.directory.GetUserSummary(ctx, applicantID)
		if err != nil || user == nil {
			s.log.Warnw("skipping notifications, applicant lookup failed",
				"application_id", applicationID, "user_id", applicantID, "error", err)
			return
		}

		var job types.JobSummary
		if app, err := s.store.GetApplication(ctx, applicationID); err == nil && app != nil {
			if summary, err := s.directory.GetJobSummary(ctx, app.JobID); err == nil && summary != nil {
				job = *summary
			}
		}

		if s.inApp != nil {
			s.inApp.NotifyStatusChange(ctx, applicantID, status, applicationID, job)
		}

		event := eventOverride
		if event == "" {
			var ok bool
			event, ok = types.EventForStatus(status)
			if !ok {
				return // no email template for this status
			}
		}

		if s.email == nil {
			return
		}

		ev := types.NotificationEvent{
			EventType:      event,
			RecipientEmail: user.Email,
			RecipientName:  user.Name,
			ApplicationID:  applicationID,
			Payload:        payload,
		}
		subject, body, err := notify.Render(ev.EventType, notify.TemplateData{
			RecipientName: ev.RecipientName,
			JobTitle:      job.Title,
			CompanyName:   job.CompanyName,
			Extra:         ev.Payload,
		})
		if err != nil {
			s.log.Errorw("failed to render notification",
				"event", ev.EventType, "application_id", applicationID, "error", err)
			s.recordDelivery(ctx, applicationID, entryIndex, false, err.Error())
			return
		}

		result := s.email.Send(ctx, ev.RecipientEmail, subject, body)
		s.recordDelivery(ctx, applicationID, entryIndex, result.Success, result.Error)

		if result.Success {
			s.log.Infow("status notification delivered",
				"event", ev.EventType,
				"application_id", applicationID,
				"to", ev.RecipientEmail,
				"attempts", result.Attempts)
		}
	}()
}

// isDuplicate reports whether err is the store's unique-pair violation.
func isDuplicate(err error) bool {
	return errors.Is(err, db.ErrDuplicateApplication)
}

// recordDelivery updates the ledger entry with the delivery outcome.
func (s *Service) recordDelivery(ctx context.Context, applicationID uuid.UUID, entryIndex int, sent bool, deliveryErr string) {
	if err := s.store.SetHistoryDelivery(ctx, applicationID, entryIndex, sent, deliveryErr); err != nil {
		s.log.Warnw("failed to record delivery outcome on ledger",
			"application_id", applicationID,
			"entry_index", entryIndex,
			"error", err)
	}
}
