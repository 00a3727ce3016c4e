// Package interview manages the interview entries attached to an
// application: scheduling, rescheduling with history, cancellation, and
// feedback. Status changes on the owning application go through the
// application state machine so the ledger stays the single audit trail.
package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/application"
	"github.com/jonathan/applyflow/internal/notify"
	"github.com/jonathan/applyflow/internal/types"
)

// Scheduler manages interviews for applications.
type Scheduler struct {
	apps *application.Service
	log  *zap.SugaredLogger
	now  func() time.Time
}

// NewScheduler creates an interview scheduler over the application service.
func NewScheduler(apps *application.Service, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{apps: apps, log: log, now: time.Now}
}

// Schedule creates a new interview with status Scheduled, sets it as the
// application's current interview, and transitions the application to
// InterviewScheduled. The interview slot and venue are carried into the
// outgoing notification payload.
func (s *Scheduler) Schedule(ctx context.Context, applicationID uuid.UUID, req types.ScheduleInterviewRequest, scheduledBy *uuid.UUID, sendNotification bool) (*types.Application, error) {
	if err := req.Validate(); err != nil {
		return nil, &application.ValidationError{Message: "invalid interview spec", Cause: err}
	}

	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	iv := types.Interview{
		ID:              uuid.New(),
		Type:            req.Type,
		Status:          types.InterviewScheduled,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		Timezone:        req.Timezone,
		IsOnline:        *req.IsOnline,
		Interviewers:    req.Interviewers,
		Instructions:    req.Instructions,
		InternalNotes:   req.InternalNotes,
		CreatedAt:       s.now().UTC(),
	}
	if iv.IsOnline {
		iv.Online = req.Online
	} else {
		iv.Offline = req.Offline
	}

	app.Interviews = append(app.Interviews, iv)
	current := iv
	app.CurrentInterview = &current
	if err := s.apps.SaveOwned(ctx, app); err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("%s interview scheduled for %s at %s", iv.Type, iv.ScheduledDate, iv.ScheduledTime)
	return s.apps.Transition(ctx, applicationID, types.StatusInterviewScheduled, application.TransitionOptions{
		Notes:     notes,
		ChangedBy: scheduledBy,
		Notify:    sendNotification,
		Payload:   interviewPayload(&iv),
	})
}

// Reschedule moves an interview to a new slot. The slot that was current
// before this call is appended to the interview's reschedule history first,
// then the interview is updated; the notification shows both slots.
func (s *Scheduler) Reschedule(ctx context.Context, applicationID, interviewID uuid.UUID, req types.RescheduleInterviewRequest, rescheduledBy *uuid.UUID, sendNotification bool) (*types.Application, error) {
	if err := req.Validate(); err != nil {
		return nil, &application.ValidationError{Message: "invalid reschedule request", Cause: err}
	}

	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	iv := app.FindInterview(interviewID)
	if iv == nil {
		return nil, &application.NotFoundError{Kind: "interview", ID: interviewID}
	}

	previousDate := iv.ScheduledDate
	previousTime := iv.ScheduledTime

	iv.RescheduleHistory = append(iv.RescheduleHistory, types.RescheduleEntry{
		PreviousDate:  previousDate,
		PreviousTime:  previousTime,
		Reason:        req.Reason,
		RescheduledBy: rescheduledBy,
		RescheduledAt: s.now().UTC(),
	})
	iv.Status = types.InterviewRescheduled
	iv.ScheduledDate = req.NewDate
	iv.ScheduledTime = req.NewTime
	s.mirrorCurrent(app, iv)

	if err := s.apps.SaveOwned(ctx, app); err != nil {
		return nil, err
	}

	payload := interviewPayload(iv)
	payload[notify.FieldPreviousDate] = previousDate
	payload[notify.FieldPreviousTime] = previousTime

	notes := fmt.Sprintf("Interview rescheduled from %s %s to %s %s: %s",
		previousDate, previousTime, req.NewDate, req.NewTime, req.Reason)
	return s.apps.Transition(ctx, applicationID, types.StatusInterviewScheduled, application.TransitionOptions{
		Notes:         notes,
		ChangedBy:     rescheduledBy,
		Notify:        sendNotification,
		Payload:       payload,
		EventOverride: types.EventInterviewRescheduled,
	})
}

// Cancel marks an interview Cancelled and reverts the application to
// Reviewed, recording the reason on the ledger. The revert is unconditional
// even if the application progressed through other means; that mirrors the
// reference behavior rather than a business rule.
func (s *Scheduler) Cancel(ctx context.Context, applicationID, interviewID uuid.UUID, reason string, cancelledBy *uuid.UUID) (*types.Application, error) {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	iv := app.FindInterview(interviewID)
	if iv == nil {
		return nil, &application.NotFoundError{Kind: "interview", ID: interviewID}
	}

	iv.Status = types.InterviewCancelled
	s.mirrorCurrent(app, iv)
	if err := s.apps.SaveOwned(ctx, app); err != nil {
		return nil, err
	}

	notes := "Interview cancelled"
	if reason != "" {
		notes = fmt.Sprintf("Interview cancelled: %s", reason)
	}
	return s.apps.Transition(ctx, applicationID, types.StatusReviewed, application.TransitionOptions{
		Notes:     notes,
		ChangedBy: cancelledBy,
		Notify:    false,
	})
}

// SubmitFeedback attaches interviewer feedback, overwriting any prior
// value, marks the interview Completed, and moves the application to
// InterviewCompleted with the recommendation noted on the ledger.
func (s *Scheduler) SubmitFeedback(ctx context.Context, applicationID, interviewID uuid.UUID, req types.SubmitFeedbackRequest, submittedBy uuid.UUID) (*types.Application, error) {
	if submittedBy == uuid.Nil {
		return nil, &application.ValidationError{Message: "submittedBy is required"}
	}
	if err := req.Validate(); err != nil {
		return nil, &application.ValidationError{Message: "invalid feedback", Cause: err}
	}

	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	iv := app.FindInterview(interviewID)
	if iv == nil {
		return nil, &application.NotFoundError{Kind: "interview", ID: interviewID}
	}

	iv.Feedback = &types.Feedback{
		Rating:         req.Rating,
		Strengths:      req.Strengths,
		Improvements:   req.Improvements,
		Recommendation: req.Recommendation,
		Comments:       req.Comments,
		SubmittedBy:    submittedBy,
		SubmittedAt:    s.now().UTC(),
	}
	iv.Status = types.InterviewCompleted
	s.mirrorCurrent(app, iv)
	if err := s.apps.SaveOwned(ctx, app); err != nil {
		return nil, err
	}

	notes := fmt.Sprintf("Interview feedback submitted, recommendation: %s", req.Recommendation)
	return s.apps.Transition(ctx, applicationID, types.StatusInterviewCompleted, application.TransitionOptions{
		Notes:     notes,
		ChangedBy: &submittedBy,
		Notify:    false,
	})
}

// mirrorCurrent copies iv onto the application's current-interview slot if
// it is the same interview. CurrentInterview is a copy, not a pointer into
// the slice, so mutations must be mirrored explicitly.
func (s *Scheduler) mirrorCurrent(app *types.Application, iv *types.Interview) {
	if app.CurrentInterview != nil && app.CurrentInterview.ID == iv.ID {
		current := *iv
		app.CurrentInterview = &current
	}
}

// interviewPayload builds the notification template fields for an interview.
func interviewPayload(iv *types.Interview) map[string]string {
	payload := map[string]string{
		notify.FieldInterviewDate: iv.ScheduledDate,
		notify.FieldInterviewTime: iv.ScheduledTime,
		notify.FieldInterviewType: string(iv.Type),
	}
	if iv.IsOnline {
		if iv.Online != nil {
			payload[notify.FieldMeetingLink] = iv.Online.MeetingLink
		}
	} else if iv.Offline != nil {
		location := iv.Offline.Location
		if iv.Offline.Room != "" {
			location += ", " + iv.Offline.Room
		}
		payload[notify.FieldLocation] = location
	}
	return payload
}
