// Package types provides type definitions for structured data used throughout the applyflow system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle status of a job application.
type Status string

// Application lifecycle statuses. The set is closed; any status may
// transition to any other (admin overrides are a first-class need, the
// status history carries the audit trail instead of a transition graph).
const (
	StatusPending            Status = "Pending"
	StatusReviewed           Status = "Reviewed"
	StatusShortlisted        Status = "Shortlisted"
	StatusInterviewScheduled Status = "InterviewScheduled"
	StatusInterviewCompleted Status = "InterviewCompleted"
	StatusSelected           Status = "Selected"
	StatusRejected           Status = "Rejected"
	StatusOfferExtended      Status = "OfferExtended"
	StatusOfferAccepted      Status = "OfferAccepted"
	StatusOfferDeclined      Status = "OfferDeclined"
	StatusWithdrawn          Status = "Withdrawn"
)

// KnownStatuses lists every valid application status.
var KnownStatuses = []Status{
	StatusPending,
	StatusReviewed,
	StatusShortlisted,
	StatusInterviewScheduled,
	StatusInterviewCompleted,
	StatusSelected,
	StatusRejected,
	StatusOfferExtended,
	StatusOfferAccepted,
	StatusOfferDeclined,
	StatusWithdrawn,
}

// IsKnownStatus reports whether s is one of the closed status set.
func IsKnownStatus(s Status) bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// StatusHistoryEntry is one append-only ledger record of a status change.
// Entries are immutable once written, except NotificationSent and
// NotificationError which the asynchronous delivery callback fills in
// after the fact.
type StatusHistoryEntry struct {
	Status            Status     `json:"status"`
	ChangedAt         time.Time  `json:"changed_at"`
	ChangedBy         *uuid.UUID `json:"changed_by,omitempty"` // nil for system-generated entries
	Notes             string     `json:"notes,omitempty"`
	NotificationSent  bool       `json:"notification_sent"`
	NotificationError string     `json:"notification_error,omitempty"`
}

// Evaluation is an internal reviewer evaluation attached to an application.
type Evaluation struct {
	Rating      int       `json:"rating"`
	Comments    string    `json:"comments,omitempty"`
	EvaluatedBy uuid.UUID `json:"evaluated_by"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// OfferDetails holds the terms of an extended offer.
type OfferDetails struct {
	Salary      string     `json:"salary,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	ExtendedAt  time.Time  `json:"extended_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// Application is one candidate's submission for one job posting.
// Uniqueness is enforced on the (JobID, ApplicantID) pair.
//
// Invariants: StatusHistory is never empty once the record exists, its last
// entry's Status always equals Status, and LastActivityAt is at least as
// recent as every timestamp inside StatusHistory and Interviews.
type Application struct {
	ID               uuid.UUID            `json:"id"`
	JobID            uuid.UUID            `json:"job_id"`
	ApplicantID      uuid.UUID            `json:"applicant_id"`
	Status           Status               `json:"status"`
	StatusHistory    []StatusHistoryEntry `json:"status_history"`
	Interviews       []Interview          `json:"interviews,omitempty"`
	CurrentInterview *Interview           `json:"current_interview,omitempty"` // copy of the most recently scheduled interview
	InternalNotes    string               `json:"internal_notes,omitempty"`
	CoverLetter      string               `json:"cover_letter,omitempty"`
	Evaluations      []Evaluation         `json:"evaluations,omitempty"`
	OfferDetails     *OfferDetails        `json:"offer_details,omitempty"`
	AppliedAt        time.Time            `json:"applied_at"`
	LastActivityAt   time.Time            `json:"last_activity_at"`
}

// LastHistoryEntry returns a pointer to the most recent ledger entry, or nil
// for a (malformed) application with no history.
func (a *Application) LastHistoryEntry() *StatusHistoryEntry {
	if len(a.StatusHistory) == 0 {
		return nil
	}
	return &a.StatusHistory[len(a.StatusHistory)-1]
}

// FindInterview returns the interview with the given ID, or nil.
func (a *Application) FindInterview(interviewID uuid.UUID) *Interview {
	for i := range a.Interviews {
		if a.Interviews[i].ID == interviewID {
			return &a.Interviews[i]
		}
	}
	return nil
}

// JobSummary is the narrow view of a job posting this subsystem needs when
// rendering notifications.
type JobSummary struct {
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
}

// UserSummary is the narrow view of a user this subsystem needs when
// addressing notifications.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
