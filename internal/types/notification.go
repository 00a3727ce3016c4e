package types

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies which notification template an event maps to.
type EventType string

// Notification event types. Statuses without a corresponding event have no
// email template and are skipped by the delivery pipeline.
const (
	EventApplicationReceived    EventType = "APPLICATION_RECEIVED"
	EventApplicationReviewed    EventType = "APPLICATION_REVIEWED"
	EventApplicationShortlisted EventType = "APPLICATION_SHORTLISTED"
	EventInterviewScheduled     EventType = "INTERVIEW_SCHEDULED"
	EventInterviewRescheduled   EventType = "INTERVIEW_RESCHEDULED"
	EventApplicationSelected    EventType = "APPLICATION_SELECTED"
	EventOfferExtended          EventType = "OFFER_EXTENDED"
	EventApplicationRejected    EventType = "APPLICATION_REJECTED"
	EventJobAlert               EventType = "JOB_ALERT"
)

// EventForStatus maps an application status to its notification event type.
// The second return is false for statuses that do not trigger an email.
func EventForStatus(s Status) (EventType, bool) {
	switch s {
	case StatusPending:
		return EventApplicationReceived, true
	case StatusReviewed:
		return EventApplicationReviewed, true
	case StatusShortlisted:
		return EventApplicationShortlisted, true
	case StatusInterviewScheduled:
		return EventInterviewScheduled, true
	case StatusSelected:
		return EventApplicationSelected, true
	case StatusOfferExtended:
		return EventOfferExtended, true
	case StatusRejected:
		return EventApplicationRejected, true
	default:
		return "", false
	}
}

// NotificationEvent is the transient payload handed to the delivery channel.
// It is constructed from an application plus its populated job and applicant
// summaries and is not persisted as its own entity.
type NotificationEvent struct {
	EventType      EventType
	RecipientEmail string
	RecipientName  string
	ApplicationID  uuid.UUID
	Payload        map[string]string
}

// Priority grades an in-app notification for display ordering.
type Priority string

// In-app notification priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// InAppNotification is the record created for the applicant's in-app feed on
// every notified status change, independent of the email outcome.
type InAppNotification struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Type      EventType         `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Link      string            `json:"link,omitempty"`
	Priority  Priority          `json:"priority"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"created_at"`
}
