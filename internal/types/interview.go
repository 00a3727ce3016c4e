package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// InterviewType classifies the kind of interview being held.
type InterviewType string

// Interview types.
const (
	InterviewOnline    InterviewType = "Online"
	InterviewOffline   InterviewType = "Offline"
	InterviewPhone     InterviewType = "Phone"
	InterviewTechnical InterviewType = "Technical"
	InterviewHR        InterviewType = "HR"
	InterviewFinal     InterviewType = "Final"
)

// InterviewStatus is the lifecycle status of one interview entry.
type InterviewStatus string

// Interview statuses.
const (
	InterviewScheduled   InterviewStatus = "Scheduled"
	InterviewCompleted   InterviewStatus = "Completed"
	InterviewCancelled   InterviewStatus = "Cancelled"
	InterviewRescheduled InterviewStatus = "Rescheduled"
	InterviewNoShow      InterviewStatus = "NoShow"
)

// OnlineDetails carries the connection information for a remote interview.
type OnlineDetails struct {
	MeetingLink     string `json:"meeting_link,omitempty"`
	Platform        string `json:"platform,omitempty"`
	MeetingID       string `json:"meeting_id,omitempty"`
	MeetingPassword string `json:"meeting_password,omitempty"`
}

// OfflineDetails carries the venue information for an in-person interview.
type OfflineDetails struct {
	Location      string `json:"location,omitempty"`
	Room          string `json:"room,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
}

// RescheduleEntry records one reschedule of an interview, preserving the
// slot that was current before that specific reschedule call. Append-only.
type RescheduleEntry struct {
	PreviousDate  string     `json:"previous_date"`
	PreviousTime  string     `json:"previous_time"`
	Reason        string     `json:"reason"`
	RescheduledBy *uuid.UUID `json:"rescheduled_by,omitempty"`
	RescheduledAt time.Time  `json:"rescheduled_at"`
}

// Feedback is the interviewer's assessment. Submissions overwrite any prior
// value, so an interview always carries its latest feedback only.
type Feedback struct {
	Rating         int       `json:"rating"`
	Strengths      []string  `json:"strengths,omitempty"`
	Improvements   []string  `json:"improvements,omitempty"`
	Recommendation string    `json:"recommendation"`
	Comments       string    `json:"comments,omitempty"`
	SubmittedBy    uuid.UUID `json:"submitted_by"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

// Interview is a scheduled meeting owned by exactly one application.
// Exactly one of Online/Offline is populated, keyed by IsOnline.
type Interview struct {
	ID                uuid.UUID         `json:"id"`
	Type              InterviewType     `json:"type"`
	Status            InterviewStatus   `json:"status"`
	ScheduledDate     string            `json:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime     string            `json:"scheduled_time"` // HH:MM
	DurationMinutes   int               `json:"duration_minutes,omitempty"`
	Timezone          string            `json:"timezone,omitempty"`
	IsOnline          bool              `json:"is_online"`
	Online            *OnlineDetails    `json:"online,omitempty"`
	Offline           *OfflineDetails   `json:"offline,omitempty"`
	Interviewers      []string          `json:"interviewers,omitempty"`
	Instructions      string            `json:"instructions,omitempty"`
	InternalNotes     string            `json:"internal_notes,omitempty"`
	Feedback          *Feedback         `json:"feedback,omitempty"`
	RescheduleHistory []RescheduleEntry `json:"reschedule_history,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// ScheduleInterviewRequest is the input for scheduling a new interview.
// IsOnline is a pointer so that an explicit false is distinct from absent.
type ScheduleInterviewRequest struct {
	Type            InterviewType   `json:"type" validate:"required"`
	ScheduledDate   string          `json:"scheduled_date" validate:"required"`
	ScheduledTime   string          `json:"scheduled_time" validate:"required"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
	Timezone        string          `json:"timezone,omitempty"`
	IsOnline        *bool           `json:"is_online" validate:"required"`
	Online          *OnlineDetails  `json:"online,omitempty"`
	Offline         *OfflineDetails `json:"offline,omitempty"`
	Interviewers    []string        `json:"interviewers,omitempty"`
	Instructions    string          `json:"instructions,omitempty"`
	InternalNotes   string          `json:"internal_notes,omitempty"`
}

// Validate validates the ScheduleInterviewRequest using the validator.
func (r *ScheduleInterviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RescheduleInterviewRequest is the input for rescheduling an interview.
type RescheduleInterviewRequest struct {
	NewDate string `json:"new_date" validate:"required"`
	NewTime string `json:"new_time" validate:"required"`
	Reason  string `json:"reason" validate:"required"`
}

// Validate validates the RescheduleInterviewRequest using the validator.
func (r *RescheduleInterviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// SubmitFeedbackRequest is the input for attaching interviewer feedback.
type SubmitFeedbackRequest struct {
	Rating         int      `json:"rating" validate:"required,min=1,max=5"`
	Strengths      []string `json:"strengths,omitempty"`
	Improvements   []string `json:"improvements,omitempty"`
	Recommendation string   `json:"recommendation" validate:"required"`
	Comments       string   `json:"comments,omitempty"`
}

// Validate validates the SubmitFeedbackRequest using the validator.
func (r *SubmitFeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
