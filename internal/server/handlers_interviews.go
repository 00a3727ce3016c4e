package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/applyflow/internal/types"
)

// scheduleInterviewBody wraps the interview spec with actor and
// notification controls.
type scheduleInterviewBody struct {
	types.ScheduleInterviewRequest
	ScheduledBy      *uuid.UUID `json:"scheduled_by,omitempty"`
	SendNotification *bool      `json:"send_notification,omitempty"` // default true
}

// rescheduleInterviewBody wraps the reschedule request.
type rescheduleInterviewBody struct {
	types.RescheduleInterviewRequest
	RescheduledBy    *uuid.UUID `json:"rescheduled_by,omitempty"`
	SendNotification *bool      `json:"send_notification,omitempty"` // default true
}

// cancelInterviewBody is the body of the cancel endpoint.
type cancelInterviewBody struct {
	Reason      string     `json:"reason,omitempty"`
	CancelledBy *uuid.UUID `json:"cancelled_by,omitempty"`
}

// submitFeedbackBody wraps the feedback with the authenticated actor.
type submitFeedbackBody struct {
	types.SubmitFeedbackRequest
	SubmittedBy uuid.UUID `json:"submitted_by"`
}

// pathIDs parses the application and interview IDs from the request path.
func pathIDs(r *http.Request) (applicationID, interviewID uuid.UUID, err error) {
	applicationID, err = uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	interviewID, err = uuid.Parse(r.PathValue("interview_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return applicationID, interviewID, nil
}

// handleScheduleInterview schedules a new interview on an application.
func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var body scheduleInterviewBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	app, err := s.interviews.Schedule(r.Context(), applicationID, body.ScheduleInterviewRequest,
		body.ScheduledBy, notifyDefault(body.SendNotification))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

// handleRescheduleInterview moves an interview to a new slot.
func (s *Server) handleRescheduleInterview(w http.ResponseWriter, r *http.Request) {
	applicationID, interviewID, err := pathIDs(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid ID in path")
		return
	}

	var body rescheduleInterviewBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	app, err := s.interviews.Reschedule(r.Context(), applicationID, interviewID,
		body.RescheduleInterviewRequest, body.RescheduledBy, notifyDefault(body.SendNotification))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleCancelInterview cancels an interview.
func (s *Server) handleCancelInterview(w http.ResponseWriter, r *http.Request) {
	applicationID, interviewID, err := pathIDs(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid ID in path")
		return
	}

	var body cancelInterviewBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	app, err := s.interviews.Cancel(r.Context(), applicationID, interviewID, body.Reason, body.CancelledBy)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleSubmitFeedback attaches interviewer feedback to an interview.
func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	applicationID, interviewID, err := pathIDs(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid ID in path")
		return
	}

	var body submitFeedbackBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	app, err := s.interviews.SubmitFeedback(r.Context(), applicationID, interviewID,
		body.SubmitFeedbackRequest, body.SubmittedBy)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}
