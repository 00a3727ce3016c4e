package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/applyflow/internal/application"
	"github.com/jonathan/applyflow/internal/types"
)

// applyRequest is the body of POST /applications.
type applyRequest struct {
	JobID            uuid.UUID `json:"job_id"`
	UserID           uuid.UUID `json:"user_id"`
	CoverLetter      string    `json:"cover_letter,omitempty"`
	SendNotification *bool     `json:"send_notification,omitempty"` // default true
}

// updateStatusRequest is the body of PATCH /applications/{id}/status.
type updateStatusRequest struct {
	NewStatus        types.Status `json:"new_status"`
	Notes            string       `json:"notes,omitempty"`
	ChangedBy        *uuid.UUID   `json:"changed_by,omitempty"`
	SendNotification *bool        `json:"send_notification,omitempty"` // default true
}

// notifyDefault resolves the send_notification field, defaulting to true.
func notifyDefault(flag *bool) bool {
	return flag == nil || *flag
}

// handleApply creates an application for a (job, applicant) pair.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.JobID == uuid.Nil || req.UserID == uuid.Nil {
		s.errorResponse(w, http.StatusBadRequest, "job_id and user_id are required")
		return
	}

	app, err := s.apps.Apply(r.Context(), req.JobID, req.UserID, req.CoverLetter, notifyDefault(req.SendNotification))
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, app)
}

// handleGetApplication retrieves an application with its ledger and
// interviews populated.
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	app, err := s.apps.Get(r.Context(), applicationID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleUpdateStatus performs a status transition.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	app, err := s.apps.Transition(r.Context(), applicationID, req.NewStatus, application.TransitionOptions{
		Notes:     req.Notes,
		ChangedBy: req.ChangedBy,
		Notify:    notifyDefault(req.SendNotification),
	})
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, app)
}

// handleDispatchAlerts triggers the job-alert batch dispatcher for a job.
// Fire-and-forget: the response does not wait for delivery.
func (s *Server) handleDispatchAlerts(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	job, err := s.db.GetJobPosting(r.Context(), jobID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	s.dispatcher.DispatchAsync(*job)
	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": "dispatching"})
}

// handleListNotifications lists a user's in-app notifications.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	limit := parseQueryInt(r, "limit", 50, 200)

	notifications, err := s.db.ListInAppNotifications(r.Context(), userID, limit)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"limit":         limit,
	})
}

// handleListJobApplications lists every application for one job posting,
// newest first.
func (s *Server) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	apps, err := s.db.ListApplicationsByJob(r.Context(), jobID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"applications": apps,
		"count":        len(apps),
	})
}

// handleDeleteApplication removes an application and its embedded documents.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	if _, err := s.apps.Get(r.Context(), applicationID); err != nil {
		s.serviceError(w, err)
		return
	}
	if err := s.db.DeleteApplication(r.Context(), applicationID); err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleMarkNotificationRead flags one in-app notification as read.
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(r.PathValue("notification_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := s.db.MarkNotificationRead(r.Context(), notificationID); err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "read"})
}

// alertPreferenceRequest is the body of PUT /users/{id}/alert-preferences.
type alertPreferenceRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Categories []string `json:"categories,omitempty"`
	Locations  []string `json:"locations,omitempty"`
	JobTypes   []string `json:"job_types,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	MinSalary  int      `json:"min_salary,omitempty"`
	Enabled    *bool    `json:"enabled,omitempty"` // default true
}

// handleUpsertAlertPreference creates or replaces a user's job-alert
// subscription.
func (s *Server) handleUpsertAlertPreference(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req alertPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" {
		s.errorResponse(w, http.StatusBadRequest, "email is required")
		return
	}

	pref := types.AlertPreference{
		UserID:     userID,
		Name:       req.Name,
		Email:      req.Email,
		Categories: req.Categories,
		Locations:  req.Locations,
		JobTypes:   req.JobTypes,
		Keywords:   req.Keywords,
		MinSalary:  req.MinSalary,
		Enabled:    req.Enabled == nil || *req.Enabled,
		UpdatedAt:  time.Now().UTC(),
	}
	if err := s.db.UpsertAlertPreference(r.Context(), pref); err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, pref)
}

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}
