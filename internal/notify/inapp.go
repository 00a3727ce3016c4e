package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/types"
)

// InAppStore persists in-app notification records.
type InAppStore interface {
	CreateInAppNotification(ctx context.Context, n types.InAppNotification) error
}

// InAppNotifier creates in-app notification records for applicants. It is
// fire-and-forget: persistence failures are logged and swallowed, never
// surfaced to the triggering operation.
type InAppNotifier struct {
	store InAppStore
	log   *zap.SugaredLogger
}

// NewInAppNotifier creates an in-app notifier over the given store.
func NewInAppNotifier(store InAppStore, log *zap.SugaredLogger) *InAppNotifier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &InAppNotifier{store: store, log: log}
}

// NotifyStatusChange records an in-app notification for a status change,
// independent of the email outcome.
func (n *InAppNotifier) NotifyStatusChange(ctx context.Context, userID uuid.UUID, status types.Status, applicationID uuid.UUID, job types.JobSummary) {
	title, message, priority := inAppContent(status, job)

	event, _ := types.EventForStatus(status)
	record := types.InAppNotification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    event,
		Title:   title,
		Message: message,
		Data: map[string]string{
			"application_id": applicationID.String(),
			"status":         string(status),
		},
		Link:      fmt.Sprintf("/applications/%s", applicationID),
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}

	if err := n.store.CreateInAppNotification(ctx, record); err != nil {
		n.log.Warnw("failed to create in-app notification",
			"user_id", userID,
			"application_id", applicationID,
			"status", status,
			"error", err)
	}
}

// inAppContent maps a status to the title, message, and priority shown in
// the applicant's notification feed. Selected is high priority, Rejected is
// medium, everything else low.
func inAppContent(status types.Status, job types.JobSummary) (title, message string, priority types.Priority) {
	role := fmt.Sprintf("%s at %s", job.Title, job.CompanyName)

	switch status {
	case types.StatusSelected:
		return "You have been selected!",
			fmt.Sprintf("Congratulations! You have been selected for %s.", role),
			types.PriorityHigh
	case types.StatusRejected:
		return "Application update",
			fmt.Sprintf("Your application for %s was not successful this time.", role),
			types.PriorityMedium
	case types.StatusShortlisted:
		return "You have been shortlisted",
			fmt.Sprintf("You have been shortlisted for %s.", role),
			types.PriorityLow
	case types.StatusInterviewScheduled:
		return "Interview scheduled",
			fmt.Sprintf("An interview has been scheduled for %s.", role),
			types.PriorityLow
	case types.StatusOfferExtended:
		return "Offer extended",
			fmt.Sprintf("An offer has been extended for %s.", role),
			types.PriorityLow
	default:
		return "Application status updated",
			fmt.Sprintf("Your application for %s is now %s.", role, status),
			types.PriorityLow
	}
}
