package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsKnownStatus(t *testing.T) {
	for _, s := range KnownStatuses {
		assert.True(t, IsKnownStatus(s), "%s should be known", s)
	}
	assert.False(t, IsKnownStatus(Status("On Hold")))
	assert.False(t, IsKnownStatus(Status("pending")), "statuses are case sensitive")
	assert.False(t, IsKnownStatus(Status("")))
}

func TestEventForStatus(t *testing.T) {
	event, ok := EventForStatus(StatusShortlisted)
	require.True(t, ok)
	assert.Equal(t, EventApplicationShortlisted, event)

	// Terminal applicant-driven statuses carry no email.
	for _, s := range []Status{StatusWithdrawn, StatusOfferAccepted, StatusOfferDeclined, StatusInterviewCompleted} {
		_, ok := EventForStatus(s)
		assert.False(t, ok, "%s should not trigger an email", s)
	}
}

func TestLastHistoryEntry(t *testing.T) {
	app := &Application{}
	assert.Nil(t, app.LastHistoryEntry())

	app.StatusHistory = []StatusHistoryEntry{
		{Status: StatusPending},
		{Status: StatusReviewed},
	}
	entry := app.LastHistoryEntry()
	require.NotNil(t, entry)
	assert.Equal(t, StatusReviewed, entry.Status)

	// Returns a pointer into the slice so delivery outcomes can be set.
	entry.NotificationSent = true
	assert.True(t, app.StatusHistory[1].NotificationSent)
}

func TestFindInterview(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	app := &Application{Interviews: []Interview{{ID: first}, {ID: second}}}

	iv := app.FindInterview(second)
	require.NotNil(t, iv)
	assert.Equal(t, second, iv.ID)

	assert.Nil(t, app.FindInterview(uuid.New()))

	// The returned pointer aliases the slice element.
	iv.Status = InterviewCancelled
	assert.Equal(t, InterviewCancelled, app.Interviews[1].Status)
}

func TestScheduleInterviewRequestValidate(t *testing.T) {
	online := true
	valid := &ScheduleInterviewRequest{
		Type:          InterviewTechnical,
		ScheduledDate: "2026-09-15",
		ScheduledTime: "14:00",
		IsOnline:      &online,
	}
	assert.NoError(t, valid.Validate())

	missingMode := &ScheduleInterviewRequest{
		Type:          InterviewTechnical,
		ScheduledDate: "2026-09-15",
		ScheduledTime: "14:00",
	}
	assert.Error(t, missingMode.Validate(), "is_online must be explicit")

	// An explicit false passes required validation on the pointer.
	offline := false
	valid.IsOnline = &offline
	assert.NoError(t, valid.Validate())
}

func TestSubmitFeedbackRequestValidate(t *testing.T) {
	assert.NoError(t, (&SubmitFeedbackRequest{Rating: 3, Recommendation: "Hire"}).Validate())
	assert.Error(t, (&SubmitFeedbackRequest{Rating: 0, Recommendation: "Hire"}).Validate())
	assert.Error(t, (&SubmitFeedbackRequest{Rating: 6, Recommendation: "Hire"}).Validate())
	assert.Error(t, (&SubmitFeedbackRequest{Rating: 3}).Validate())
}
