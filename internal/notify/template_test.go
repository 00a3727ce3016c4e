package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyflow/internal/types"
)

func TestRender_ApplicationReceived(t *testing.T) {
	subject, body, err := Render(types.EventApplicationReceived, TemplateData{
		RecipientName: "Priya Sharma",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme Corp",
	})

	require.NoError(t, err)
	assert.Contains(t, subject, "Backend Engineer")
	assert.Contains(t, subject, "Acme Corp")
	assert.Contains(t, body, "Priya Sharma")
	assert.Contains(t, body, "Thank you for applying")
}

func TestRender_InterviewScheduledWithMeetingLink(t *testing.T) {
	subject, body, err := Render(types.EventInterviewScheduled, TemplateData{
		RecipientName: "Priya Sharma",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme Corp",
		Extra: map[string]string{
			FieldInterviewDate: "2026-09-15",
			FieldInterviewTime: "14:00",
			FieldInterviewType: "technical",
			FieldMeetingLink:   "https://meet.example.com/abc",
		},
	})

	require.NoError(t, err)
	assert.Contains(t, subject, "Interview scheduled")
	assert.Contains(t, body, "2026-09-15")
	assert.Contains(t, body, "14:00")
	assert.Contains(t, body, "https://meet.example.com/abc")
	assert.NotContains(t, body, "Location:")
}

func TestRender_InterviewScheduledOffline(t *testing.T) {
	_, body, err := Render(types.EventInterviewScheduled, TemplateData{
		RecipientName: "Priya Sharma",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme Corp",
		Extra: map[string]string{
			FieldInterviewDate: "2026-09-15",
			FieldInterviewTime: "14:00",
			FieldLocation:      "4th floor, Tower B",
		},
	})

	require.NoError(t, err)
	assert.Contains(t, body, "4th floor, Tower B")
	assert.NotContains(t, body, "Meeting link")
}

func TestRender_InterviewRescheduledShowsBothSlots(t *testing.T) {
	_, body, err := Render(types.EventInterviewRescheduled, TemplateData{
		RecipientName: "Priya Sharma",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme Corp",
		Extra: map[string]string{
			FieldPreviousDate:  "2026-09-15",
			FieldPreviousTime:  "14:00",
			FieldInterviewDate: "2026-09-18",
			FieldInterviewTime: "10:30",
		},
	})

	require.NoError(t, err)
	assert.Contains(t, body, "2026-09-15")
	assert.Contains(t, body, "2026-09-18")
	assert.Contains(t, body, "10:30")
}

func TestRender_EscapesHTMLInBody(t *testing.T) {
	_, body, err := Render(types.EventApplicationReceived, TemplateData{
		RecipientName: "<script>alert(1)</script>",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme Corp",
	})

	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestRender_UnknownEvent(t *testing.T) {
	_, _, err := Render(types.EventType("SOMETHING_ELSE"), TemplateData{})
	assert.Error(t, err)
}

func TestRender_NilExtra(t *testing.T) {
	// Templates that index Extra must tolerate a nil map.
	_, _, err := Render(types.EventInterviewScheduled, TemplateData{
		RecipientName: "Priya Sharma",
		JobTitle:      "Backend Engineer",
		CompanyName:   "Acme Corp",
	})
	assert.NoError(t, err)
}

func TestHasTemplate_AllStatusEventsCovered(t *testing.T) {
	for _, status := range types.KnownStatuses {
		event, ok := types.EventForStatus(status)
		if !ok {
			continue
		}
		assert.True(t, HasTemplate(event), "no template for event %s (status %s)", event, status)
	}
	assert.True(t, HasTemplate(types.EventJobAlert))
	assert.False(t, HasTemplate(types.EventType("UNKNOWN")))
}
