package notify

import (
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/jonathan/applyflow/internal/types"
)

// TemplateData is the structured input to the template renderer. Extra
// carries event-specific fields such as interview slots or meeting links.
type TemplateData struct {
	RecipientName string
	JobTitle      string
	CompanyName   string
	Extra         map[string]string
}

// Extra keys recognized by the interview and alert templates.
const (
	FieldInterviewDate = "interview_date"
	FieldInterviewTime = "interview_time"
	FieldInterviewType = "interview_type"
	FieldMeetingLink   = "meeting_link"
	FieldLocation      = "location"
	FieldPreviousDate  = "previous_date"
	FieldPreviousTime  = "previous_time"
	FieldJobLocation   = "job_location"
	FieldSalaryRange   = "salary_range"
)

var subjectTemplates = map[types.EventType]string{
	types.EventApplicationReceived:    "Application received – {{.JobTitle}} at {{.CompanyName}}",
	types.EventApplicationReviewed:    "Your application is under review – {{.JobTitle}}",
	types.EventApplicationShortlisted: "You have been shortlisted – {{.JobTitle}} at {{.CompanyName}}",
	types.EventInterviewScheduled:     "Interview scheduled – {{.JobTitle}} at {{.CompanyName}}",
	types.EventInterviewRescheduled:   "Interview rescheduled – {{.JobTitle}} at {{.CompanyName}}",
	types.EventApplicationSelected:    "Congratulations! You have been selected – {{.JobTitle}}",
	types.EventOfferExtended:          "Job offer – {{.JobTitle}} at {{.CompanyName}}",
	types.EventApplicationRejected:    "Update on your application – {{.JobTitle}}",
	types.EventJobAlert:               "New job matching your alerts: {{.JobTitle}} at {{.CompanyName}}",
}

var bodyTemplates = map[types.EventType]string{
	types.EventApplicationReceived: `<p>Dear {{.RecipientName}},</p>
<p>Thank you for applying for the position of <strong>{{.JobTitle}}</strong> at {{.CompanyName}}.
We have received your application and will review it shortly.</p>
<p>You will be notified as your application progresses.</p>`,

	types.EventApplicationReviewed: `<p>Dear {{.RecipientName}},</p>
<p>Your application for <strong>{{.JobTitle}}</strong> at {{.CompanyName}} has been reviewed
and is moving through our selection process.</p>`,

	types.EventApplicationShortlisted: `<p>Dear {{.RecipientName}},</p>
<p>Good news! You have been shortlisted for <strong>{{.JobTitle}}</strong> at {{.CompanyName}}.</p>
<p>Our team will be in touch with the next steps.</p>`,

	types.EventInterviewScheduled: `<p>Dear {{.RecipientName}},</p>
<p>An interview has been scheduled for your application to <strong>{{.JobTitle}}</strong> at {{.CompanyName}}.</p>
<ul>
<li>Date: {{index .Extra "interview_date"}}</li>
<li>Time: {{index .Extra "interview_time"}}</li>
{{if index .Extra "interview_type"}}<li>Type: {{index .Extra "interview_type"}}</li>{{end}}
{{if index .Extra "meeting_link"}}<li>Meeting link: <a href="{{index .Extra "meeting_link"}}">{{index .Extra "meeting_link"}}</a></li>{{end}}
{{if index .Extra "location"}}<li>Location: {{index .Extra "location"}}</li>{{end}}
</ul>
<p>Please be available at the scheduled time. Good luck!</p>`,

	types.EventInterviewRescheduled: `<p>Dear {{.RecipientName}},</p>
<p>Your interview for <strong>{{.JobTitle}}</strong> at {{.CompanyName}} has been rescheduled.</p>
<p>Previous slot: {{index .Extra "previous_date"}} at {{index .Extra "previous_time"}}<br>
New slot: {{index .Extra "interview_date"}} at {{index .Extra "interview_time"}}</p>
{{if index .Extra "meeting_link"}}<p>Meeting link: <a href="{{index .Extra "meeting_link"}}">{{index .Extra "meeting_link"}}</a></p>{{end}}
<p>We apologize for any inconvenience.</p>`,

	types.EventApplicationSelected: `<p>Dear {{.RecipientName}},</p>
<p>Congratulations! You have been selected for the position of <strong>{{.JobTitle}}</strong> at {{.CompanyName}}.</p>
<p>Our team will contact you soon with further details.</p>`,

	types.EventOfferExtended: `<p>Dear {{.RecipientName}},</p>
<p>We are pleased to extend you an offer for the position of <strong>{{.JobTitle}}</strong> at {{.CompanyName}}.</p>
<p>Please review the offer details and respond at your earliest convenience.</p>`,

	types.EventApplicationRejected: `<p>Dear {{.RecipientName}},</p>
<p>Thank you for your interest in <strong>{{.JobTitle}}</strong> at {{.CompanyName}}.</p>
<p>After careful consideration, we have decided to move forward with other candidates.
We encourage you to apply for future openings that match your profile.</p>`,

	types.EventJobAlert: `<p>Hi {{.RecipientName}},</p>
<p>A new job matching your alert preferences has been posted:</p>
<p><strong>{{.JobTitle}}</strong> at {{.CompanyName}}</p>
<ul>
{{if index .Extra "job_location"}}<li>Location: {{index .Extra "job_location"}}</li>{{end}}
{{if index .Extra "salary_range"}}<li>Salary: {{index .Extra "salary_range"}}</li>{{end}}
</ul>
<p>Visit the portal to view the full posting and apply.</p>`,
}

var (
	parsedSubjects = map[types.EventType]*texttemplate.Template{}
	parsedBodies   = map[types.EventType]*template.Template{}
)

func init() {
	for event, tmpl := range subjectTemplates {
		parsedSubjects[event] = texttemplate.Must(texttemplate.New(string(event) + "_subject").Parse(tmpl))
	}
	for event, tmpl := range bodyTemplates {
		parsedBodies[event] = template.Must(template.New(string(event) + "_body").Parse(tmpl))
	}
}

// Render maps an event type and structured data to a rendered subject and
// HTML body. It is a pure function: no side effects and no I/O.
func Render(event types.EventType, data TemplateData) (subject, body string, err error) {
	subjectTmpl, ok := parsedSubjects[event]
	if !ok {
		return "", "", fmt.Errorf("no template for event type %q", event)
	}
	bodyTmpl := parsedBodies[event]

	if data.Extra == nil {
		data.Extra = map[string]string{}
	}

	var subjectBuf strings.Builder
	if err := subjectTmpl.Execute(&subjectBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render subject for %s: %w", event, err)
	}

	var bodyBuf strings.Builder
	if err := bodyTmpl.Execute(&bodyBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to render body for %s: %w", event, err)
	}

	return subjectBuf.String(), bodyBuf.String(), nil
}

// HasTemplate reports whether an email template exists for the event type.
func HasTemplate(event types.EventType) bool {
	_, ok := parsedSubjects[event]
	return ok
}
