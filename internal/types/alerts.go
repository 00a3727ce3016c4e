package types

import (
	"time"

	"github.com/google/uuid"
)

// AlertPreference is one user's job-alert subscription. A job matches a
// preference only if every dimension the user has configured is satisfied;
// unset dimensions are not checked.
type AlertPreference struct {
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Categories []string  `json:"categories,omitempty"`
	Locations  []string  `json:"locations,omitempty"`
	JobTypes   []string  `json:"job_types,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	MinSalary  int       `json:"min_salary,omitempty"` // 0 means no threshold
	Enabled    bool      `json:"enabled"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// JobPosting is the view of a newly created job the alert dispatcher matches
// preferences against.
type JobPosting struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	CompanyName string    `json:"company_name"`
	Category    string    `json:"category,omitempty"`
	Location    string    `json:"location,omitempty"`
	JobType     string    `json:"job_type,omitempty"`
	Description string    `json:"description,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	SalaryRange string    `json:"salary_range,omitempty"` // free text, e.g. "BDT 40,000 - 60,000"
	CreatedAt   time.Time `json:"created_at"`
}
