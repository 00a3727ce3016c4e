package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/applyflow/internal/types"
)

func sampleJob() types.JobPosting {
	return types.JobPosting{
		Title:       "Senior Backend Engineer",
		CompanyName: "Acme Corp",
		Category:    "Engineering",
		Location:    "Dhaka, Bangladesh",
		JobType:     "Full-time",
		Description: "Build Go services on Kubernetes",
		Skills:      []string{"Go", "PostgreSQL"},
		SalaryRange: "BDT 80,000 - 120,000",
	}
}

func TestMatches_EmptyPreferenceMatchesEverything(t *testing.T) {
	assert.True(t, Matches(types.AlertPreference{}, sampleJob()))
}

func TestMatches_CategoryCaseInsensitive(t *testing.T) {
	pref := types.AlertPreference{Categories: []string{"engineering"}}
	assert.True(t, Matches(pref, sampleJob()))

	pref.Categories = []string{"Marketing"}
	assert.False(t, Matches(pref, sampleJob()))
}

func TestMatches_LocationSubstringEitherDirection(t *testing.T) {
	job := sampleJob()

	// Preference narrower than the job's location string.
	assert.True(t, Matches(types.AlertPreference{Locations: []string{"Dhaka"}}, job))

	// Preference broader than the job's location string.
	job.Location = "Dhaka"
	assert.True(t, Matches(types.AlertPreference{Locations: []string{"Dhaka, Bangladesh"}}, job))

	assert.False(t, Matches(types.AlertPreference{Locations: []string{"Chattogram"}}, job))
}

func TestMatches_KeywordsSearchAllFields(t *testing.T) {
	job := sampleJob()

	assert.True(t, Matches(types.AlertPreference{Keywords: []string{"kubernetes"}}, job), "description")
	assert.True(t, Matches(types.AlertPreference{Keywords: []string{"backend"}}, job), "title")
	assert.True(t, Matches(types.AlertPreference{Keywords: []string{"postgresql"}}, job), "skills")
	assert.True(t, Matches(types.AlertPreference{Keywords: []string{"acme"}}, job), "company")
	assert.False(t, Matches(types.AlertPreference{Keywords: []string{"rust", "erlang"}}, job))
}

func TestMatches_MinSalary(t *testing.T) {
	job := sampleJob()

	assert.True(t, Matches(types.AlertPreference{MinSalary: 50000}, job))
	assert.False(t, Matches(types.AlertPreference{MinSalary: 100000}, job),
		"lower bound of the range is what is compared")

	// No parseable number in the salary text fails a salary-constrained match.
	job.SalaryRange = "Negotiable"
	assert.False(t, Matches(types.AlertPreference{MinSalary: 1}, job))
	assert.True(t, Matches(types.AlertPreference{}, job))
}

func TestMatches_AllDimensionsMustHold(t *testing.T) {
	pref := types.AlertPreference{
		Categories: []string{"Engineering"},
		Locations:  []string{"Dhaka"},
		JobTypes:   []string{"Full-time"},
		Keywords:   []string{"go"},
		MinSalary:  50000,
	}
	assert.True(t, Matches(pref, sampleJob()))

	job := sampleJob()
	job.JobType = "Internship"
	assert.False(t, Matches(pref, job))
}

func TestExtractSalary(t *testing.T) {
	cases := []struct {
		in    string
		value int
		ok    bool
	}{
		{"BDT 40,000 - 60,000", 40000, true},
		{"upto 50k", 50, true},
		{"120000", 120000, true},
		{"Negotiable", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		value, ok := ExtractSalary(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.value, value, "input %q", tc.in)
	}
}
