// Package alerts implements the job-alert pipeline: matching user alert
// preferences against new job postings and dispatching notification emails
// in throttled batches.
package alerts

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/applyflow/internal/types"
)

// Matches reports whether a job posting satisfies a user's alert
// preference. Every dimension the user has configured must be satisfied;
// unset dimensions are not checked.
func Matches(pref types.AlertPreference, job types.JobPosting) bool {
	if len(pref.Categories) > 0 && !containsFold(pref.Categories, job.Category) {
		return false
	}
	if len(pref.Locations) > 0 && !locationMatches(pref.Locations, job.Location) {
		return false
	}
	if len(pref.JobTypes) > 0 && !containsFold(pref.JobTypes, job.JobType) {
		return false
	}
	if len(pref.Keywords) > 0 && !keywordMatches(pref.Keywords, job) {
		return false
	}
	if pref.MinSalary > 0 {
		salary, ok := ExtractSalary(job.SalaryRange)
		if !ok || salary < pref.MinSalary {
			return false
		}
	}
	return true
}

// containsFold reports whether any list entry equals value, ignoring case.
func containsFold(list []string, value string) bool {
	for _, entry := range list {
		if strings.EqualFold(strings.TrimSpace(entry), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

// locationMatches uses substring matching in either direction, so a
// preference of "Dhaka" matches "Dhaka, Bangladesh" and a preference of
// "Dhaka, Bangladesh" matches "Dhaka".
func locationMatches(locations []string, jobLocation string) bool {
	jobLoc := strings.ToLower(strings.TrimSpace(jobLocation))
	if jobLoc == "" {
		return false
	}
	for _, loc := range locations {
		prefLoc := strings.ToLower(strings.TrimSpace(loc))
		if prefLoc == "" {
			continue
		}
		if strings.Contains(jobLoc, prefLoc) || strings.Contains(prefLoc, jobLoc) {
			return true
		}
	}
	return false
}

// keywordMatches checks free-text keywords against a concatenation of the
// job's title, description, company, and skills.
func keywordMatches(keywords []string, job types.JobPosting) bool {
	haystack := strings.ToLower(strings.Join(append([]string{
		job.Title, job.Description, job.CompanyName,
	}, job.Skills...), " "))
	for _, keyword := range keywords {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

var salaryNumber = regexp.MustCompile(`[0-9][0-9,]*`)

// ExtractSalary leniently parses a free-text salary range ("BDT 40,000 -
// 60,000", "upto 50k") by extracting the first embedded number. The second
// return is false when no number is present.
func ExtractSalary(salaryRange string) (int, bool) {
	match := salaryNumber.FindString(salaryRange)
	if match == "" {
		return 0, false
	}
	value, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return value, true
}
