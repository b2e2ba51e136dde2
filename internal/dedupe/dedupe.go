// Package dedupe keeps the daily digest from re-surfacing institutions the
// firm already knows about: recently emitted leads, institutions under
// contract, and job postings past their freshness window.
package dedupe

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// DefaultDuplicateWindowDays is how long an emitted lead suppresses the same
// institution+lead_type pair.
const DefaultDuplicateWindowDays = 180

// DefaultJobMaxAgeDays is how long a scraped job posting stays usable as
// hiring evidence.
const DefaultJobMaxAgeDays = 30

// IsDuplicate reports whether history already holds an opportunity for the
// same institution and lead type within windowDays of now. Comparison is
// case-insensitive on institution and calendar-day granular on dates. History
// records whose date fails to parse never block a new lead: a corrupt row in
// the history file must not silently suppress output forever.
func IsDuplicate(institution string, leadType model.LeadType, history []model.Opportunity, windowDays int, now time.Time) bool {
	if windowDays <= 0 {
		windowDays = DefaultDuplicateWindowDays
	}
	today := truncateToDay(now)

	for _, prior := range history {
		if !strings.EqualFold(prior.Institution, institution) || prior.LeadType != leadType {
			continue
		}
		identified, ok := prior.IdentifiedOn()
		if !ok {
			zap.S().Debugw("history record has unparseable date, ignoring for dedupe",
				"lead_id", prior.LeadID, "date", prior.DateIdentified)
			continue
		}
		age := int(today.Sub(truncateToDay(identified)).Hours() / 24)
		if age >= 0 && age <= windowDays {
			return true
		}
	}
	return false
}

// IsKnownClient reports whether institution matches any known client by
// bidirectional case-insensitive substring. Deliberately looser than the
// similarity matcher: better to drop a lead than to re-solicit a client.
func IsKnownClient(institution string, clients []model.KnownClient) bool {
	inst := strings.ToLower(strings.TrimSpace(institution))
	if inst == "" {
		return false
	}
	for _, client := range clients {
		name := strings.ToLower(strings.TrimSpace(client.Name))
		if name == "" {
			continue
		}
		if strings.Contains(inst, name) || strings.Contains(name, inst) {
			return true
		}
	}
	return false
}

// RetireStaleJobPostings drops postings scraped more than maxAgeDays before
// now. Postings with missing or unparseable scrape dates are dropped too:
// unlike lead history, keeping stale job content indefinitely is worse than
// losing a record.
func RetireStaleJobPostings(jobs []model.JobPosting, maxAgeDays int, now time.Time) []model.JobPosting {
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultJobMaxAgeDays
	}
	today := truncateToDay(now)

	kept := make([]model.JobPosting, 0, len(jobs))
	for _, job := range jobs {
		scraped, ok := job.ScrapedOn()
		if !ok {
			zap.S().Debugw("dropping job posting with unparseable scrape date",
				"job_id", job.JobID, "date", job.DateScraped)
			continue
		}
		age := int(today.Sub(truncateToDay(scraped)).Hours() / 24)
		if age > maxAgeDays {
			continue
		}
		kept = append(kept, job)
	}
	return kept
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
