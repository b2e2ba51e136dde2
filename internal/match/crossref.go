package match

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// crossRefWindow bounds how far apart an article and a job posting may be
// scraped and still corroborate each other.
const crossRefWindow = 30 * 24 * time.Hour

// CrossReference is an institution that appears in both news coverage and
// job-posting data within the corroboration window.
type CrossReference struct {
	Institution    string
	JobInstitution string
	Similarity     float64
	Articles       []model.EvidenceItem
	Jobs           []model.JobPosting
}

// FindCrossReferences pairs article institutions against job-posting
// companies and returns every pair whose name similarity clears threshold
// and whose dates fall within the corroboration window. Items without a
// usable date never block a match: absence of timestamps is treated as
// recent, not stale.
func FindCrossReferences(articles map[string][]model.EvidenceItem, jobs []model.JobPosting, threshold float64) []CrossReference {
	if threshold <= 0 {
		threshold = DefaultClusterThreshold
	}

	byCompany := map[string][]model.JobPosting{}
	companies := make([]string, 0, len(jobs))
	for _, job := range jobs {
		if job.Company == "" {
			continue
		}
		if _, seen := byCompany[job.Company]; !seen {
			companies = append(companies, job.Company)
		}
		byCompany[job.Company] = append(byCompany[job.Company], job)
	}

	institutions := make([]string, 0, len(articles))
	for inst := range articles {
		institutions = append(institutions, inst)
	}
	sort.Strings(institutions)

	var matches []CrossReference
	for _, inst := range institutions {
		for _, company := range companies {
			sim := Similarity(inst, company)
			if sim < threshold {
				continue
			}
			arts := articles[inst]
			postings := byCompany[company]
			if !datesCorroborate(arts, postings) {
				zap.S().Debugw("cross-reference outside date window",
					"institution", inst, "company", company)
				continue
			}
			matches = append(matches, CrossReference{
				Institution:    inst,
				JobInstitution: company,
				Similarity:     sim,
				Articles:       arts,
				Jobs:           postings,
			})
		}
	}
	return matches
}

// datesCorroborate reports whether any article date and job date fall within
// the corroboration window of each other. When either side has no parseable
// dates at all, the pair passes.
func datesCorroborate(articles []model.EvidenceItem, jobs []model.JobPosting) bool {
	var articleDates, jobDates []time.Time
	for _, a := range articles {
		if !a.PublishedAt.IsZero() {
			articleDates = append(articleDates, a.PublishedAt)
		}
	}
	for _, j := range jobs {
		if scraped, ok := j.ScrapedOn(); ok {
			jobDates = append(jobDates, scraped)
		}
	}
	if len(articleDates) == 0 || len(jobDates) == 0 {
		return true
	}

	for _, ad := range articleDates {
		for _, jd := range jobDates {
			gap := ad.Sub(jd)
			if gap < 0 {
				gap = -gap
			}
			if gap <= crossRefWindow {
				return true
			}
		}
	}
	return false
}
