package fetcher

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/config"
	"github.com/dynamic-campus/leadgen-cli/internal/model"
	"github.com/dynamic-campus/leadgen-cli/internal/scorer"
	"github.com/dynamic-campus/leadgen-cli/pkg/serpapi"
)

// higherEdIndicators filter Google Jobs results down to institutional
// employers; staffing agencies and vendors advertising "university clients"
// are excluded by requiring the indicator in the employer name itself.
var higherEdIndicators = []string{
	"university", "college", "institute", "academy", "school",
}

// maxStoredDescription bounds how much posting text is persisted per job.
const maxStoredDescription = 1000

// JobFetcher pulls higher-ed IT job postings via SerpAPI and scores them as
// hiring signals.
type JobFetcher struct {
	client  serpapi.Client
	cfg     config.JobsConfig
	scoring scorer.Config
	now     func() time.Time
}

// NewJobFetcher builds a job fetcher.
func NewJobFetcher(client serpapi.Client, cfg config.JobsConfig, scoring scorer.Config) *JobFetcher {
	return &JobFetcher{client: client, cfg: cfg, scoring: scoring, now: time.Now}
}

// FetchJobs runs every configured query sequentially (SerpAPI meters per
// request) and returns deduplicated, scored postings stamped with today's
// scrape date. A failed query is logged and skipped; the remaining queries
// still run.
func (f *JobFetcher) FetchJobs(ctx context.Context) ([]model.JobPosting, error) {
	today := f.now().Format(model.JobDateLayout)

	seen := map[string]bool{}
	var jobs []model.JobPosting
	for _, query := range f.cfg.Queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, err := f.client.SearchJobs(ctx, query, f.cfg.MaxPerQuery)
		if err != nil {
			zap.S().Warnw("job query failed", "query", query, "error", err)
			continue
		}

		for _, r := range results {
			if !isHigherEdEmployer(r.CompanyName) {
				continue
			}
			jobID := model.NewJobID(r.Title, r.CompanyName)
			if seen[jobID] {
				continue
			}
			seen[jobID] = true

			description := r.Description
			if len(description) > maxStoredDescription {
				description = description[:maxStoredDescription]
			}

			jobs = append(jobs, model.JobPosting{
				JobID:           jobID,
				Title:           r.Title,
				Company:         r.CompanyName,
				Summary:         summarizeDescription(r.Description),
				Description:     description,
				Location:        r.Location,
				URL:             r.ApplyLink,
				Source:          sourceName(r.Via),
				ConfidenceScore: f.scoring.ComputeJobConfidence(r.Title, r.Description),
				DateScraped:     today,
			})
		}
	}

	zap.S().Infow("job fetch complete", "queries", len(f.cfg.Queries), "postings", len(jobs))
	return jobs, nil
}

func isHigherEdEmployer(company string) bool {
	lower := strings.ToLower(company)
	for _, indicator := range higherEdIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// summarizeDescription produces a short digest-friendly summary: the first
// two sentences, capped at 300 characters.
func summarizeDescription(description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return ""
	}

	var summary string
	sentences := strings.SplitAfterN(description, ". ", 3)
	if len(sentences) >= 2 {
		summary = sentences[0] + sentences[1]
	} else {
		summary = sentences[0]
	}
	summary = strings.TrimSpace(summary)
	if len(summary) > 300 {
		summary = strings.TrimSpace(summary[:300])
	}
	return summary
}

func sourceName(via string) string {
	via = strings.TrimSpace(strings.TrimPrefix(via, "via "))
	if via == "" {
		return "Google Jobs"
	}
	return via
}
