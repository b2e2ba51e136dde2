package model

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// JobPosting is a scraped higher-ed IT job opening. Postings feed the
// evidence pool and are retired after a freshness window.
type JobPosting struct {
	JobID           string  `json:"job_id"`
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	Summary         string  `json:"summary"`
	Description     string  `json:"description,omitempty"`
	Location        string  `json:"location,omitempty"`
	URL             string  `json:"url"`
	Source          string  `json:"source"`
	ConfidenceScore float64 `json:"confidence_score"`
	DateScraped     string  `json:"date_scraped"`
}

// NewJobID derives a stable posting identifier from title and institution.
func NewJobID(title, company string) string {
	combined := strings.ToLower(strings.TrimSpace(title)) + strings.ToLower(strings.TrimSpace(company))
	sum := md5.Sum([]byte(combined))
	return hex.EncodeToString(sum[:])[:12]
}

// ScrapedOn parses DateScraped. The boolean is false when the date is
// missing or malformed.
func (j JobPosting) ScrapedOn() (time.Time, bool) {
	t, err := time.Parse(JobDateLayout, j.DateScraped)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Evidence converts a posting into an evidence item for lead analysis.
func (j JobPosting) Evidence() EvidenceItem {
	published, _ := j.ScrapedOn()
	return EvidenceItem{
		Title:       j.Title + " at " + j.Company,
		URL:         j.URL,
		Summary:     j.Summary,
		SourceName:  j.Source,
		PublishedAt: published,
		OriginKind:  OriginJobPosting,
	}
}
