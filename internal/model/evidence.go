package model

import "time"

// OriginKind distinguishes the two classes of raw evidence.
type OriginKind string

const (
	OriginArticle    OriginKind = "article"
	OriginJobPosting OriginKind = "job_posting"
)

// EvidenceItem is one fetched article or job posting. Items are immutable
// once fetched; the analysis core consumes them read-only.
type EvidenceItem struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Summary     string     `json:"summary"`
	SourceName  string     `json:"source_name"`
	PublishedAt time.Time  `json:"published_at"`
	OriginKind  OriginKind `json:"origin_kind"`
}

// Source converts an evidence item into a citable opportunity source.
func (e EvidenceItem) Source() Source {
	return Source{Title: e.Title, URL: e.URL}
}

// CombinedText returns title and summary joined for keyword scanning.
func (e EvidenceItem) CombinedText() string {
	return e.Title + " " + e.Summary
}
