package match

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// DefaultClusterThreshold is the similarity floor for merging an extracted
// name into an existing cluster.
const DefaultClusterThreshold = 0.8

// maxCandidatesPerItem caps institution names taken from a single evidence item.
const maxCandidatesPerItem = 5

// genericTerms are extractions that name no specific institution.
var genericTerms = map[string]bool{
	"universities": true,
	"colleges":     true,
	"various":      true,
	"many":         true,
	"some":         true,
}

// InstitutionExtractor pulls candidate institution names out of free text.
// Implemented by the labeling oracle.
type InstitutionExtractor interface {
	ExtractInstitutions(ctx context.Context, text string) ([]string, error)
}

// Cluster groups the evidence items believed to reference one institution.
// Institution keeps the first-seen extracted name.
type Cluster struct {
	Institution string
	Items       []model.EvidenceItem
}

// Clusterer groups evidence items by institution using the extractor.
type Clusterer struct {
	extractor InstitutionExtractor
	threshold float64
}

// NewClusterer creates a Clusterer. A non-positive threshold falls back to
// DefaultClusterThreshold.
func NewClusterer(extractor InstitutionExtractor, threshold float64) *Clusterer {
	if threshold <= 0 {
		threshold = DefaultClusterThreshold
	}
	return &Clusterer{extractor: extractor, threshold: threshold}
}

// Cluster maps evidence items to institution clusters. Cluster creation
// follows evidence input order, so the result is deterministic for a fixed
// input sequence. Extraction failures skip the affected item rather than
// failing the pass: an unavailable oracle yields an empty result, which
// callers treat as "no institutions identified".
func (c *Clusterer) Cluster(ctx context.Context, items []model.EvidenceItem) []Cluster {
	var clusters []Cluster

	for _, item := range items {
		names, err := c.extractor.ExtractInstitutions(ctx, item.CombinedText())
		if err != nil {
			zap.L().Warn("match: institution extraction failed, skipping item",
				zap.String("title", item.Title),
				zap.Error(err),
			)
			continue
		}

		if len(names) > maxCandidatesPerItem {
			names = names[:maxCandidatesPerItem]
		}

		// One item can name several institutions, but lands in a given
		// cluster at most once.
		placed := make(map[int]bool)
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" || genericTerms[strings.ToLower(name)] {
				continue
			}

			idx := c.findCluster(name, clusters)
			if idx < 0 {
				clusters = append(clusters, Cluster{
					Institution: name,
					Items:       []model.EvidenceItem{item},
				})
				placed[len(clusters)-1] = true
				continue
			}
			if !placed[idx] {
				clusters[idx].Items = append(clusters[idx].Items, item)
				placed[idx] = true
			}
		}
	}

	return clusters
}

// findCluster returns the index of the first cluster whose key is similar
// enough to name, or -1.
func (c *Clusterer) findCluster(name string, clusters []Cluster) int {
	for i, cl := range clusters {
		if Similarity(name, cl.Institution) >= c.threshold {
			return i
		}
	}
	return -1
}
