package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

func TestFindCrossReferences(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	article := func(inst string, published time.Time) map[string][]model.EvidenceItem {
		return map[string][]model.EvidenceItem{
			inst: {{Title: inst + " news", PublishedAt: published, OriginKind: model.OriginArticle}},
		}
	}

	t.Run("name and date both corroborate", func(t *testing.T) {
		jobs := []model.JobPosting{{
			Title:       "CIO",
			Company:     "Acme State",
			DateScraped: now.AddDate(0, 0, -5).Format(model.JobDateLayout),
		}}
		refs := FindCrossReferences(article("Acme State University", now), jobs, 0.8)
		require.Len(t, refs, 1)
		assert.Equal(t, "Acme State University", refs[0].Institution)
		assert.Equal(t, "Acme State", refs[0].JobInstitution)
		assert.GreaterOrEqual(t, refs[0].Similarity, 0.8)
	})

	t.Run("dates too far apart", func(t *testing.T) {
		jobs := []model.JobPosting{{
			Company:     "Acme State",
			DateScraped: now.AddDate(0, 0, -90).Format(model.JobDateLayout),
		}}
		refs := FindCrossReferences(article("Acme State University", now), jobs, 0.8)
		assert.Empty(t, refs)
	})

	t.Run("missing dates never block", func(t *testing.T) {
		jobs := []model.JobPosting{{Company: "Acme State", DateScraped: "not-a-date"}}
		refs := FindCrossReferences(article("Acme State University", time.Time{}), jobs, 0.8)
		assert.Len(t, refs, 1)
	})

	t.Run("dissimilar names rejected", func(t *testing.T) {
		jobs := []model.JobPosting{{
			Company:     "Pacific Rim Logistics",
			DateScraped: now.Format(model.JobDateLayout),
		}}
		refs := FindCrossReferences(article("Acme State University", now), jobs, 0.8)
		assert.Empty(t, refs)
	})

	t.Run("blank company skipped", func(t *testing.T) {
		jobs := []model.JobPosting{{Company: "", DateScraped: now.Format(model.JobDateLayout)}}
		refs := FindCrossReferences(article("Acme State University", now), jobs, 0.8)
		assert.Empty(t, refs)
	})

	t.Run("output ordered by institution", func(t *testing.T) {
		articles := map[string][]model.EvidenceItem{
			"Zenith College":  {{Title: "a", PublishedAt: now}},
			"Bayside College": {{Title: "b", PublishedAt: now}},
		}
		jobs := []model.JobPosting{
			{Company: "Zenith College", DateScraped: now.Format(model.JobDateLayout)},
			{Company: "Bayside College", DateScraped: now.Format(model.JobDateLayout)},
		}
		refs := FindCrossReferences(articles, jobs, 0.8)
		require.Len(t, refs, 2)
		assert.Equal(t, "Bayside College", refs[0].Institution)
		assert.Equal(t, "Zenith College", refs[1].Institution)
	})
}
