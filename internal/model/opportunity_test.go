package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLeadID_Deterministic(t *testing.T) {
	day := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	a := NewLeadID("Acme State University", LeadTypeERP, day)
	b := NewLeadID("acme state university  ", LeadTypeERP, day)

	assert.Equal(t, a, b)
	assert.Len(t, a, 12)
}

func TestNewLeadID_VariesByTypeAndDay(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	erp := NewLeadID("Acme State University", LeadTypeERP, day)
	cyber := NewLeadID("Acme State University", LeadTypeCybersecurity, day)
	nextDay := NewLeadID("Acme State University", LeadTypeERP, day.AddDate(0, 0, 1))

	assert.NotEqual(t, erp, cyber)
	assert.NotEqual(t, erp, nextDay)
}

func TestOpportunity_Validate(t *testing.T) {
	valid := Opportunity{
		Institution:     "Acme State University",
		LeadType:        LeadTypeERP,
		EngagementTier:  TierMedium,
		ConfidenceScore: 0.7,
		Sources: []Source{
			{Title: "a", URL: "https://example.com/a"},
			{Title: "b", URL: "https://example.com/b"},
		},
	}
	assert.NoError(t, valid.Validate())

	tooFewSources := valid
	tooFewSources.Sources = valid.Sources[:1]
	assert.Error(t, tooFewSources.Validate())

	badConfidence := valid
	badConfidence.ConfidenceScore = 1.2
	assert.Error(t, badConfidence.Validate())

	empty := valid
	empty.Institution = ""
	assert.Error(t, empty.Validate())
}

func TestOpportunity_Validate_Fallback(t *testing.T) {
	fallback := Opportunity{
		Institution:     NoInstitution,
		LeadType:        LeadTypeSignal,
		EngagementTier:  TierExploratory,
		ConfidenceScore: 0.45,
		IsFallback:      true,
	}
	// Fallback records are exempt from the two-source floor.
	assert.NoError(t, fallback.Validate())

	wrongType := fallback
	wrongType.LeadType = LeadTypeERP
	assert.Error(t, wrongType.Validate())

	wrongTier := fallback
	wrongTier.EngagementTier = TierMedium
	assert.Error(t, wrongTier.Validate())
}

func TestOpportunity_IdentifiedOn(t *testing.T) {
	o := Opportunity{DateIdentified: "03/15/2026"}
	day, ok := o.IdentifiedOn()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), day)

	malformed := Opportunity{DateIdentified: "2026-03-15"}
	_, ok = malformed.IdentifiedOn()
	assert.False(t, ok)

	missing := Opportunity{}
	_, ok = missing.IdentifiedOn()
	assert.False(t, ok)
}

func TestJobPosting_ScrapedOn(t *testing.T) {
	j := JobPosting{DateScraped: "2026-08-30"}
	day, ok := j.ScrapedOn()
	assert.True(t, ok)
	assert.Equal(t, 30, day.Day())

	_, ok = JobPosting{DateScraped: "08/30/2026"}.ScrapedOn()
	assert.False(t, ok)
}

func TestJobPosting_Evidence(t *testing.T) {
	j := JobPosting{
		Title:       "Chief Information Officer",
		Company:     "Duke University",
		Summary:     "Lead digital transformation across campus.",
		URL:         "https://careers.duke.edu/cio",
		Source:      "Duke University Careers",
		DateScraped: "2026-08-30",
	}

	ev := j.Evidence()
	assert.Equal(t, "Chief Information Officer at Duke University", ev.Title)
	assert.Equal(t, OriginJobPosting, ev.OriginKind)
	assert.Equal(t, j.URL, ev.URL)
}
