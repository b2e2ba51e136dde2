// Package model defines the core data types of the lead generation pipeline.
package model

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// LeadType categorizes the business opportunity behind a lead.
type LeadType string

const (
	LeadTypeERP           LeadType = "ERP"
	LeadTypeITLeadership  LeadType = "IT Leadership"
	LeadTypeCybersecurity LeadType = "Cybersecurity"
	LeadTypeAIData        LeadType = "AI/Data"
	LeadTypeLMSCRM        LeadType = "LMS/CRM"
	LeadTypeAnalytics     LeadType = "Analytics"
	LeadTypeSignal        LeadType = "Signal"
)

// AllLeadTypes returns every valid lead type.
func AllLeadTypes() []LeadType {
	return []LeadType{
		LeadTypeERP,
		LeadTypeITLeadership,
		LeadTypeCybersecurity,
		LeadTypeAIData,
		LeadTypeLMSCRM,
		LeadTypeAnalytics,
		LeadTypeSignal,
	}
}

// EngagementTier is a coarse sizing label for a prospective engagement.
type EngagementTier string

const (
	TierSmall           EngagementTier = "Small"
	TierMedium          EngagementTier = "Medium"
	TierRecurring       EngagementTier = "Recurring"
	TierFullOutsourcing EngagementTier = "Full Outsourcing"
	TierExploratory     EngagementTier = "Exploratory"
)

// TierDescriptions maps each tier to the short sizing blurb used in the
// outbound digest.
var TierDescriptions = map[EngagementTier]string{
	TierSmall:           "Single project or consultation (under $50K)",
	TierMedium:          "Multi-phase implementation (50K-200K)",
	TierRecurring:       "Ongoing advisory or managed services",
	TierFullOutsourcing: "Comprehensive IT transformation (200K+)",
	TierExploratory:     "Early-stage sector signal, no scoped engagement",
}

// NoInstitution is the institution sentinel used by fallback signal records.
const NoInstitution = "No specific institution identified"

// DateLayout is the calendar-day format used for DateIdentified. History
// records carry dates in this layout; anything else is treated as unparseable.
const DateLayout = "01/02/2006"

// JobDateLayout is the calendar-day format used for JobPosting.DateScraped.
const JobDateLayout = "2006-01-02"

// Source is one cited article or posting backing an opportunity.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Opportunity is a scored, deduplicated candidate business lead. Records are
// append-only: once persisted they are never mutated, corrections require a
// new record.
type Opportunity struct {
	Institution        string         `json:"institution"`
	OpportunitySummary string         `json:"opportunity_summary"`
	LeadType           LeadType       `json:"lead_type"`
	EngagementTier     EngagementTier `json:"engagement_tier"`
	ConfidenceScore    float64        `json:"confidence_score"`
	Sources            []Source       `json:"sources"`
	DateIdentified     string         `json:"date_identified"`
	LeadID             string         `json:"lead_id"`
	IsFallback         bool           `json:"is_fallback"`
	Notes              string         `json:"notes,omitempty"`
}

// NewLeadID derives the deterministic lead identifier from institution, lead
// type and day. Two opportunities for the same institution and type on the
// same calendar day share an ID; see DESIGN.md for why that collision is kept.
func NewLeadID(institution string, leadType LeadType, day time.Time) string {
	combined := strings.ToLower(strings.TrimSpace(institution)) +
		strings.ToLower(string(leadType)) +
		day.Format("20060102")
	sum := md5.Sum([]byte(combined))
	return hex.EncodeToString(sum[:])[:12]
}

// Validate checks the structural invariants of an Opportunity.
func (o *Opportunity) Validate() error {
	if o.Institution == "" {
		return eris.New("opportunity: empty institution")
	}
	if o.ConfidenceScore < 0 || o.ConfidenceScore > 1 {
		return eris.Errorf("opportunity: confidence %.2f outside [0,1]", o.ConfidenceScore)
	}
	if o.IsFallback {
		if o.LeadType != LeadTypeSignal {
			return eris.Errorf("opportunity: fallback record has lead type %q, want %q", o.LeadType, LeadTypeSignal)
		}
		if o.EngagementTier != TierExploratory {
			return eris.Errorf("opportunity: fallback record has tier %q, want %q", o.EngagementTier, TierExploratory)
		}
		return nil
	}
	if len(o.Sources) < 2 {
		return eris.Errorf("opportunity: %d sources, non-fallback records need at least 2", len(o.Sources))
	}
	return nil
}

// IdentifiedOn parses DateIdentified. The boolean is false when the stored
// date is missing or malformed.
func (o *Opportunity) IdentifiedOn() (time.Time, bool) {
	t, err := time.Parse(DateLayout, o.DateIdentified)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// KnownClient is an entry in the client exclusion list.
type KnownClient struct {
	Name string `json:"name"`
}
