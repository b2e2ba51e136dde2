// Package notify renders and delivers the daily lead digest. A run that
// produced nothing still sends a short "no leads" note, so silence always
// means delivery failed rather than an empty day.
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// maxDigestSources caps how many citations appear in the digest body.
const maxDigestSources = 3

// Digest is a rendered daily email.
type Digest struct {
	Subject string
	Body    string
}

// RenderDigest formats an opportunity (or its absence) as a plain-text
// digest.
func RenderDigest(opp *model.Opportunity, now time.Time) Digest {
	date := now.Format("Monday, January 2, 2006")

	if opp == nil {
		return Digest{
			Subject: "Daily Lead Digest: no new leads today",
			Body: fmt.Sprintf(
				"No qualifying lead or sector signal was identified today.\n\nProcessed at: %s\n", date),
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Institution: %s\n\n", opp.Institution)
	fmt.Fprintf(&b, "Opportunity Summary:\n%s\n\n", opp.OpportunitySummary)
	fmt.Fprintf(&b, "Lead Type: %s\n", opp.LeadType)
	fmt.Fprintf(&b, "Engagement Tier: %s\n", opp.EngagementTier)
	if desc, ok := model.TierDescriptions[opp.EngagementTier]; ok {
		fmt.Fprintf(&b, "  (%s)\n", desc)
	}
	fmt.Fprintf(&b, "Confidence: %.2f\n", opp.ConfidenceScore)
	if opp.IsFallback {
		b.WriteString("\nThis is a sector-wide signal, not an institution-specific lead.\n")
	}

	if len(opp.Sources) > 0 {
		b.WriteString("\nSources:\n")
		for i, src := range opp.Sources {
			if i >= maxDigestSources {
				break
			}
			fmt.Fprintf(&b, "  - %s\n    %s\n", truncate(src.Title, 60), src.URL)
		}
	}

	if opp.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", opp.Notes)
	}

	fmt.Fprintf(&b, "\nDate Identified: %s\n", opp.DateIdentified)
	fmt.Fprintf(&b, "Lead ID: %s\n", opp.LeadID)
	fmt.Fprintf(&b, "Processed at: %s\n", date)

	subject := fmt.Sprintf("New Lead Identified: %s | %s | %s",
		opp.Institution, opp.LeadType, opp.EngagementTier)
	if opp.IsFallback {
		subject = "Sector Signal: " + truncate(opp.OpportunitySummary, 70)
	}

	return Digest{Subject: subject, Body: b.String()}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max]) + "..."
}
