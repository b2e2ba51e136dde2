// Package export writes lead history to spreadsheet files for hand-off to
// the sales team.
package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
)

// leadHeader is the column order of the exported sheet.
var leadHeader = []string{
	"Lead ID", "Date Identified", "Institution", "Lead Type",
	"Engagement Tier", "Confidence", "Summary", "Sources", "Notes",
}

// WriteLeadsXLSX writes the given opportunities to an XLSX workbook at path,
// newest record last, one row per lead.
func WriteLeadsXLSX(path string, leads []model.Opportunity) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range leadHeader {
		header.AddCell().Value = col
	}

	for _, lead := range leads {
		row := sheet.AddRow()
		row.AddCell().Value = lead.LeadID
		row.AddCell().Value = lead.DateIdentified
		row.AddCell().Value = lead.Institution
		row.AddCell().Value = string(lead.LeadType)
		row.AddCell().Value = string(lead.EngagementTier)
		row.AddCell().Value = fmt.Sprintf("%.2f", lead.ConfidenceScore)
		row.AddCell().Value = lead.OpportunitySummary
		row.AddCell().Value = joinSourceURLs(lead.Sources)
		row.AddCell().Value = lead.Notes
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func joinSourceURLs(sources []model.Source) string {
	urls := make([]string, 0, len(sources))
	for _, s := range sources {
		urls = append(urls, s.URL)
	}
	return strings.Join(urls, "\n")
}
