// Package report builds the optimization summary emitted next to the
// patched document: which defects were found, where each one landed in
// the source, and what was actually changed.
package report

import (
	"time"

	"github.com/gaurav-prasanna/seopatch/core"
)

// Summary is the per-page optimization report.
type Summary struct {
	URL         string         `json:"url"`
	GeneratedAt time.Time      `json:"generated_at"`
	SEOScore    float64        `json:"seo_score"`
	Issues      []IssueSummary `json:"issues"`
	Errors      []string       `json:"errors,omitempty"`
	EditsTotal  int            `json:"edits_total"`
	EditsFilled int            `json:"edits_filled"`
}

// IssueSummary is one defect as it appears in the report.
type IssueSummary struct {
	Title       string           `json:"title"`
	Status      string           `json:"status"`
	Ranges      []core.LineRange `json:"ranges,omitempty"`
	MatchedText string           `json:"matched_text,omitempty"`
}

// matchedTextLimit keeps report snippets readable; the full text lives in
// the source document anyway.
const matchedTextLimit = 160

// Build assembles a Summary from the analysis and the final edit units.
func Build(url string, analysis *core.Analysis, units []core.EditUnit) *Summary {
	s := &Summary{
		URL:         url,
		GeneratedAt: time.Now().UTC(),
		EditsTotal:  len(units),
	}
	if analysis != nil {
		s.SEOScore = analysis.SEOScore
		s.Errors = analysis.Errors
		for _, d := range analysis.Issues {
			s.Issues = append(s.Issues, IssueSummary{
				Title:       d.Title,
				Status:      statusLabel(d.Status),
				Ranges:      d.Ranges,
				MatchedText: truncate(d.MatchedText, matchedTextLimit),
			})
		}
	}
	for _, u := range units {
		if u.Replacement != "" {
			s.EditsFilled++
		}
	}
	return s
}

func statusLabel(st core.MatchStatus) string {
	if st == core.Matched {
		return "matched"
	}
	return "unmatched"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
