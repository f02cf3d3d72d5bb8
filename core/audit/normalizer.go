// Package audit turns the raw audit report into a flat list of per-defect
// records and talks to the external audit service.
//
// Normalization rules:
//  1. Audits whose scoreDisplayMode is "error" become report-level errors,
//     not defects.
//  2. The robots-directive audit is dropped entirely once it reports more
//     than 10 "syntax not understood" entries; its parser is unreliable
//     past that point.
//  3. Passing audits (nil score or score >= 1) are skipped.
//  4. A failing audit without items still emits one placeholder defect so
//     the locator can pick a document-level strategy.
package audit

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/seopatch/core"
)

const (
	robotsAuditID         = "robots-txt"
	robotsNoiseThreshold  = 10
	robotsSyntaxNotunders = "syntax not understood"
)

// Normalize flattens the raw report into defect records with a resolved
// location descriptor each.
func Normalize(report *core.AuditReport) *core.Analysis {
	out := &core.Analysis{SEOScore: report.Score}

	for auditID, entry := range report.Audits {
		if entry.ScoreDisplayMode == "error" {
			msg := entry.ErrorMessage
			if msg == "" {
				msg = "audit reported an internal error"
			}
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", auditID, msg))
			continue
		}

		if auditID == robotsAuditID && robotsNoiseCount(entry) > robotsNoiseThreshold {
			continue
		}

		if entry.Score == nil || *entry.Score >= 1 {
			continue
		}

		items := itemsOf(entry)
		if len(items) == 0 {
			// Whole-document issue, e.g. a missing title. The locator
			// decides a strategy from the audit id alone.
			out.Issues = append(out.Issues, &core.Defect{
				AuditID: auditID,
				Title:   entry.Title,
				Status:  core.Unmatched,
			})
			continue
		}

		for _, item := range items {
			out.Issues = append(out.Issues, &core.Defect{
				AuditID:  auditID,
				Title:    entry.Title,
				Location: resolveLocation(item),
				Status:   core.Unmatched,
			})
		}
	}

	return out
}

func itemsOf(entry core.AuditEntry) []core.AuditItem {
	if entry.Details == nil {
		return nil
	}
	return entry.Details.Items
}

// robotsNoiseCount counts "syntax not understood" entries across the
// audit's items and their sub-lists.
func robotsNoiseCount(entry core.AuditEntry) int {
	count := 0
	for _, item := range itemsOf(entry) {
		if item.SubItems != nil {
			for _, sub := range item.SubItems.Items {
				if strings.Contains(strings.ToLower(sub.Reason), robotsSyntaxNotunders) {
					count++
				}
			}
		}
		if item.Source != nil && strings.Contains(strings.ToLower(item.Source.Code), robotsSyntaxNotunders) {
			count++
		}
	}
	return count
}

// resolveLocation maps a heterogeneous audit item onto exactly one
// Location variant, in priority order: node, link, code, source ref.
func resolveLocation(item core.AuditItem) core.Location {
	if node := nodeOf(item); node != nil {
		return *node
	}

	if item.Href != "" {
		text := ""
		if item.Text != nil {
			text = *item.Text
		}
		return core.LinkRef{Href: item.Href, Text: text}
	}

	if item.Source != nil && item.Source.Code != "" {
		return core.CodeRef{Text: item.Source.Code}
	}

	// A structured sub-list of reasons stands in for a code fragment
	// when no direct code field exists.
	if reasons := subItemReasons(item); reasons != "" {
		return core.CodeRef{Text: reasons}
	}

	if item.URL != "" && (item.Line != nil || item.Column != nil) {
		ref := core.SourceRef{URL: item.URL}
		if item.Line != nil {
			ref.Line = *item.Line
		}
		if item.Column != nil {
			ref.Column = *item.Column
		}
		return ref
	}

	return nil
}

// nodeOf extracts the node descriptor from the item itself or from a
// nested source field that carries one.
func nodeOf(item core.AuditItem) *core.NodeRef {
	node := item.Node
	if node == nil && item.Source != nil {
		node = item.Source.Node
	}
	if node == nil {
		return nil
	}
	return &core.NodeRef{
		Selector: node.Selector,
		Path:     node.Path,
		Snippet:  node.Snippet,
		Label:    node.NodeLabel,
		ID:       node.LhID,
	}
}

func subItemReasons(item core.AuditItem) string {
	if item.SubItems == nil {
		return ""
	}
	var reasons []string
	for _, sub := range item.SubItems.Items {
		if sub.Reason != "" {
			reasons = append(reasons, sub.Reason)
		}
	}
	return strings.Join(reasons, "; ")
}
