package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/seopatch/core"
)

func score(v float64) *float64 { return &v }

func TestNormalize_ErroredAuditBecomesReportError(t *testing.T) {
	report := &core.AuditReport{
		Score: 0.7,
		Audits: map[string]core.AuditEntry{
			"crawlable-anchors": {
				Title:            "Links are crawlable",
				ScoreDisplayMode: "error",
				ErrorMessage:     "audit timed out",
			},
		},
	}

	analysis := Normalize(report)
	assert.Empty(t, analysis.Issues)
	require.Len(t, analysis.Errors, 1)
	assert.Equal(t, "crawlable-anchors: audit timed out", analysis.Errors[0])
	assert.Equal(t, 0.7, analysis.SEOScore)
}

func TestNormalize_PassingAuditsAreSkipped(t *testing.T) {
	report := &core.AuditReport{
		Audits: map[string]core.AuditEntry{
			"document-title": {Title: "Has a title", Score: score(1)},
			"viewport":       {Title: "Has a viewport", Score: nil},
		},
	}

	analysis := Normalize(report)
	assert.Empty(t, analysis.Issues)
	assert.Empty(t, analysis.Errors)
}

func TestNormalize_FailingAuditWithoutItemsEmitsPlaceholder(t *testing.T) {
	report := &core.AuditReport{
		Audits: map[string]core.AuditEntry{
			"document-title": {Title: "Document has no title", Score: score(0)},
		},
	}

	analysis := Normalize(report)
	require.Len(t, analysis.Issues, 1)
	d := analysis.Issues[0]
	assert.Equal(t, "document-title", d.AuditID)
	assert.Nil(t, d.Location)
	assert.Equal(t, core.Unmatched, d.Status)
}

func TestNormalize_LocationPriority(t *testing.T) {
	text := "About us"
	line := 4
	report := &core.AuditReport{
		Audits: map[string]core.AuditEntry{
			"image-alt": {
				Title: "Images have alt", Score: score(0),
				Details: &core.AuditDetails{Items: []core.AuditItem{
					{
						Node: &core.AuditNode{
							Selector: "body > img",
							Path:     "1,HTML,1,BODY,0,IMG",
							Snippet:  `<img src="a.png">`,
						},
						// A node beats a link even when both exist.
						Href: "https://example.com/about",
					},
				}},
			},
			"link-text": {
				Title: "Descriptive link text", Score: score(0),
				Details: &core.AuditDetails{Items: []core.AuditItem{
					{Href: "https://example.com/about", Text: &text},
				}},
			},
			"inline-code": {
				Title: "Code issue", Score: score(0),
				Details: &core.AuditDetails{Items: []core.AuditItem{
					{Source: &core.AuditSource{Code: "user-agent: *"}},
				}},
			},
			"external-file": {
				Title: "External resource", Score: score(0),
				Details: &core.AuditDetails{Items: []core.AuditItem{
					{URL: "https://example.com/robots.txt", Line: &line},
				}},
			},
		},
	}

	analysis := Normalize(report)
	require.Len(t, analysis.Issues, 4)

	byID := map[string]*core.Defect{}
	for _, d := range analysis.Issues {
		byID[d.AuditID] = d
	}

	node, ok := byID["image-alt"].Location.(core.NodeRef)
	require.True(t, ok)
	assert.Equal(t, "body > img", node.Selector)

	link, ok := byID["link-text"].Location.(core.LinkRef)
	require.True(t, ok)
	assert.Equal(t, "About us", link.Text)

	code, ok := byID["inline-code"].Location.(core.CodeRef)
	require.True(t, ok)
	assert.Equal(t, "user-agent: *", code.Text)

	src, ok := byID["external-file"].Location.(core.SourceRef)
	require.True(t, ok)
	assert.Equal(t, 4, src.Line)
}

func TestNormalize_SubItemReasonsBecomeCodeRef(t *testing.T) {
	report := &core.AuditReport{
		Audits: map[string]core.AuditEntry{
			"structured-data": {
				Title: "Structured data is valid", Score: score(0),
				Details: &core.AuditDetails{Items: []core.AuditItem{
					{SubItems: &core.AuditSubItems{Items: []core.AuditSubItem{
						{Reason: "missing @type"},
						{Reason: "missing name"},
					}}},
				}},
			},
		},
	}

	analysis := Normalize(report)
	require.Len(t, analysis.Issues, 1)
	code, ok := analysis.Issues[0].Location.(core.CodeRef)
	require.True(t, ok)
	assert.Equal(t, "missing @type; missing name", code.Text)
}

func TestNormalize_NoisyRobotsAuditIsDropped(t *testing.T) {
	noisy := make([]core.AuditSubItem, 11)
	for i := range noisy {
		noisy[i] = core.AuditSubItem{Reason: "Syntax not understood"}
	}
	report := &core.AuditReport{
		Audits: map[string]core.AuditEntry{
			"robots-txt": {
				Title: "robots.txt is valid", Score: score(0),
				Details: &core.AuditDetails{Items: []core.AuditItem{
					{SubItems: &core.AuditSubItems{Items: noisy}},
				}},
			},
		},
	}

	analysis := Normalize(report)
	assert.Empty(t, analysis.Issues)
	assert.Empty(t, analysis.Errors)
}

func TestNormalize_SourceNodeDescriptorIsLifted(t *testing.T) {
	report := &core.AuditReport{
		Audits: map[string]core.AuditEntry{
			"hreflang": {
				Title: "hreflang valid", Score: score(0),
				Details: &core.AuditDetails{Items: []core.AuditItem{
					{Source: &core.AuditSource{Node: &core.AuditNode{
						Snippet: `<link rel="alternate" hreflang="xx">`,
					}}},
				}},
			},
		},
	}

	analysis := Normalize(report)
	require.Len(t, analysis.Issues, 1)
	node, ok := analysis.Issues[0].Location.(core.NodeRef)
	require.True(t, ok)
	assert.Contains(t, node.Snippet, "hreflang")
}
