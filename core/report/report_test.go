package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/seopatch/core"
)

func TestBuild(t *testing.T) {
	analysis := &core.Analysis{
		SEOScore: 0.55,
		Issues: []*core.Defect{
			{
				Title:       "Title too short",
				Status:      core.Matched,
				MatchedText: "<title>Hi</title>",
				Ranges:      []core.LineRange{{Start: 5, End: 5}},
			},
			{Title: "Never located", Status: core.Unmatched},
		},
		Errors: []string{"robots-txt: audit timed out"},
	}
	units := []core.EditUnit{
		{Title: "Title too short", Replacement: "<title>Better</title>"},
		{Title: "Untouched"},
	}

	s := Build("https://example.com", analysis, units)

	assert.Equal(t, "https://example.com", s.URL)
	assert.Equal(t, 0.55, s.SEOScore)
	assert.Equal(t, 2, s.EditsTotal)
	assert.Equal(t, 1, s.EditsFilled)
	require.Len(t, s.Issues, 2)
	assert.Equal(t, "matched", s.Issues[0].Status)
	assert.Equal(t, "unmatched", s.Issues[1].Status)
	assert.Equal(t, analysis.Errors, s.Errors)
}

func TestBuild_TruncatesLongMatchedText(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	analysis := &core.Analysis{Issues: []*core.Defect{
		{Title: "big", Status: core.Matched, MatchedText: string(long)},
	}}

	s := Build("https://example.com", analysis, nil)
	require.Len(t, s.Issues, 1)
	assert.Len(t, s.Issues[0].MatchedText, 163) // 160 chars + "..."
}

func TestJSONRendererRoundTrips(t *testing.T) {
	s := Build("https://example.com", &core.Analysis{SEOScore: 0.9}, nil)

	data, err := NewJSONRenderer().Render(s)
	require.NoError(t, err)

	var decoded Summary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.9, decoded.SEOScore)
	assert.Equal(t, "https://example.com", decoded.URL)
}

func TestPDFRendererProducesDocument(t *testing.T) {
	s := Build("https://example.com", &core.Analysis{
		SEOScore: 0.4,
		Issues: []*core.Defect{
			{Title: "Issue", Status: core.Matched, Ranges: []core.LineRange{{Start: 2, End: 4}}},
		},
		Errors: []string{"an error"},
	}, nil)

	data, err := NewPDFRenderer().Render(s)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}
