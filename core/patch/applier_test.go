package patch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/seopatch/core"
)

const testDoc = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Old</title>
</head>
<body>
<p>hello</p>
</body>
</html>`

func TestApply_NoUnitsIsIdentity(t *testing.T) {
	a := New(nil, nil)
	assert.Equal(t, testDoc, a.Apply(context.Background(), testDoc, nil))
}

func TestApply_EmptyReplacementIsSkipped(t *testing.T) {
	a := New(nil, nil)
	units := []core.EditUnit{
		{Title: "x", Kind: core.EditReplace, Ranges: []core.LineRange{{Start: 5, End: 5}}},
	}
	assert.Equal(t, testDoc, a.Apply(context.Background(), testDoc, units))
}

func TestApply_ReplaceSingleRange(t *testing.T) {
	a := New(nil, nil)
	units := []core.EditUnit{
		{
			Title:       "Title too generic",
			Kind:        core.EditReplace,
			Ranges:      []core.LineRange{{Start: 5, End: 5}},
			Replacement: "<title>Better Title</title>",
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	lines := strings.Split(out, "\n")
	assert.Equal(t, "<title>Better Title</title>", lines[4])
	assert.Len(t, lines, 10)
}

func TestApply_BottomUpOrderKeepsUpperRangesValid(t *testing.T) {
	a := New(nil, nil)
	// Units arrive sorted by max end descending, as the merger emits them.
	// The lower edit grows the document by one line; the upper edit's range
	// must still land on the original title line.
	units := []core.EditUnit{
		{
			Title:       "Paragraph",
			Kind:        core.EditReplace,
			Ranges:      []core.LineRange{{Start: 8, End: 8}},
			Replacement: "<p>hello</p>\n<p>world</p>",
		},
		{
			Title:       "Title",
			Kind:        core.EditReplace,
			Ranges:      []core.LineRange{{Start: 5, End: 5}},
			Replacement: "<title>Patched</title>",
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "<title>Patched</title>", lines[4])
	assert.Equal(t, "<p>hello</p>", lines[7])
	assert.Equal(t, "<p>world</p>", lines[8])
}

func TestApply_InvalidRangeIsSkippedNotFatal(t *testing.T) {
	a := New(nil, nil)
	units := []core.EditUnit{
		{
			Title:       "Out of bounds",
			Kind:        core.EditReplace,
			Ranges:      []core.LineRange{{Start: 99, End: 120}},
			Replacement: "<div>never</div>",
		},
		{
			Title:       "Valid",
			Kind:        core.EditReplace,
			Ranges:      []core.LineRange{{Start: 5, End: 5}},
			Replacement: "<title>Still Applied</title>",
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "<title>Still Applied</title>", lines[4])
	assert.NotContains(t, out, "never")
}

func TestApply_InsertAfterTitleAnchor(t *testing.T) {
	a := New(nil, nil)
	units := []core.EditUnit{
		{
			Title: "Missing meta description",
			Kind:  core.EditInsert,
			Ranges: []core.LineRange{
				{Start: -3, End: -3},
			},
			Replacement: "<!--AI-ACTION: MODE: INSERT; WHERE: after_title-->\n" +
				`<meta name="description" content="A page about things.">`,
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 11)
	assert.Contains(t, lines[4], "</title>")
	assert.Equal(t, `<meta name="description" content="A page about things.">`, lines[5])
}

func TestApply_InsertFallsBackToHeadCloseWhenAnchorAbsent(t *testing.T) {
	a := New(nil, nil)
	units := []core.EditUnit{
		{
			Title:  "Canonical link",
			Kind:   core.EditInsert,
			Ranges: []core.LineRange{{Start: -3, End: -3}},
			Replacement: "<!--AI-ACTION: MODE: INSERT; WHERE: after_canonical-->\n" +
				`<link rel="canonical" href="https://example.com/">`,
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 11)
	// No canonical link exists to anchor on, so the payload lands just
	// before </head>.
	assert.Equal(t, `<link rel="canonical" href="https://example.com/">`, lines[5])
	assert.Equal(t, "</head>", lines[6])
}

func TestApply_ReplaceModeOverwritesAnchorLine(t *testing.T) {
	a := New(nil, nil)
	units := []core.EditUnit{
		{
			Title:  "Document has no usable title",
			Kind:   core.EditAmbiguous,
			Ranges: []core.LineRange{{Start: 0, End: 0}},
			Replacement: "<!--AI-ACTION: MODE: REPLACE; WHERE: after_title-->\n" +
				"<title>Rewritten</title>",
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "<title>Rewritten</title>", lines[4])
}

func TestApply_ModifyTagAddsAttribute(t *testing.T) {
	a := New(nil, nil)
	units := []core.EditUnit{
		{
			Title:       "html element missing lang",
			Kind:        core.EditAmbiguous,
			Ranges:      []core.LineRange{{Start: 0, End: 0}},
			Replacement: `<!--AI-ACTION: MODE: MODIFY_TAG; TARGET: html; ATTR: lang="en"-->`,
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, `<html lang="en">`, lines[1])
}

func TestApply_CaptionPlaceholderFallsBackToFilename(t *testing.T) {
	a := New(nil, nil)
	units := []core.EditUnit{
		{
			Title:       "Image missing alt text",
			Kind:        core.EditReplace,
			Ranges:      []core.LineRange{{Start: 8, End: 8}},
			Replacement: `<img src="/img/sunny-beach-day.jpg" alt="__AI_CAPTION__">`,
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	assert.Contains(t, out, `alt="Sunny Beach Day"`)
	assert.NotContains(t, out, CaptionPlaceholder)
}

type stubCaptioner struct {
	text string
	err  error
}

func (s stubCaptioner) Caption(ctx context.Context, imageURL string) (string, error) {
	return s.text, s.err
}

func TestApply_CaptionerResultIsUsed(t *testing.T) {
	a := New(stubCaptioner{text: "A dog chasing a ball"}, nil)
	units := []core.EditUnit{
		{
			Title:       "Image missing alt text",
			Kind:        core.EditReplace,
			Ranges:      []core.LineRange{{Start: 8, End: 8}},
			Replacement: `<img src="https://cdn.example.com/x.jpg" alt="__AI_CAPTION__">`,
		},
	}

	out := a.Apply(context.Background(), testDoc, units)
	assert.Contains(t, out, `alt="A dog chasing a ball"`)
}

func TestApply_MultipleIdenticalRangesAllReplaced(t *testing.T) {
	doc := "<ul>\n<li>x</li>\n<li>x</li>\n<li>x</li>\n</ul>"
	a := New(nil, nil)
	units := []core.EditUnit{
		{
			Title: "List item",
			Kind:  core.EditReplace,
			Ranges: []core.LineRange{
				{Start: 2, End: 2}, {Start: 3, End: 3}, {Start: 4, End: 4},
			},
			Replacement: "<li>fixed</li>",
		},
	}

	out := a.Apply(context.Background(), doc, units)
	assert.Equal(t, "<ul>\n<li>fixed</li>\n<li>fixed</li>\n<li>fixed</li>\n</ul>", out)
}
