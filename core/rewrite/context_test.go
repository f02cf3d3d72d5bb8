package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contextDoc = `<!DOCTYPE html>
<html>
<head>
<title>First Title</title>
<title>Second Title</title>
<meta name="description" content="One description.">
</head>
<body>
<main>
<h1>Welcome</h1>
<h2>Details</h2>
<p>Some body text about widgets and their many uses.</p>
</main>
</body>
</html>`

func TestExtractContext_ListsEveryTitleAndHeading(t *testing.T) {
	got, err := ExtractContext(contextDoc)
	require.NoError(t, err)

	// Duplicates are defects the rewrite model needs to see, so both
	// titles must appear.
	assert.Contains(t, got, "ALL_TITLES: First Title | Second Title")
	assert.Contains(t, got, "ALL_META_DESCRIPTIONS: One description.")
	assert.Contains(t, got, "ALL_HEADINGS: Welcome | Details")
	assert.Contains(t, got, "widgets")
}

func TestExtractContext_EmptyDocument(t *testing.T) {
	got, err := ExtractContext("<html><body></body></html>")
	require.NoError(t, err)
	assert.Contains(t, got, "ALL_TITLES: \n")
}

func TestStripFences(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{`[{"title":"a"}]`, `[{"title":"a"}]`},
		{"```json\n[1,2]\n```", "[1,2]"},
		{"```\n[]\n```", "[]"},
		{"  [1] \n", "[1]"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, stripFences(tc.input))
	}
}
