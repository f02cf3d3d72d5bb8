package lineindex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLine(t *testing.T) {
	// Offsets:        0123 4567 89
	ix := New("abc\ndef\ngh")

	testCases := []struct {
		name     string
		offset   int
		expected int
	}{
		{name: "start of document", offset: 0, expected: 1},
		{name: "last byte of first line", offset: 2, expected: 1},
		{name: "newline belongs to its line", offset: 3, expected: 1},
		{name: "first byte of second line", offset: 4, expected: 2},
		{name: "first byte of third line", offset: 8, expected: 3},
		{name: "last byte of document", offset: 9, expected: 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ix.Line(tc.offset))
		})
	}
}

func TestRange(t *testing.T) {
	text := "<html>\n<head>\n<title>X</title>\n</head>\n</html>"
	ix := New(text)

	off := strings.Index(text, "<title>X</title>")
	r := ix.Range(off, off+len("<title>X</title>"))
	assert.Equal(t, 3, r.Start)
	assert.Equal(t, 3, r.End)
}

func TestTotalMatchesSplit(t *testing.T) {
	for _, text := range []string{"", "a", "a\nb", "a\nb\n", "\n\n\n"} {
		ix := New(text)
		assert.Equal(t, len(strings.Split(text, "\n")), ix.Total(), "text %q", text)
	}
}

func TestLineStart(t *testing.T) {
	ix := New("ab\ncd\nef")
	assert.Equal(t, 0, ix.LineStart(1))
	assert.Equal(t, 3, ix.LineStart(2))
	assert.Equal(t, 6, ix.LineStart(3))
	// Clamped.
	assert.Equal(t, 0, ix.LineStart(0))
	assert.Equal(t, 6, ix.LineStart(99))
}
