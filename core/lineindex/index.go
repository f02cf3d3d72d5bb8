// Package lineindex converts byte offsets in source text to 1-based line
// numbers. The index is built once per document and reused by every later
// pipeline stage.
package lineindex

import (
	"sort"

	"github.com/gaurav-prasanna/seopatch/core"
)

// Index is an ascending array of byte offsets where each line begins.
// Offset 0 is always present.
type Index struct {
	starts []int
}

// New builds the index for the given source text.
func New(text string) *Index {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{starts: starts}
}

// Line returns the 1-based line number containing the byte offset:
// the greatest i with starts[i] <= offset, plus one.
func (ix *Index) Line(offset int) int {
	i := sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	})
	return i // i-1 is the greatest index with starts[i-1] <= offset
}

// Range converts a [start, end) byte span into an inclusive 1-based
// line range.
func (ix *Index) Range(start, end int) core.LineRange {
	return core.LineRange{Start: ix.Line(start), End: ix.Line(end)}
}

// LineStart returns the byte offset where the given 1-based line begins.
// Out-of-range lines clamp to the nearest valid line.
func (ix *Index) LineStart(line int) int {
	if line < 1 {
		line = 1
	}
	if line > len(ix.starts) {
		line = len(ix.starts)
	}
	return ix.starts[line-1]
}

// Total returns the total number of lines, matching the count produced
// by splitting the text on newlines.
func (ix *Index) Total() int {
	return len(ix.starts)
}
