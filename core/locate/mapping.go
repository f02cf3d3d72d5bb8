// Package locate — element-to-text mapping.
// The HTML parser does not expose source offsets, so a resolved tree node
// is mapped back to the serialized text by searching: first for the exact
// snippet the audit tool reported (windowed around the element's start tag
// to keep unrelated identical markup from being chosen), then for a start
// tag carrying the element's attributes. Container elements extend their
// span forward with a depth-counted scan over open/close tags of the same
// name; this scan is a deliberate, testable algorithm, not an incidental
// regex trick.
package locate

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// snippetWindowLines bounds the preferred snippet search to ±80 lines
// around the element's start tag.
const snippetWindowLines = 80

// evidenceWindowChars is the context window scored around a duplicate
// snippet occurrence.
const evidenceWindowChars = 200

// Evidence weights for duplicate-occurrence disambiguation. Heuristic
// tuning knobs, not a contract.
const (
	scoreParentID      = 10
	scoreSectionMarker = 8
	scoreParentTag     = 5
	scoreElementTag    = 3
	scoreAttrValue     = 2
)

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// keyAttrNames are the attributes used to pin down a start tag.
var keyAttrNames = []string{"id", "class", "href", "src", "name", "content", "rel", "type", "alt", "title"}

var sectionMarkers = []string{"section", "content", "main", "article", "header", "footer"}

var (
	headOpenRe  = regexp.MustCompile(`(?i)<head\b[^>]*>`)
	headCloseRe = regexp.MustCompile(`(?i)</head\s*>`)
)

// mapElement recovers the exact [start, end) byte span of a resolved tree
// node. Returns ok=false when neither the snippet nor the start tag can be
// found in the serialized text.
func (l *Locator) mapElement(n *html.Node, snippet string) (int, int, bool) {
	tagOff, tagEnd := l.findStartTag(n)

	if snippet != "" {
		if off, ok := l.placeSnippet(n, snippet, tagOff); ok {
			return off, off + len(snippet), true
		}
	}

	if tagOff < 0 {
		return 0, 0, false
	}

	tag := strings.ToLower(n.Data)
	if voidTags[tag] || strings.HasSuffix(l.raw[tagOff:tagEnd], "/>") {
		return tagOff, tagEnd, true
	}
	return tagOff, l.scanElementEnd(tag, tagEnd), true
}

// placeSnippet finds the snippet occurrence belonging to this node.
// Preference order: the only occurrence; the only occurrence within the
// window around the start tag; the highest-scoring occurrence by
// contextual evidence, first on ties.
func (l *Locator) placeSnippet(n *html.Node, snippet string, tagOff int) (int, bool) {
	occ := allOccurrences(l.raw, snippet)
	if len(occ) == 0 {
		return 0, false
	}
	if len(occ) == 1 {
		return occ[0], true
	}

	if tagOff >= 0 {
		ws, we := l.lineWindow(l.idx.Line(tagOff), snippetWindowLines)
		var inWindow []int
		for _, off := range occ {
			if off >= ws && off < we {
				inWindow = append(inWindow, off)
			}
		}
		if len(inWindow) == 1 {
			return inWindow[0], true
		}
		if len(inWindow) > 1 {
			occ = inWindow
		}
	}

	return l.bestOccurrence(n, occ, len(snippet)), true
}

// lineWindow converts a ±lines window around a 1-based line into a byte
// span of the raw text.
func (l *Locator) lineWindow(line, lines int) (int, int) {
	start := l.idx.LineStart(line - lines)
	endLine := line + lines
	if endLine >= l.idx.Total() {
		return start, len(l.raw)
	}
	return start, l.idx.LineStart(endLine + 1)
}

// bestOccurrence scores each candidate occurrence by the contextual
// evidence found in a window around it and returns the highest scorer,
// defaulting to the first on a tie.
func (l *Locator) bestOccurrence(n *html.Node, occ []int, snippetLen int) int {
	parent := parentElement(n)
	parentID := ""
	parentTag := ""
	if parent != nil {
		parentID = attrValue(parent, "id")
		parentTag = strings.ToLower(parent.Data)
	}
	tag := strings.ToLower(n.Data)

	best := occ[0]
	bestScore := -1
	for _, off := range occ {
		ws := off - evidenceWindowChars
		if ws < 0 {
			ws = 0
		}
		we := off + snippetLen + evidenceWindowChars
		if we > len(l.raw) {
			we = len(l.raw)
		}
		window := l.raw[ws:we]

		score := 0
		if parentID != "" && strings.Contains(window, parentID) {
			score += scoreParentID
			if containsSectionMarker(parentID) {
				score += scoreSectionMarker
			}
		}
		if parentTag != "" && strings.Contains(window, "<"+parentTag) {
			score += scoreParentTag
		}
		if strings.Contains(window, "<"+tag) {
			score += scoreElementTag
		}
		for _, a := range n.Attr {
			if a.Val != "" && strings.Contains(window, a.Val) {
				score += scoreAttrValue
			}
		}

		if score > bestScore {
			best = off
			bestScore = score
		}
	}
	return best
}

func containsSectionMarker(id string) bool {
	lower := strings.ToLower(id)
	for _, marker := range sectionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// findStartTag locates the first start tag of the element's name that
// carries all of the element's key attributes. Returns (-1, -1) when no
// such tag exists in the text.
func (l *Locator) findStartTag(n *html.Node) (int, int) {
	if n.Type != html.ElementNode {
		return -1, -1
	}
	tag := strings.ToLower(n.Data)
	tagRe, err := regexp.Compile(`(?is)<` + regexp.QuoteMeta(tag) + `\b[^>]*>`)
	if err != nil {
		return -1, -1
	}

	var attrRes []*regexp.Regexp
	for _, key := range keyAttrNames {
		if !hasAttr(n, key) {
			continue
		}
		val := attrValue(n, key)
		attrRes = append(attrRes, regexp.MustCompile(
			`(?is)\b`+regexp.QuoteMeta(key)+`\s*=\s*['"]`+regexp.QuoteMeta(val)+`['"]`))
	}

	for _, m := range tagRe.FindAllStringIndex(l.raw, -1) {
		tagText := l.raw[m[0]:m[1]]
		ok := true
		for _, re := range attrRes {
			if !re.MatchString(tagText) {
				ok = false
				break
			}
		}
		if ok {
			return m[0], m[1]
		}
	}
	return -1, -1
}

// scanElementEnd walks forward from the end of a start tag, tracking the
// open/close nesting depth of the same tag name, and returns the offset
// just past the close tag that brings the depth back to zero. If the close
// tag never appears the span falls back to the start tag alone.
func (l *Locator) scanElementEnd(tag string, startTagEnd int) int {
	openRe := regexp.MustCompile(`(?i)<\s*` + regexp.QuoteMeta(tag) + `\b`)
	closeRe := regexp.MustCompile(`(?i)</\s*` + regexp.QuoteMeta(tag) + `\s*>`)

	pos := startTagEnd
	depth := 1
	for {
		open := openRe.FindStringIndex(l.raw[pos:])
		closing := closeRe.FindStringIndex(l.raw[pos:])
		if closing == nil {
			return startTagEnd
		}
		if open != nil && open[0] < closing[0] {
			depth++
			pos += open[1]
			continue
		}
		depth--
		pos += closing[1]
		if depth == 0 {
			return pos
		}
	}
}
