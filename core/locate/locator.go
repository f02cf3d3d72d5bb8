// Package locate resolves normalized defect records to exact text ranges
// in the original page source. The audit tool describes defects against a
// re-parsed document tree; this package correlates that tree back to the
// serialized text, which may disagree with the tree (parser-inserted
// wrappers, rewritten attribute values, duplicated markup).
//
// Resolution stops at the first strategy that succeeds:
//  1. tree-path descent
//  2. CSS selector query with snippet-attribute disambiguation
//  3. element-to-text mapping (snippet window, evidence scoring, tag scan)
//  4. snippet-only fallback chain (exact, normalized, fuzzy, partial-attr)
//  5. link resolution by normalized href + visible text
//  6. document-level absence fallback (head section anchoring)
//  7. literal code search
//
// A record that no strategy can place stays Unmatched; that is expected,
// never an error.
package locate

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/seopatch/core"
	"github.com/gaurav-prasanna/seopatch/core/lineindex"
)

// Locator resolves defects against one parsed source document.
// Build it once per document and reuse it for every defect.
type Locator struct {
	raw    string
	idx    *lineindex.Index
	root   *html.Node
	logger hclog.Logger
}

// New parses the source text and builds the line index.
func New(raw string, logger hclog.Logger) (*Locator, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing source document: %w", err)
	}
	return &Locator{
		raw:    raw,
		idx:    lineindex.New(raw),
		root:   root,
		logger: logger,
	}, nil
}

// TotalLines returns the document's line count.
func (l *Locator) TotalLines() int { return l.idx.Total() }

// Run resolves every defect of the analysis in place.
func (l *Locator) Run(analysis *core.Analysis) {
	matched := 0
	for _, d := range analysis.Issues {
		l.Resolve(d)
		if d.Status == core.Matched {
			matched++
		}
	}
	l.logger.Info("location pass complete",
		"issues", len(analysis.Issues), "matched", matched)
}

// Resolve fills the defect's match fields if any strategy places it.
func (l *Locator) Resolve(d *core.Defect) {
	switch loc := d.Location.(type) {
	case core.NodeRef:
		l.resolveNode(d, loc)
	case core.LinkRef:
		l.resolveLink(d, loc)
	case core.CodeRef:
		l.resolveCode(d, loc)
	case core.SourceRef:
		// Points into an external resource (robots.txt, a stylesheet);
		// nothing to locate in this document.
	case nil:
		if isDocumentLevel(d.AuditID) {
			l.resolveAbsent(d)
		}
	}
}

func (l *Locator) resolveNode(d *core.Defect, ref core.NodeRef) {
	var node *html.Node
	if ref.Path != "" {
		node = l.byPath(ref.Path)
	}
	if node == nil && ref.Selector != "" {
		node = l.bySelector(ref.Selector, ref.Snippet)
	}

	if node != nil {
		if start, end, ok := l.mapElement(node, ref.Snippet); ok {
			l.commit(d, start, end)
			return
		}
	}

	if ref.Snippet != "" {
		if start, end, ok := l.findSnippet(ref.Snippet); ok {
			l.commit(d, start, end)
			return
		}
	}

	if isDocumentLevel(d.AuditID) {
		l.resolveAbsent(d)
	}
}

func (l *Locator) resolveCode(d *core.Defect, ref core.CodeRef) {
	if ref.Text == "" {
		return
	}
	if off := strings.Index(l.raw, ref.Text); off >= 0 {
		l.commit(d, off, off+len(ref.Text))
	}
}

// commit records the resolved span and every other identical occurrence of
// its text, since each duplicate must later be patched.
func (l *Locator) commit(d *core.Defect, start, end int) {
	text := l.raw[start:end]
	d.Status = core.Matched
	d.MatchedText = text
	d.Ranges = d.Ranges[:0]
	for _, off := range allOccurrences(l.raw, text) {
		d.Ranges = append(d.Ranges, l.idx.Range(off, off+len(text)))
	}
}

// allOccurrences returns the offset of every occurrence of needle,
// scanning by repeated substring search from position 0.
func allOccurrences(haystack, needle string) []int {
	if needle == "" {
		return nil
	}
	var offs []int
	for pos := 0; ; {
		off := strings.Index(haystack[pos:], needle)
		if off < 0 {
			return offs
		}
		offs = append(offs, pos+off)
		pos += off + len(needle)
	}
}

func isDocumentLevel(auditID string) bool {
	return auditID == "document-title" || auditID == "meta-description"
}

var (
	titleSel    = cascadia.MustCompile("head > title")
	metaDescSel = cascadia.MustCompile(`head > meta[name="description"]`)
)

// resolveAbsent handles title/description defects with no located element.
// If the element exists after all, its span is a normal replace target.
// Otherwise the head section anchors an insertion: the range is recorded
// as a negative sentinel on the head's opening line, or as {0,0} when the
// document has no head section to anchor against.
func (l *Locator) resolveAbsent(d *core.Defect) {
	var sel cascadia.Selector
	switch d.AuditID {
	case "document-title":
		sel = titleSel
	case "meta-description":
		sel = metaDescSel
	default:
		return
	}

	if node := sel.MatchFirst(l.root); node != nil {
		if start, end, ok := l.mapElement(node, ""); ok {
			l.commit(d, start, end)
			return
		}
	}

	open := headOpenRe.FindStringIndex(l.raw)
	closing := headCloseRe.FindStringIndex(l.raw)
	if open != nil && closing != nil && closing[0] > open[0] {
		line := l.idx.Line(open[0])
		d.Status = core.Matched
		d.MatchedText = l.raw[open[0]:closing[1]]
		d.Ranges = []core.LineRange{{Start: -line, End: -line}}
		return
	}

	d.Status = core.Matched
	d.MatchedText = ""
	d.Ranges = []core.LineRange{{Start: 0, End: 0}}
}
