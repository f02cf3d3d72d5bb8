// Package core defines the shared data model and collaborator interfaces
// for the seopatch pipeline. The pipeline stages themselves (audit,
// locate, merge, patch) are concrete packages; only the external
// collaborators — page fetcher, audit service, rewrite model, captioner —
// are specified as interfaces so they can be stubbed in tests.
package core

import (
	"context"
	"fmt"
)

// FetchResult holds the raw HTML and response metadata from a page fetch.
type FetchResult struct {
	URL        string
	StatusCode int
	HTML       string
}

// MatchStatus tells whether a defect has been resolved to source text.
type MatchStatus string

const (
	Unmatched MatchStatus = "unmatched"
	Matched   MatchStatus = "matched"
)

// LineRange is an inclusive 1-based line span in the source document.
// Negative values are insertion sentinels ("insert near |value|");
// a zero range means the placement is ambiguous.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Intersects reports whether two ranges share at least one line.
func (r LineRange) Intersects(o LineRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Location is the tagged descriptor of where a defect's offending element
// lives, as seen from the audit tool's re-parsed tree. A nil Location means
// the defect is document-level (e.g. a missing title).
//
// The concrete variants are NodeRef, LinkRef, CodeRef, and SourceRef.
type Location interface {
	location()
}

// NodeRef describes a DOM element by selector, tree path and snippet.
type NodeRef struct {
	Selector string
	Path     string
	Snippet  string
	Label    string
	ID       string
}

// LinkRef describes an anchor by its href and visible text.
type LinkRef struct {
	Href string
	Text string
}

// CodeRef carries a literal source fragment to search for.
type CodeRef struct {
	Text string
}

// SourceRef points at an external resource position (url/line/column).
type SourceRef struct {
	URL    string
	Line   int
	Column int
}

func (NodeRef) location()   {}
func (LinkRef) location()   {}
func (CodeRef) location()   {}
func (SourceRef) location() {}

// Defect is one normalized issue extracted from the audit report.
// The locator mutates Status, MatchedText and Ranges in place.
// Ranges holds every identical-text occurrence, not just the first,
// because each duplicate must later be patched.
type Defect struct {
	AuditID     string      `json:"audit_id"`
	Title       string      `json:"title"`
	Location    Location    `json:"-"`
	Status      MatchStatus `json:"match_status"`
	MatchedText string      `json:"match_html,omitempty"`
	Ranges      []LineRange `json:"ranges,omitempty"`
}

// Analysis is the normalizer's output: the failing audits as defects plus
// tool-side errors collected as a non-fatal side channel.
type Analysis struct {
	SEOScore float64   `json:"seo_score"`
	Issues   []*Defect `json:"issues"`
	Errors   []string  `json:"errors,omitempty"`
}

// EditKind classifies how an edit unit is applied to the source.
type EditKind int

const (
	EditReplace EditKind = iota
	EditInsert
	EditAmbiguous
)

// EditUnit is a merged, non-overlapping group of located defects sharing
// text address space. Replacement is filled in by the rewrite collaborator
// before patching.
type EditUnit struct {
	Title       string      `json:"title"`
	ContextHTML string      `json:"raw_html"`
	Ranges      []LineRange `json:"ranges"`
	Kind        EditKind    `json:"-"`
	Replacement string      `json:"optimized_html,omitempty"`
}

// MaxEnd returns the largest end line across the unit's ranges.
// Used to order units for bottom-up patch application.
func (u EditUnit) MaxEnd() int {
	max := 0
	for i, r := range u.Ranges {
		if i == 0 || r.End > max {
			max = r.End
		}
	}
	return max
}

// StepError is a fatal pipeline failure carrying the failing step name.
// Callers must treat it as "analysis could not be performed", never as a
// partial result.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Auditor submits page HTML to the external audit tool and returns the
// raw report.
type Auditor interface {
	Audit(ctx context.Context, html string) (*AuditReport, error)
}

// Rewriter fills in the Replacement field of each edit unit, given the
// page context extracted from the document. Its internal behavior is an
// external concern; units it cannot improve come back with an empty
// Replacement and are skipped during patching.
type Rewriter interface {
	Rewrite(ctx context.Context, units []EditUnit, pageContext string) ([]EditUnit, error)
}

// Captioner produces a short accessible-text caption for an image URL.
type Captioner interface {
	Caption(ctx context.Context, imageURL string) (string, error)
}
