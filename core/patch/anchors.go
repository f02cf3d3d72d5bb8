// Package patch — anchor keyword resolution.
// An anchor keyword names an insertion reference point; it resolves to a
// concrete line by scanning for the first line containing the anchor's
// marker text.
package patch

import (
	"regexp"
	"strings"
)

// Anchor keywords accepted in WHERE directives and inferred from titles.
const (
	AnchorHeadStart        = "head_start"
	AnchorHeadEnd          = "head_end"
	AnchorAfterTitle       = "after_title"
	AnchorAfterMetaCharset = "after_meta_charset"
	AnchorAfterViewport    = "after_viewport"
	AnchorAfterCanonical   = "after_canonical"
)

var anchorMarkers = map[string]*regexp.Regexp{
	AnchorHeadStart:        regexp.MustCompile(`(?i)<head[\s>]`),
	AnchorHeadEnd:          regexp.MustCompile(`(?i)</head\s*>`),
	AnchorAfterTitle:       regexp.MustCompile(`(?i)</title\s*>`),
	AnchorAfterMetaCharset: regexp.MustCompile(`(?i)<meta[^>]*charset`),
	AnchorAfterViewport:    regexp.MustCompile(`(?i)<meta[^>]*name\s*=\s*["']viewport["']`),
	AnchorAfterCanonical:   regexp.MustCompile(`(?i)<link[^>]*rel\s*=\s*["']canonical["']`),
}

// inferAnchor picks an anchor from the defect title when the directive
// carries no explicit WHERE.
func inferAnchor(title string) string {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "meta description"):
		return AnchorAfterTitle
	case strings.Contains(t, "viewport"):
		return AnchorAfterMetaCharset
	case strings.Contains(t, "canonical"):
		return AnchorHeadEnd
	case strings.Contains(t, "title"):
		return AnchorAfterMetaCharset
	default:
		return AnchorHeadStart
	}
}

// resolveAnchor returns the 0-based index of the first line containing the
// anchor's marker, or -1 when the marker is absent.
func resolveAnchor(lines []string, anchor string) int {
	marker, ok := anchorMarkers[anchor]
	if !ok {
		marker = anchorMarkers[AnchorHeadStart]
	}
	for i, line := range lines {
		if marker.MatchString(line) {
			return i
		}
	}
	return -1
}

// fallbackInsertLine picks an insertion point when the anchor marker is
// absent: just before the head close tag if one exists, else the document
// start.
func fallbackInsertLine(lines []string) int {
	headClose := anchorMarkers[AnchorHeadEnd]
	for i, line := range lines {
		if headClose.MatchString(line) {
			return i
		}
	}
	return 0
}
