// Package patch applies ordered edit units to the source text.
// Units arrive sorted by maximum end line descending and are applied
// strictly bottom-up: edits applied lower in the document never shift the
// line addressing of edits still pending above them. A range that fails
// validation is skipped with a warning; the rest of the document is still
// patched.
package patch

import (
	"context"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/gaurav-prasanna/seopatch/core"
)

// Applier splices replacement and insertion payloads into the source.
type Applier struct {
	captioner core.Captioner
	logger    hclog.Logger
}

// New creates an Applier. A nil captioner is allowed; accessible-text
// backfill then always takes the filename fallback path.
func New(captioner core.Captioner, logger hclog.Logger) *Applier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Applier{captioner: captioner, logger: logger}
}

// Apply rewrites the document with every unit that carries a replacement.
// The input text is never mutated; the result is a new value.
func (a *Applier) Apply(ctx context.Context, doc string, units []core.EditUnit) string {
	lines := strings.Split(doc, "\n")

	for _, unit := range units {
		if strings.TrimSpace(unit.Replacement) == "" {
			continue
		}
		payload := a.backfillCaptions(ctx, unit.Replacement)

		switch unit.Kind {
		case core.EditReplace:
			lines = a.applyReplace(lines, unit, payload)
		case core.EditInsert, core.EditAmbiguous:
			lines = a.applyInsertion(lines, unit, payload)
		}
	}

	return strings.Join(lines, "\n")
}

// applyReplace splices the payload over each of the unit's ranges, in
// descending end-line order, recomputing the line count between ranges.
func (a *Applier) applyReplace(lines []string, unit core.EditUnit, payload string) []string {
	ranges := append([]core.LineRange(nil), unit.Ranges...)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].End > ranges[j].End })

	replacement := strings.Split(payload, "\n")
	for _, r := range ranges {
		start, end := r.Start-1, r.End-1
		if start < 0 || start > end || end >= len(lines) {
			a.logger.Warn("skipping edit with invalid range",
				"title", unit.Title, "start", r.Start, "end", r.End, "total", len(lines))
			continue
		}
		lines = splice(lines, start, end, replacement)
	}
	return lines
}

// applyInsertion parses the optional directive header and routes the
// payload: attribute surgery on a target tag, anchor-line replacement, or
// the default anchored insert.
func (a *Applier) applyInsertion(lines []string, unit core.EditUnit, payload string) []string {
	dir, body := ParseDirective(payload)

	if dir.Mode == ModeModifyTag && dir.Target != "" && dir.Attr != "" {
		return a.modifyTag(lines, dir)
	}

	anchor := dir.Where
	if anchor == "" {
		anchor = inferAnchor(unit.Title)
	}
	anchorLine := resolveAnchor(lines, anchor)

	bodyLines := strings.Split(strings.TrimRight(body, "\n"), "\n")

	if dir.Mode == ModeReplace && anchorLine >= 0 {
		return splice(lines, anchorLine, anchorLine, bodyLines)
	}

	insertAt := anchorLine + 1
	if anchorLine < 0 {
		insertAt = fallbackInsertLine(lines)
	}
	return insertLines(lines, insertAt, bodyLines)
}

// modifyTag inserts or overwrites attributes on the first occurrence of
// the target tag. Duplicate attribute names are last-writer-wins: a later
// directive replaces the value an earlier one set.
func (a *Applier) modifyTag(lines []string, dir Directive) []string {
	for i, line := range lines {
		updated, ok := modifyTagLine(line, dir.Target, dir.Attr)
		if ok {
			out := append([]string(nil), lines...)
			out[i] = updated
			return out
		}
	}
	a.logger.Warn("modify-tag target not found", "target", dir.Target)
	return lines
}

// splice replaces lines[start..end] (inclusive, 0-based) with replacement.
func splice(lines []string, start, end int, replacement []string) []string {
	out := make([]string, 0, len(lines)-(end-start+1)+len(replacement))
	out = append(out, lines[:start]...)
	out = append(out, replacement...)
	out = append(out, lines[end+1:]...)
	return out
}

// insertLines inserts the payload starting at index at (0-based), clamped
// to the document bounds.
func insertLines(lines []string, at int, payload []string) []string {
	if at < 0 {
		at = 0
	}
	if at > len(lines) {
		at = len(lines)
	}
	out := make([]string, 0, len(lines)+len(payload))
	out = append(out, lines[:at]...)
	out = append(out, payload...)
	out = append(out, lines[at:]...)
	return out
}
