// Package merge coalesces located defects into disjoint edit units ordered
// for safe patch application.
//
// Defects are partitioned by their ranges: all-positive records are replace
// candidates and are the only class that merges; any-negative records are
// insertion hints and all-zero records mark ambiguous placement, both of
// which pass through untouched. The final list is sorted by maximum end
// line descending — mandatory, because the patch applier works bottom-up so
// that earlier edits' line-count changes never invalidate ranges above.
package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gaurav-prasanna/seopatch/core"
)

// titleListCap bounds how many distinct phrases a combined title names.
const titleListCap = 3

// Merge turns matched defects into ordered edit units.
func Merge(defects []*core.Defect) []core.EditUnit {
	var positive, negative, zero []*core.Defect
	for _, d := range defects {
		if d.Status != core.Matched || len(d.Ranges) == 0 {
			continue
		}
		switch classify(d.Ranges) {
		case core.EditReplace:
			positive = append(positive, d)
		case core.EditInsert:
			negative = append(negative, d)
		case core.EditAmbiguous:
			zero = append(zero, d)
		}
	}

	units := mergePositive(positive)
	for _, d := range negative {
		units = append(units, passthrough(d, core.EditInsert))
	}
	for _, d := range zero {
		units = append(units, passthrough(d, core.EditAmbiguous))
	}

	sort.SliceStable(units, func(i, j int) bool {
		return units[i].MaxEnd() > units[j].MaxEnd()
	})
	return units
}

// classify buckets a range set: any negative value marks an insertion
// hint, an all-zero set marks ambiguous placement, everything else is a
// replace candidate.
func classify(ranges []core.LineRange) core.EditKind {
	allZero := true
	for _, r := range ranges {
		if r.Start < 0 || r.End < 0 {
			return core.EditInsert
		}
		if r.Start != 0 || r.End != 0 {
			allZero = false
		}
	}
	if allZero {
		return core.EditAmbiguous
	}
	return core.EditReplace
}

func passthrough(d *core.Defect, kind core.EditKind) core.EditUnit {
	return core.EditUnit{
		Title:       d.Title,
		ContextHTML: d.MatchedText,
		Ranges:      append([]core.LineRange(nil), d.Ranges...),
		Kind:        kind,
	}
}

// accumulator collects the defects folded into one unit.
type accumulator struct {
	titles  []string
	ranges  []core.LineRange
	context string
}

// mergePositive unions records whose range sets intersect, keeping the
// accumulators pairwise disjoint as an invariant: each defect folds into
// the first accumulator it touches, and any further accumulators it
// bridges fold in after it. A defect with several matched ranges
// (duplicate markup recorded at every occurrence) can touch units far
// apart in the document, so a plain open/close scan is not enough.
func mergePositive(defects []*core.Defect) []core.EditUnit {
	if len(defects) == 0 {
		return nil
	}

	sorted := append([]*core.Defect(nil), defects...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ranges[0].Start < sorted[j].Ranges[0].Start
	})

	var accs []*accumulator
	for _, d := range sorted {
		var target *accumulator
		var kept []*accumulator
		for _, acc := range accs {
			if !rangeSetsIntersect(acc.ranges, d.Ranges) {
				kept = append(kept, acc)
				continue
			}
			if target == nil {
				target = acc
				kept = append(kept, acc)
				continue
			}
			target.fold(acc)
		}
		if target == nil {
			kept = append(kept, newAccumulator(d))
		} else {
			target.absorb(d)
		}
		accs = kept
	}

	units := make([]core.EditUnit, 0, len(accs))
	for _, acc := range accs {
		units = append(units, acc.finalize())
	}
	return units
}

func newAccumulator(d *core.Defect) *accumulator {
	return &accumulator{
		titles:  []string{d.Title},
		ranges:  append([]core.LineRange(nil), d.Ranges...),
		context: d.MatchedText,
	}
}

func (a *accumulator) absorb(d *core.Defect) {
	a.titles = append(a.titles, d.Title)
	a.ranges = append(a.ranges, d.Ranges...)
	// Keep the longer snippet as representative context.
	if len(d.MatchedText) > len(a.context) {
		a.context = d.MatchedText
	}
}

// fold takes over another accumulator's contents when a defect bridges
// the two.
func (a *accumulator) fold(other *accumulator) {
	a.titles = append(a.titles, other.titles...)
	a.ranges = append(a.ranges, other.ranges...)
	if len(other.context) > len(a.context) {
		a.context = other.context
	}
}

func (a *accumulator) finalize() core.EditUnit {
	return core.EditUnit{
		Title:       combineTitles(a.titles),
		ContextHTML: a.context,
		Ranges:      coalesce(a.ranges),
		Kind:        core.EditReplace,
	}
}

func rangeSetsIntersect(a, b []core.LineRange) bool {
	for _, ra := range a {
		for _, rb := range b {
			if ra.Intersects(rb) {
				return true
			}
		}
	}
	return false
}

// coalesce sorts the union of sub-ranges and folds overlapping or
// adjacent ones into disjoint spans.
func coalesce(ranges []core.LineRange) []core.LineRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := append([]core.LineRange(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := []core.LineRange{sorted[0]}
	for _, r := range sorted[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// combineTitles synthesizes a human-readable title for a folded unit:
// the single phrase when all titles agree, "<phrase> (multiple locations)"
// when one unique phrase repeats, else a capped "Multiple issues" listing.
// The total count is appended only when phrases were actually truncated.
func combineTitles(titles []string) string {
	if len(titles) == 1 {
		return titles[0]
	}

	var unique []string
	seen := map[string]bool{}
	for _, t := range titles {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 1 {
		return fmt.Sprintf("%s (multiple locations)", unique[0])
	}

	if len(unique) > titleListCap {
		return fmt.Sprintf("Multiple issues: %s (+%d total)",
			strings.Join(unique[:titleListCap], "; "), len(unique))
	}
	return "Multiple issues: " + strings.Join(unique, "; ")
}
