// Package locate — snippet-only fallback chain.
// Used when no tree node could be resolved, or when a resolved node could
// not be mapped back to the text. Each step tolerates one more way the
// audit tool's snippet can disagree with the serialized source: entity
// escaping, self-closing slash style, whitespace reflow, and rewritten
// attribute values (base-URL path artifacts).
package locate

import (
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
)

// findSnippet tries the fallback strategies in order and returns the
// first matching [start, end) byte span.
func (l *Locator) findSnippet(snippet string) (int, int, bool) {
	if off := strings.Index(l.raw, snippet); off >= 0 {
		return off, off + len(snippet), true
	}

	for _, variant := range normalizedVariants(snippet) {
		if off := strings.Index(l.raw, variant); off >= 0 {
			return off, off + len(variant), true
		}
	}

	if start, end, ok := l.fuzzyWhitespaceSearch(snippet); ok {
		return start, end, true
	}

	return l.partialAttributeSearch(snippet)
}

// normalizedVariants generates alternate spellings of the snippet:
// entity-unescaped quotes and collapsed self-closing tag styles.
func normalizedVariants(snippet string) []string {
	seen := map[string]bool{snippet: true}
	var variants []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}

	unescaped := stdhtml.UnescapeString(snippet)
	add(unescaped)
	for _, base := range []string{snippet, unescaped} {
		add(strings.ReplaceAll(base, " />", ">"))
		add(strings.ReplaceAll(base, "/>", ">"))
		add(strings.ReplaceAll(base, " >", ">"))
	}
	return variants
}

// fuzzyWhitespaceSearch collapses whitespace runs in both the snippet and
// the document, matches in the collapsed space, then realigns the match
// back to original byte offsets character by character.
func (l *Locator) fuzzyWhitespaceSearch(snippet string) (int, int, bool) {
	needle := collapseSpace(snippet)
	if needle == "" {
		return 0, 0, false
	}

	collapsed := make([]byte, 0, len(l.raw))
	offsets := make([]int, 0, len(l.raw))
	inSpace := false
	for i := 0; i < len(l.raw); i++ {
		c := l.raw[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if !inSpace {
				collapsed = append(collapsed, ' ')
				offsets = append(offsets, i)
				inSpace = true
			}
			continue
		}
		collapsed = append(collapsed, c)
		offsets = append(offsets, i)
		inSpace = false
	}

	off := strings.Index(string(collapsed), needle)
	if off < 0 {
		return 0, 0, false
	}
	start := offsets[off]
	end := offsets[off+len(needle)-1] + 1
	return start, end, true
}

// suspectAttrs are the attributes whose values the audit tool is known to
// rewrite against a different base URL.
var suspectAttrs = map[string]bool{"href": true, "src": true}

var tagNameRe = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9-]*)\b`)

// partialAttributeSearch handles attribute-bearing start-tag snippets whose
// one suspect attribute value differs from the source. The selector built
// from the snippet deliberately excludes the suspect attributes; candidates
// are then scored by how many of the remaining attributes match.
func (l *Locator) partialAttributeSearch(snippet string) (int, int, bool) {
	m := tagNameRe.FindStringSubmatch(snippet)
	if m == nil {
		return 0, 0, false
	}
	tag := strings.ToLower(m[1])

	attrs := map[string]string{}
	for _, pair := range attrPairRe.FindAllStringSubmatch(snippet, -1) {
		key := strings.ToLower(pair[1])
		val := pair[2]
		if val == "" {
			val = pair[3]
		}
		attrs[key] = val
	}
	if len(attrs) == 0 {
		return 0, 0, false
	}

	selector := tag
	kept := 0
	for key, val := range attrs {
		if suspectAttrs[key] || strings.ContainsAny(val, `"\`) {
			continue
		}
		selector += `[` + key + `="` + val + `"]`
		kept++
	}
	if kept == 0 {
		// Nothing safe to select on beyond the tag itself.
		selector = tag
	}

	sel, err := cascadia.Compile(selector)
	if err != nil {
		return 0, 0, false
	}
	candidates := sel.MatchAll(l.root)
	if len(candidates) == 0 {
		return 0, 0, false
	}

	best := candidates[0]
	bestScore := -1
	for _, cand := range candidates {
		score := 0
		for key, val := range attrs {
			if attrValue(cand, key) == val {
				score++
			}
		}
		if score > bestScore {
			best = cand
			bestScore = score
		}
	}

	start, end, ok := l.mapElement(best, "")
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}
