// Package locate — tree navigation helpers.
// Tree paths and selectors address the audit tool's re-parsed document;
// both must tolerate differences against our own parse (wrapper elements
// the parser inserts, case differences in tag names).
package locate

import (
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// byPath descends a tree path of the form
// "1,HTML,2,BODY,10,TABLE,0,TBODY,0,TR,0,TD,0,DIV,2,A".
// Indices are 0-based among element children at each level. When the child
// at an index has an unexpected tag, up to 2 subsequent siblings are probed
// for a tag match before giving up; this tolerates parser-inserted wrapper
// elements such as tbody.
func (l *Locator) byPath(path string) *html.Node {
	parts := strings.Split(path, ",")
	if len(parts) < 2 || len(parts)%2 != 0 {
		return nil
	}

	node := documentElement(l.root)
	if node == nil {
		return nil
	}
	if !strings.EqualFold(node.Data, parts[1]) {
		return nil
	}

	for i := 2; i+1 < len(parts); i += 2 {
		idx := parseIndex(parts[i])
		tag := strings.ToLower(parts[i+1])
		kids := elementChildren(node)
		if idx < 0 || idx >= len(kids) {
			return nil
		}
		next := kids[idx]
		if !strings.EqualFold(next.Data, tag) {
			next = nil
			for probe := idx + 1; probe < len(kids) && probe <= idx+2; probe++ {
				if strings.EqualFold(kids[probe].Data, tag) {
					next = kids[probe]
					break
				}
			}
			if next == nil {
				return nil
			}
		}
		node = next
	}
	return node
}

// bySelector runs the CSS selector and, when it yields several candidates,
// disambiguates with attributes extracted from the snippet text: an exact
// attribute match wins, else the first rel-only match, else the first
// candidate.
func (l *Locator) bySelector(selector, snippet string) *html.Node {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		l.logger.Debug("selector did not compile", "selector", selector, "error", err)
		return nil
	}
	candidates := sel.MatchAll(l.root)
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 || snippet == "" {
		return candidates[0]
	}

	want := snippetAttrs(snippet, "rel", "hreflang", "href")
	if len(want) == 0 {
		return candidates[0]
	}

	for _, cand := range candidates {
		if attrsMatch(cand, want) {
			return cand
		}
	}
	if rel, ok := want["rel"]; ok {
		for _, cand := range candidates {
			if attrValue(cand, "rel") == rel {
				return cand
			}
		}
	}
	return candidates[0]
}

var attrPairRe = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9_:-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// snippetAttrs pulls the named attribute values out of a snippet string.
func snippetAttrs(snippet string, names ...string) map[string]string {
	attrs := map[string]string{}
	for _, m := range attrPairRe.FindAllStringSubmatch(snippet, -1) {
		key := strings.ToLower(m[1])
		val := m[2]
		if val == "" {
			val = m[3]
		}
		for _, name := range names {
			if key == name {
				attrs[key] = val
			}
		}
	}
	return attrs
}

func attrsMatch(n *html.Node, want map[string]string) bool {
	for k, v := range want {
		if attrValue(n, k) != v {
			return false
		}
	}
	return true
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}

// documentElement finds the root <html> element under the document node.
func documentElement(root *html.Node) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func elementChildren(n *html.Node) []*html.Node {
	var kids []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			kids = append(kids, c)
		}
	}
	return kids
}

func parentElement(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func parseIndex(s string) int {
	idx := 0
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return -1
		}
		idx = idx*10 + int(ch-'0')
	}
	if s == "" {
		return -1
	}
	return idx
}

// textContent collects the concatenated text beneath a node.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

var wsRe = regexp.MustCompile(`\s+`)

// collapseSpace trims and collapses runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return wsRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
