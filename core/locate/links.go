// Package locate — link-style resolution.
// Anchor defects carry an href plus visible text rather than a node
// descriptor. The href the audit tool reports often differs from the
// source: the tool audits against a local loopback copy of the page, so
// hostnames and leading slashes must be normalized before comparing, and
// as a last resort only the trailing path segment and query-parameter key
// set are compared.
package locate

import (
	"net/url"
	"path"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/gaurav-prasanna/seopatch/core"
)

var anchorSel = cascadia.MustCompile("a[href]")

// loopbackHosts are hostnames stripped before href comparison.
var loopbackHosts = map[string]bool{
	"localhost":            true,
	"127.0.0.1":            true,
	"0.0.0.0":              true,
	"[::1]":                true,
	"host.docker.internal": true,
}

func (l *Locator) resolveLink(d *core.Defect, ref core.LinkRef) {
	if ref.Href == "" {
		return
	}
	anchors := anchorSel.MatchAll(l.root)
	if len(anchors) == 0 {
		return
	}

	wantText := collapseSpace(ref.Text)

	var hrefOnly []*html.Node
	var exact []*html.Node
	for _, a := range anchors {
		if !hrefEquivalent(attrValue(a, "href"), ref.Href) {
			continue
		}
		hrefOnly = append(hrefOnly, a)
		if wantText == "" || collapseSpace(textContent(a)) == wantText {
			exact = append(exact, a)
		}
	}

	target := exact
	if len(target) == 0 {
		target = hrefOnly
	}
	if len(target) == 0 {
		return
	}

	if start, end, ok := l.mapElement(target[0], ""); ok {
		l.commit(d, start, end)
	}
}

// hrefEquivalent reports whether two hrefs address the same resource
// after normalization.
func hrefEquivalent(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}

	na := normalizeHref(a)
	nb := normalizeHref(b)
	if na == nb {
		return true
	}
	if strings.TrimPrefix(na, "/") == strings.TrimPrefix(nb, "/") {
		return true
	}

	// Last resort: same trailing path segment and the same set of query
	// parameter keys.
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	if path.Base(ua.Path) == "" || path.Base(ua.Path) != path.Base(ub.Path) {
		return false
	}
	return queryKeysEqual(ua.Query(), ub.Query())
}

// normalizeHref strips loopback hostnames, leaving the path and query.
func normalizeHref(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if loopbackHosts[u.Hostname()] || loopbackHosts[u.Host] {
		u.Scheme = ""
		u.Host = ""
		u.User = nil
	}
	u.Fragment = ""
	return u.String()
}

func queryKeysEqual(a, b url.Values) bool {
	if len(a) != len(b) {
		return false
	}
	for key := range a {
		if _, ok := b[key]; !ok {
			return false
		}
	}
	return true
}
