// Package caption produces short accessible-text for images that lack it.
// The model-backed path can fail or time out; every failure mode resolves
// to a deterministic fallback derived from the image URL, so captioning
// can never stall or abort the pipeline.
package caption

import (
	"net/url"
	"path"
	"strings"
)

// fallbackMaxLen truncates fallback captions to a usable alt-text length.
const fallbackMaxLen = 50

// FallbackFromURL derives a deterministic caption from the URL's filename:
// extension stripped, separators spaced, title-cased, truncated. URLs that
// yield fewer than 3 characters become the literal word "Image".
func FallbackFromURL(rawURL string) string {
	name := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name = u.Path
	}
	name = path.Base(name)
	name = strings.TrimSuffix(name, path.Ext(name))

	replacer := strings.NewReplacer("-", " ", "_", " ", ".", " ")
	name = replacer.Replace(name)
	name = titleCase(name)
	name = strings.Join(strings.Fields(name), " ")

	if len(name) > fallbackMaxLen {
		name = strings.TrimSpace(name[:fallbackMaxLen])
	}
	if len(name) < 3 {
		return "Image"
	}
	return name
}

func titleCase(s string) string {
	var b strings.Builder
	prevSpace := true
	for _, r := range s {
		switch {
		case r == ' ':
			prevSpace = true
			b.WriteRune(r)
		case prevSpace && r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
			prevSpace = false
		default:
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return b.String()
}
