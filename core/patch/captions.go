// Package patch — accessible-text backfill.
// Replacement payloads can mark an image's alt attribute with a reserved
// placeholder meaning "caption unknown". Before a payload is committed,
// each marked image is captioned through the collaborator under a hard
// per-image timeout; any failure resolves to the deterministic filename
// fallback, so backfill can never stall the pipeline.
package patch

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/gaurav-prasanna/seopatch/core/caption"
)

// CaptionPlaceholder is the reserved alt-text marker the rewrite
// collaborator emits when it cannot describe an image.
const CaptionPlaceholder = "__AI_CAPTION__"

const captionTimeout = 10 * time.Second

var (
	imgTagRe = regexp.MustCompile(`(?i)<img\b[^>]*>`)
	srcRe    = regexp.MustCompile(`(?i)\bsrc\s*=\s*["']([^"']+)["']`)
)

// backfillCaptions substitutes a real caption for every placeholder-marked
// image tag in the payload.
func (a *Applier) backfillCaptions(ctx context.Context, payload string) string {
	if !strings.Contains(payload, CaptionPlaceholder) {
		return payload
	}

	return imgTagRe.ReplaceAllStringFunc(payload, func(tag string) string {
		if !strings.Contains(tag, CaptionPlaceholder) {
			return tag
		}
		src := ""
		if m := srcRe.FindStringSubmatch(tag); m != nil {
			src = m[1]
		}
		text := a.captionFor(ctx, src)
		text = strings.ReplaceAll(text, `"`, "&quot;")
		return strings.ReplaceAll(tag, CaptionPlaceholder, text)
	})
}

// captionFor asks the collaborator for a caption under the per-image
// timeout; timeouts, errors and empty results all take the filename
// fallback.
func (a *Applier) captionFor(ctx context.Context, src string) string {
	if src == "" || a.captioner == nil {
		return caption.FallbackFromURL(src)
	}

	cctx, cancel := context.WithTimeout(ctx, captionTimeout)
	defer cancel()

	text, err := a.captioner.Caption(cctx, src)
	if err != nil || strings.TrimSpace(text) == "" {
		a.logger.Warn("caption lookup failed, deriving from filename", "src", src, "error", err)
		return caption.FallbackFromURL(src)
	}
	return strings.TrimSpace(text)
}
