// Package rewrite fills edit units with replacement HTML through an
// external text-rewriting model. This file builds the page context the
// model sees alongside each batch: every title, every meta description,
// every heading, and the main content converted to plain Markdown text.
package rewrite

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/seopatch/core/chunk"
	"github.com/gaurav-prasanna/seopatch/core/extract"
)

// contextWords caps the main-content text included in the prompt.
const contextWords = 500

// ExtractContext summarizes the document for the rewrite model. Repeated
// elements are all listed, not just the first: duplicate titles and
// descriptions are themselves defects the model needs to see.
func ExtractContext(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parsing document for context: %w", err)
	}

	var titles []string
	doc.Find("title").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, strings.TrimSpace(s.Text()))
	})

	var descriptions []string
	doc.Find(`meta[name="description"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			descriptions = append(descriptions, content)
		}
	})

	var headings []string
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		headings = append(headings, strings.TrimSpace(s.Text()))
	})

	mainText := mainContentText(raw)

	var b strings.Builder
	fmt.Fprintf(&b, "ALL_TITLES: %s\n", strings.Join(titles, " | "))
	fmt.Fprintf(&b, "ALL_META_DESCRIPTIONS: %s\n", strings.Join(descriptions, " | "))
	fmt.Fprintf(&b, "ALL_HEADINGS: %s\n", strings.Join(headings, " | "))
	fmt.Fprintf(&b, "PAGE_TEXT: %s\n", mainText)
	return b.String(), nil
}

// mainContentText isolates the main content, converts it to Markdown and
// truncates it to the first chunk of words.
func mainContentText(raw string) string {
	content, err := extract.New().Extract(raw)
	if err != nil {
		return ""
	}
	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		return ""
	}
	chunks := chunk.New(contextWords).Chunk(markdown)
	if len(chunks) == 0 {
		return ""
	}
	if len(chunks) > 1 {
		return chunks[0] + "..."
	}
	return chunks[0]
}
