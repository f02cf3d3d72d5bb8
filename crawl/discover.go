// Package crawl provides URL discovery for --all mode: every internal
// page found gets its own audit-and-patch run. Discovery tries
// sitemap.xml first and falls back to breadth-first link crawling.
package crawl

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gaurav-prasanna/seopatch/core"
)

// maxPages bounds the link crawl so a badly linked site cannot turn one
// optimization run into a runaway crawl.
const maxPages = 100

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapIndex struct {
	URLs []sitemapURL `xml:"url"`
}

// DiscoverAll finds all internal URLs to optimize starting from baseURL.
// It first tries sitemap.xml, then falls back to link crawling. The
// baseURL itself is always included.
func DiscoverAll(ctx context.Context, baseURL string, fetcher core.Fetcher) ([]string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	domain := parsed.Host

	sitemapURLStr := fmt.Sprintf("%s://%s/sitemap.xml", parsed.Scheme, domain)
	urls, err := discoverFromSitemap(ctx, sitemapURLStr, domain)
	if err == nil && len(urls) > 0 {
		return urls, nil
	}

	return discoverFromLinks(ctx, baseURL, domain, fetcher)
}

// discoverFromSitemap fetches and parses sitemap.xml for internal URLs.
func discoverFromSitemap(ctx context.Context, sitemapURL string, domain string) ([]string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var sitemap sitemapIndex
	if err := xml.Unmarshal(body, &sitemap); err != nil {
		return nil, err
	}

	var urls []string
	for _, u := range sitemap.URLs {
		if IsSameDomain(u.Loc, domain) && !IsStaticAsset(u.Loc) {
			urls = append(urls, NormalizeURL(u.Loc))
		}
	}
	return urls, nil
}

// discoverFromLinks walks internal links breadth-first, deduplicating as
// it goes. Failed pages are skipped rather than aborting the whole walk.
func discoverFromLinks(ctx context.Context, startURL string, domain string, fetcher core.Fetcher) ([]string, error) {
	var queue []string
	seen := map[string]bool{}
	enqueue := func(u string) {
		if !seen[u] {
			seen[u] = true
			queue = append(queue, u)
		}
	}
	enqueue(NormalizeURL(startURL))

	for i := 0; i < len(queue) && len(seen) < maxPages; i++ {
		result, err := fetcher.Fetch(ctx, queue[i])
		if err != nil {
			continue
		}

		links, err := extractLinks(result.HTML, queue[i])
		if err != nil {
			continue
		}

		for _, link := range links {
			if IsSameDomain(link, domain) && !IsStaticAsset(link) {
				enqueue(NormalizeURL(link))
			}
		}
	}

	return queue, nil
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(baseURL)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		resolved := resolveURL(href, base)
		if resolved != "" {
			links = append(links, resolved)
		}
	})

	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String()
}
