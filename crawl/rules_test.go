package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSameDomain(t *testing.T) {
	assert.True(t, IsSameDomain("https://example.com/page", "example.com"))
	assert.False(t, IsSameDomain("https://other.com/page", "example.com"))
	assert.False(t, IsSameDomain("https://sub.example.com/", "example.com"))
}

func TestIsStaticAsset(t *testing.T) {
	assert.True(t, IsStaticAsset("https://example.com/logo.png"))
	assert.True(t, IsStaticAsset("https://example.com/app.js"))
	assert.True(t, IsStaticAsset("https://example.com/sitemap.xml"))
	assert.False(t, IsStaticAsset("https://example.com/pricing"))
	assert.False(t, IsStaticAsset("https://example.com/docs/intro.html"))
}

func TestNormalizeURL(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"https://example.com/page/", "https://example.com/page"},
		{"https://example.com/page#section", "https://example.com/page"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/a?b=c", "https://example.com/a?b=c"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NormalizeURL(tc.input))
	}
}
