package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackFromURL(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "hyphenated filename",
			input:    "https://cdn.example.com/img/sunny-beach-day.jpg",
			expected: "Sunny Beach Day",
		},
		{
			name:     "underscores and dots",
			input:    "/assets/product_photo.front.png",
			expected: "Product Photo Front",
		},
		{
			name:     "bare filename",
			input:    "hero-image.webp",
			expected: "Hero Image",
		},
		{
			name:     "query string ignored",
			input:    "https://example.com/team-photo.jpg?w=800&h=600",
			expected: "Team Photo",
		},
		{
			name:     "too short becomes Image",
			input:    "https://example.com/a.png",
			expected: "Image",
		},
		{
			name:     "empty url",
			input:    "",
			expected: "Image",
		},
		{
			name:     "already capitalized stays",
			input:    "/img/Company-Logo.svg",
			expected: "Company Logo",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FallbackFromURL(tc.input))
		})
	}
}

func TestFallbackFromURL_Truncates(t *testing.T) {
	long := "/img/a-very-long-file-name-that-keeps-going-and-going-and-going-forever.jpg"
	got := FallbackFromURL(long)
	assert.LessOrEqual(t, len(got), 50)
	assert.NotEmpty(t, got)
}

func TestClean(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"a picture of a red bicycle", "A red bicycle"},
		{"An image of two dogs playing", "Two dogs playing"},
		{"Mountain lake at sunrise", "Mountain lake at sunrise"},
		{"  a photo of a laptop  ", "A laptop"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Clean(tc.input))
	}
}
