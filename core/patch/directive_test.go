package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirective(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected Directive
		body     string
	}{
		{
			name:     "no header defaults to insert",
			payload:  "<meta charset=\"utf-8\">",
			expected: Directive{Mode: ModeInsert},
			body:     "<meta charset=\"utf-8\">",
		},
		{
			name:     "insert with anchor",
			payload:  "<!--AI-ACTION: MODE: INSERT; WHERE: head_end-->\n<meta x>",
			expected: Directive{Mode: ModeInsert, Where: "head_end"},
			body:     "<meta x>",
		},
		{
			name:     "replace mode",
			payload:  "<!--AI-ACTION: MODE: REPLACE; WHERE: after_title-->\n<title>T</title>",
			expected: Directive{Mode: ModeReplace, Where: "after_title"},
			body:     "<title>T</title>",
		},
		{
			name:     "modify tag with attr",
			payload:  `<!--AI-ACTION: MODE: MODIFY_TAG; TARGET: html; ATTR: lang="en"-->`,
			expected: Directive{Mode: ModeModifyTag, Target: "html", Attr: `lang="en"`},
			body:     "",
		},
		{
			name:     "unknown mode keeps insert",
			payload:  "<!--AI-ACTION: MODE: TELEPORT-->\nbody",
			expected: Directive{Mode: ModeInsert},
			body:     "body",
		},
		{
			name:     "keys are case insensitive",
			payload:  "<!--AI-ACTION: mode: replace; where: HEAD_START-->\nx",
			expected: Directive{Mode: ModeReplace, Where: "head_start"},
			body:     "x",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir, body := ParseDirective(tc.payload)
			assert.Equal(t, tc.expected, dir)
			assert.Equal(t, tc.body, body)
		})
	}
}

func TestModifyTagLine(t *testing.T) {
	t.Run("adds new attribute", func(t *testing.T) {
		out, ok := modifyTagLine("<html>", "html", `lang="en"`)
		assert.True(t, ok)
		assert.Equal(t, `<html lang="en">`, out)
	})

	t.Run("overwrites existing attribute", func(t *testing.T) {
		out, ok := modifyTagLine(`<html lang="fr" dir="ltr">`, "html", `lang="en"`)
		assert.True(t, ok)
		assert.Equal(t, `<html lang="en" dir="ltr">`, out)
	})

	t.Run("last writer wins across pairs", func(t *testing.T) {
		out, ok := modifyTagLine("<html>", "html", `lang="fr" lang="en"`)
		assert.True(t, ok)
		assert.Equal(t, `<html lang="en">`, out)
	})

	t.Run("self closing tag", func(t *testing.T) {
		out, ok := modifyTagLine(`<meta charset="utf-8"/>`, "meta", `name="robots"`)
		assert.True(t, ok)
		assert.Equal(t, `<meta charset="utf-8" name="robots"/>`, out)
	})

	t.Run("target absent", func(t *testing.T) {
		out, ok := modifyTagLine("<p>hi</p>", "html", `lang="en"`)
		assert.False(t, ok)
		assert.Equal(t, "<p>hi</p>", out)
	})

	t.Run("surrounding text preserved", func(t *testing.T) {
		out, ok := modifyTagLine(`before <img src="a.png"> after`, "img", `alt="A"`)
		assert.True(t, ok)
		assert.Equal(t, `before <img src="a.png" alt="A"> after`, out)
	})
}
