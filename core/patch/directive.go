// Package patch — insertion directive parsing.
// The rewrite collaborator can prefix its payload with a header of the
// shape <!--AI-ACTION: MODE: INSERT; WHERE: after_title--> to steer how
// the payload is applied. Absent or malformed headers default to a plain
// insert with an anchor inferred from the defect title.
package patch

import (
	"regexp"
	"strings"
)

// Mode selects how an insertion payload is applied.
type Mode int

const (
	ModeInsert Mode = iota
	ModeReplace
	ModeModifyTag
)

// Directive is the parsed AI-ACTION header.
type Directive struct {
	Mode   Mode
	Where  string
	Target string
	Attr   string
}

var directiveRe = regexp.MustCompile(`(?s)^\s*<!--AI-ACTION:\s*(.*?)\s*-->\s*\n?`)

// ParseDirective splits an optional directive header off the payload and
// returns the directive plus the remaining body.
func ParseDirective(payload string) (Directive, string) {
	dir := Directive{Mode: ModeInsert}

	loc := directiveRe.FindStringSubmatchIndex(payload)
	if loc == nil {
		return dir, payload
	}
	header := payload[loc[2]:loc[3]]
	body := payload[loc[1]:]

	for _, field := range strings.Split(header, ";") {
		key, value, found := strings.Cut(field, ":")
		if !found {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "MODE":
			switch strings.ToUpper(value) {
			case "REPLACE":
				dir.Mode = ModeReplace
			case "MODIFY_TAG":
				dir.Mode = ModeModifyTag
			case "INSERT":
				dir.Mode = ModeInsert
			}
		case "WHERE":
			dir.Where = strings.ToLower(value)
		case "TARGET":
			dir.Target = strings.ToLower(value)
		case "ATTR":
			dir.Attr = value
		}
	}

	return dir, body
}

var tagAttrPairRe = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9_:-]*)\s*=\s*"([^"]*)"`)

// modifyTagLine inserts the attribute text into the target tag's opening
// tag on this line, immediately before its closing '>'. Attributes already
// present on the tag are overwritten rather than duplicated.
func modifyTagLine(line, target, attr string) (string, bool) {
	tagRe, err := regexp.Compile(`(?i)<` + regexp.QuoteMeta(target) + `\b[^>]*>`)
	if err != nil {
		return line, false
	}
	loc := tagRe.FindStringIndex(line)
	if loc == nil {
		return line, false
	}

	tag := line[loc[0]:loc[1]]
	pairs := tagAttrPairRe.FindAllStringSubmatch(attr, -1)
	if len(pairs) == 0 {
		tag = insertBeforeClose(tag, attr)
	} else {
		for _, pair := range pairs {
			name, value := pair[1], pair[2]
			existing := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*=\s*"[^"]*"`)
			if existing.MatchString(tag) {
				tag = existing.ReplaceAllString(tag, name+`="`+value+`"`)
			} else {
				tag = insertBeforeClose(tag, name+`="`+value+`"`)
			}
		}
	}

	return line[:loc[0]] + tag + line[loc[1]:], true
}

func insertBeforeClose(tag, attr string) string {
	closeAt := strings.LastIndex(tag, ">")
	if closeAt < 0 {
		return tag
	}
	insertAt := closeAt
	if strings.HasSuffix(tag[:closeAt+1], "/>") {
		insertAt = closeAt - 1
	}
	return strings.TrimRight(tag[:insertAt], " ") + " " + attr + tag[insertAt:]
}
