// internal/wikitext/meta.go
package wikitext

import (
	"strings"
)

// MaxDescriptionLength is the number of characters kept by Description.
const MaxDescriptionLength = 200

// Title returns the first line of markup with '=' and whitespace trimmed.
func Title(markup string) string {
	first, _, _ := strings.Cut(markup, "\n")
	return trimHeading(first)
}

// Description returns the first plain text line after the title, with wiki
// links reduced to their text. Headings and list items are skipped.
func Description(markup string) string {
	lines := strings.Split(markup, "\n")
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "=") || strings.HasPrefix(line, "*") {
			continue
		}
		return truncate(unwrapWikiLinks(line), MaxDescriptionLength)
	}
	return ""
}

// HasCategory reports whether markup carries the tag [[Category:name]].
func HasCategory(markup, name string) bool {
	return strings.Contains(markup, categoryPrefix+name+"]]")
}

func unwrapWikiLinks(s string) string {
	return rewrite(s, func(s string, at int) (string, int, bool) {
		if !strings.HasPrefix(s[at:], "[[") {
			return "", 0, false
		}
		k := strings.Index(s[at+2:], "]]")
		if k < 0 {
			return "", 0, false
		}
		return s[at+2 : at+2+k], at + 2 + k + 2, true
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
