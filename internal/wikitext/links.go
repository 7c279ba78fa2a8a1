// internal/wikitext/links.go
package wikitext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	youTubePrefix  = "https://www.youtube.com/watch?v="
	uploadedMarker = ") - Uploaded on "
)

// matcher tries to match a link starting at byte offset at. On success it
// returns the replacement markup and the offset just past the match.
type matcher func(s string, at int) (repl string, end int, ok bool)

// rewriteLinks applies the three link rewrites in order. Each pass sees the
// output of the previous one, so citations are rewritten before the generic
// external form can claim them.
func rewriteLinks(line string, pages PageIndex) string {
	if !strings.Contains(line, "[") {
		return line
	}
	line = rewrite(line, youTubeCitation)
	line = rewrite(line, externalLink)
	return rewrite(line, func(s string, at int) (string, int, bool) {
		return wikiLink(s, at, pages)
	})
}

// rewrite scans s left to right and replaces every non-overlapping match.
func rewrite(s string, m matcher) string {
	var b strings.Builder
	last := 0
	for i := 0; i < len(s); {
		if s[i] != '[' {
			i++
			continue
		}
		repl, end, ok := m(s, i)
		if !ok {
			i++
			continue
		}
		b.WriteString(s[last:i])
		b.WriteString(repl)
		i, last = end, end
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

// youTubeCitation matches [text](https://www.youtube.com/watch?v=...) - Uploaded on 2020-01-01
// and drops the upload date.
func youTubeCitation(s string, at int) (string, int, bool) {
	for j := at + 1; j < len(s); j++ {
		if !strings.HasPrefix(s[j:], "](") || !strings.HasPrefix(s[j+2:], youTubePrefix) {
			continue
		}
		start := j + 2
		for m := start + len(youTubePrefix); m < len(s); m++ {
			if !strings.HasPrefix(s[m:], uploadedMarker) {
				continue
			}
			d := m + len(uploadedMarker)
			e := d
			for e < len(s) && (isDigit(s[e]) || s[e] == '-') {
				e++
			}
			if e > d {
				return anchorBlank(s[start:m], s[at+1:j]), e, true
			}
		}
	}
	return "", 0, false
}

// externalLink matches [text](http://url) and [text](https://url).
func externalLink(s string, at int) (string, int, bool) {
	text, url, end, ok := matchExternal(s, at)
	if !ok {
		return "", 0, false
	}
	return anchorBlank(url, text), end, true
}

// matchExternal finds the shortest link text for which the rest of the input
// continues with a valid "(url)" target.
func matchExternal(s string, at int) (text, url string, end int, ok bool) {
	if at >= len(s) || s[at] != '[' {
		return "", "", 0, false
	}
	for j := at + 1; j < len(s); j++ {
		if !strings.HasPrefix(s[j:], "](") {
			continue
		}
		if url, end, ok := externalTarget(s, j+2); ok {
			return s[at+1 : j], url, end, true
		}
	}
	return "", "", 0, false
}

// externalTarget matches an http(s) URL without whitespace or ')' followed
// by the closing ')'.
func externalTarget(s string, i int) (string, int, bool) {
	var n int
	switch {
	case strings.HasPrefix(s[i:], "http://"):
		n = len("http://")
	case strings.HasPrefix(s[i:], "https://"):
		n = len("https://")
	default:
		return "", 0, false
	}
	k := i + n
	for k < len(s) {
		r, size := utf8.DecodeRuneInString(s[k:])
		if r == ')' || unicode.IsSpace(r) {
			break
		}
		k += size
	}
	if k == i+n || k >= len(s) || s[k] != ')' {
		return "", 0, false
	}
	return s[i:k], k + 1, true
}

// wikiLink matches [[Id]]. Links to pages missing from the index get class 'new'.
func wikiLink(s string, at int, pages PageIndex) (string, int, bool) {
	if !strings.HasPrefix(s[at:], "[[") {
		return "", 0, false
	}
	k := strings.Index(s[at+2:], "]]")
	if k < 0 {
		return "", 0, false
	}
	id := s[at+2 : at+2+k]
	end := at + 2 + k + 2
	if pages.Has(id) {
		return `<a href="/topic/` + id + `">` + id + `</a>`, end, true
	}
	return `<a href="/topic/` + id + `" class='new'>` + id + `</a>`, end, true
}

func anchorBlank(url, text string) string {
	return `<a href="` + url + `" target="_blank">` + text + `</a>`
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
