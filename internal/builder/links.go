// internal/builder/links.go
package builder

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// encodeLinkSpaces percent-encodes spaces in anchor hrefs. Wiki identifiers
// and category names may contain spaces, and the sanitizer drops any URL
// that does. Everything except rewritten tags is copied through unchanged.
func encodeLinkSpaces(fragment string) string {
	if !strings.Contains(fragment, "<a ") {
		return fragment
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.WriteString(raw)
			continue
		}
		tok := z.Token()
		if tok.DataAtom != atom.A || !encodeHref(tok.Attr) {
			b.WriteString(raw)
			continue
		}
		b.WriteString(tok.String())
	}
	return b.String()
}

func encodeHref(attrs []html.Attribute) bool {
	changed := false
	for i, attr := range attrs {
		if attr.Key == "href" && strings.Contains(attr.Val, " ") {
			attrs[i].Val = strings.ReplaceAll(attr.Val, " ", "%20")
			changed = true
		}
	}
	return changed
}
