// internal/wikitext/wikitext.go

// Package wikitext converts WikiText markup into HTML fragments.
//
// A conversion is a single pass over the lines of a page. Each line is folded
// into a state value that tracks the current section, whether a list is open
// and three output buffers: body content, external links and categories. The
// buffers are assembled in a fixed order once every line has been consumed.
package wikitext

import (
	"fmt"
	"strings"
	"unicode"
)

// PageIndex reports whether a page exists. Internal wiki links to missing
// pages are rendered with class 'new'.
type PageIndex interface {
	Has(id string) bool
}

// PageSet is a PageIndex backed by a set of identifiers.
type PageSet map[string]struct{}

// NewPageSet builds a PageSet from the given identifiers.
func NewPageSet(ids ...string) PageSet {
	s := make(PageSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has implements PageIndex.
func (s PageSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Document is the result of converting one page.
type Document struct {
	HTML       string
	Categories []string
}

// Section is the part of a page a line belongs to. Sections only move forward.
type Section int

const (
	SectionContent Section = iota
	SectionExternalLinks
	SectionReferences
)

func (s Section) String() string {
	switch s {
	case SectionContent:
		return "content"
	case SectionExternalLinks:
		return "external-links"
	case SectionReferences:
		return "references"
	}
	return fmt.Sprintf("section(%d)", int(s))
}

const categoryPrefix = "[[Category:"

var sentinels = map[string]Section{
	"== External Links ==": SectionExternalLinks,
	"= External Links =":   SectionExternalLinks,
	"== References ==":     SectionReferences,
	"= References =":       SectionReferences,
}

// state is everything a conversion carries from one line to the next.
type state struct {
	section       Section
	listOpen      bool
	content       []string
	externalLinks []string
	categories    []string
}

// Convert renders markup to HTML. It never fails: lines it cannot make sense
// of are either dropped (external links) or passed through as paragraphs.
func Convert(markup string, pages PageIndex) Document {
	if pages == nil {
		pages = PageSet(nil)
	}
	st := state{section: SectionContent}
	for _, line := range splitLines(markup) {
		st = step(st, line, pages)
	}
	st = finish(st)
	return Document{
		HTML:       assemble(st),
		Categories: st.categories,
	}
}

// splitLines splits markup into lines and drops a second line that repeats
// the title.
func splitLines(markup string) []string {
	lines := strings.Split(markup, "\n")
	if len(lines) > 1 && trimHeading(lines[0]) == trimHeading(lines[1]) {
		lines = append(lines[:1:1], lines[2:]...)
	}
	return lines
}

// step folds one line into the conversion state.
func step(st state, raw string, pages PageIndex) state {
	line := strings.TrimSpace(raw)

	if next, ok := sentinels[line]; ok {
		st.section = next
		return st
	}
	if strings.HasPrefix(line, categoryPrefix) {
		name := strings.TrimSuffix(strings.TrimPrefix(line, categoryPrefix), "]]")
		st.categories = append(st.categories, name)
		return st
	}

	switch st.section {
	case SectionContent:
		return contentLine(st, rewriteLinks(line, pages))
	case SectionExternalLinks:
		if item, ok := externalLinkItem(line); ok {
			st.externalLinks = append(st.externalLinks, item)
		}
	case SectionReferences:
		// References have no rendering.
	}
	return st
}

func contentLine(st state, line string) state {
	switch {
	case strings.HasPrefix(line, "==="):
		st.content = append(st.content, heading(3, line))
	case strings.HasPrefix(line, "=="):
		st.content = append(st.content, heading(2, line))
	case strings.HasPrefix(line, "="):
		st.content = append(st.content, heading(1, line))
	case strings.HasPrefix(line, "*"):
		if !st.listOpen {
			st.content = append(st.content, "<ul>")
			st.listOpen = true
		}
		st.content = append(st.content, "<li>"+strings.TrimLeft(line, "* ")+"</li>")
	case line != "":
		if st.listOpen {
			st.content = append(st.content, "</ul>")
			st.listOpen = false
		}
		st.content = append(st.content, "<p>"+line+"</p>")
	}
	return st
}

// heading renders a heading line. An open list stays open.
func heading(level int, line string) string {
	text := trimHeading(line)
	anchor := strings.ReplaceAll(strings.ToLower(text), " ", "-")
	return fmt.Sprintf(`<h%d id="%s">%s</h%d>`, level, anchor, text, level)
}

// externalLinkItem recognises "* [text](url)" at the start of a line.
func externalLinkItem(line string) (string, bool) {
	if !strings.HasPrefix(line, "*") {
		return "", false
	}
	rest := strings.TrimLeftFunc(line[1:], unicode.IsSpace)
	if !strings.HasPrefix(rest, "[") {
		return "", false
	}
	text, url, _, ok := matchExternal(rest, 0)
	if !ok {
		return "", false
	}
	return "<li>" + anchorBlank(url, text) + "</li>", true
}

func finish(st state) state {
	if st.listOpen {
		st.content = append(st.content, "</ul>")
		st.listOpen = false
	}
	return st
}

func assemble(st state) string {
	var b strings.Builder
	b.WriteString(strings.Join(st.content, "\n"))

	if len(st.externalLinks) > 0 {
		b.WriteString("\n<h2>External Links</h2>\n<ul>\n")
		b.WriteString(strings.Join(st.externalLinks, "\n"))
		b.WriteString("\n</ul>")
	}

	if len(st.categories) > 0 {
		b.WriteString("\n<div class=\"categories\">")
		for _, name := range st.categories {
			fmt.Fprintf(&b, `<div class="category"><a href="/category/%s">Category:%s</a></div>`, name, name)
		}
		b.WriteString("</div>")
	}
	return b.String()
}

// trimHeading strips '=' and whitespace from both ends of s.
func trimHeading(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == '=' || unicode.IsSpace(r)
	})
}
