package wikitext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	pages := NewPageSet("Go", "Rust")

	tests := []struct {
		name           string
		markup         string
		want           string
		wantCategories []string
	}{
		{
			name:   "empty document",
			markup: "",
			want:   "",
		},
		{
			name: "headings lists and paragraphs",
			markup: "= Go =\n" +
				"Go is a language.\n" +
				"== History ==\n" +
				"* one\n" +
				"* two\n" +
				"* three\n" +
				"\n" +
				"After list.\n" +
				"[[Category:Languages]]",
			want: "<h1 id=\"go\">Go</h1>\n" +
				"<p>Go is a language.</p>\n" +
				"<h2 id=\"history\">History</h2>\n" +
				"<ul>\n<li>one</li>\n<li>two</li>\n<li>three</li>\n</ul>\n" +
				"<p>After list.</p>\n" +
				`<div class="categories"><div class="category"><a href="/category/Languages">Category:Languages</a></div></div>`,
			wantCategories: []string{"Languages"},
		},
		{
			name:   "duplicate title line is dropped",
			markup: "= Go =\nGo\nText",
			want:   "<h1 id=\"go\">Go</h1>\n<p>Text</p>",
		},
		{
			name:   "heading level three with anchor",
			markup: "=== Early Life ===",
			want:   `<h3 id="early-life">Early Life</h3>`,
		},
		{
			name:   "heading does not close an open list",
			markup: "* a\n== H ==\ntext",
			want:   "<ul>\n<li>a</li>\n<h2 id=\"h\">H</h2>\n</ul>\n<p>text</p>",
		},
		{
			name:   "list closed at end of document",
			markup: "Intro\n* a\n* b",
			want:   "<p>Intro</p>\n<ul>\n<li>a</li>\n<li>b</li>\n</ul>",
		},
		{
			name:   "leading stars and spaces stripped from list items",
			markup: "Intro\n** nested  \n*tight",
			want:   "<p>Intro</p>\n<ul>\n<li>nested</li>\n<li>tight</li>\n</ul>",
		},
		{
			name:   "internal links styled by existence",
			markup: "Intro\nSee [[Go]] and [[Haskell]].",
			want: "<p>Intro</p>\n" +
				`<p>See <a href="/topic/Go">Go</a> and <a href="/topic/Haskell" class='new'>Haskell</a>.</p>`,
		},
		{
			name:   "youtube citation drops upload date",
			markup: "Intro\n[Talk](https://www.youtube.com/watch?v=abc) - Uploaded on 2020-01-01",
			want:   "<p>Intro</p>\n" + `<p><a href="https://www.youtube.com/watch?v=abc" target="_blank">Talk</a></p>`,
		},
		{
			name:   "external link in paragraph",
			markup: "Intro\nRead [the docs](https://go.dev/doc) now",
			want:   "<p>Intro</p>\n" + `<p>Read <a href="https://go.dev/doc" target="_blank">the docs</a> now</p>`,
		},
		{
			name: "external links section rendered after content",
			markup: "Body\n" +
				"== External Links ==\n" +
				"* [Go](https://go.dev)\n" +
				"* not a link\n" +
				"*[Spec](http://spec.example)\n" +
				"plain text is dropped\n" +
				"[[Category:Lang]]",
			want: "<p>Body</p>\n" +
				"<h2>External Links</h2>\n<ul>\n" +
				`<li><a href="https://go.dev" target="_blank">Go</a></li>` + "\n" +
				`<li><a href="http://spec.example" target="_blank">Spec</a></li>` + "\n" +
				"</ul>\n" +
				`<div class="categories"><div class="category"><a href="/category/Lang">Category:Lang</a></div></div>`,
			wantCategories: []string{"Lang"},
		},
		{
			name:   "external links section only accepts http urls",
			markup: "Body\n= External Links =\n* [FTP](ftp://files.example)",
			want:   "<p>Body</p>",
		},
		{
			name:   "references section is a sink",
			markup: "Text\n== References ==\n* [a](http://x)\nmore",
			want:   "<p>Text</p>",
		},
		{
			name:   "content does not resume after leaving it",
			markup: "== External Links ==\n= Title =\nplain",
			want:   "",
		},
		{
			name:   "categories render last regardless of position",
			markup: "[[Category:A]]\nText\n[[Category:B]]\n* item",
			want: "<p>Text</p>\n<ul>\n<li>item</li>\n</ul>\n" + `<div class="categories">` +
				`<div class="category"><a href="/category/A">Category:A</a></div>` +
				`<div class="category"><a href="/category/B">Category:B</a></div>` +
				`</div>`,
			wantCategories: []string{"A", "B"},
		},
		{
			name:   "category tag inside references section",
			markup: "Text\n== References ==\n[[Category:Late]]",
			want: "<p>Text</p>\n" +
				`<div class="categories"><div class="category"><a href="/category/Late">Category:Late</a></div></div>`,
			wantCategories: []string{"Late"},
		},
		{
			name:   "surrounding whitespace is trimmed",
			markup: "Intro\n   indented text  \r",
			want:   "<p>Intro</p>\n<p>indented text</p>",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := Convert(tt.markup, pages)
			assert.Equal(t, tt.want, doc.HTML)
			assert.Equal(t, tt.wantCategories, doc.Categories)
		})
	}
}

func TestConvertNilIndexMarksEveryLinkNew(t *testing.T) {
	t.Parallel()

	doc := Convert("Intro\n[[Go]]", nil)
	assert.Contains(t, doc.HTML, `<a href="/topic/Go" class='new'>Go</a>`)
}

func TestConvertListBalance(t *testing.T) {
	t.Parallel()

	docs := []string{
		"* a\n* b\n\nparagraph",
		"Intro\n* a\nmiddle\n* b",
		"* only",
		"Intro\n* a\n== External Links ==\n* [x](http://x)",
		"Intro\n* a\n[[Category:C]]\n* b\ntail",
	}
	for _, markup := range docs {
		html := Convert(markup, nil).HTML
		assert.Equal(t, strings.Count(html, "<ul>"), strings.Count(html, "</ul>"), markup)
	}
}

func TestConvertThreeItemsThenParagraph(t *testing.T) {
	t.Parallel()

	html := Convert("Intro\n* one\n* two\n* three\n\nAfter", nil).HTML

	require.Equal(t, 1, strings.Count(html, "<ul>"))
	assert.Equal(t, 3, strings.Count(html, "<li>"))
	assert.Less(t, strings.Index(html, "</ul>"), strings.Index(html, "<p>After</p>"))
}

func TestConvertIsIdempotent(t *testing.T) {
	t.Parallel()

	markup := "= Go =\nGo\nSee [[Go]] and [[C]].\n* a\n== External Links ==\n* [Site](https://go.dev)\n[[Category:Lang]]"
	pages := NewPageSet("Go")

	first := Convert(markup, pages)
	second := Convert(markup, pages)
	assert.Equal(t, first, second)
}

func TestStep(t *testing.T) {
	t.Parallel()

	st := step(state{}, "* a", nil)
	assert.True(t, st.listOpen)
	assert.Equal(t, []string{"<ul>", "<li>a</li>"}, st.content)

	st = step(st, "== External Links ==", nil)
	assert.Equal(t, SectionExternalLinks, st.section)
	assert.True(t, st.listOpen, "a section change does not close the list")

	st = finish(st)
	assert.False(t, st.listOpen)
	assert.Equal(t, "</ul>", st.content[len(st.content)-1])
}

func TestSectionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "content", SectionContent.String())
	assert.Equal(t, "external-links", SectionExternalLinks.String())
	assert.Equal(t, "references", SectionReferences.String())
	assert.Equal(t, "section(7)", Section(7).String())
}
