// internal/builder/render.go
package builder

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"
)

var frontMatterDelim = []byte("---")

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newPageLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	htmlSanitizer = newSanitizer()
)

// newSanitizer extends the UGC policy with the attributes WikiText output
// relies on: category and missing-page classes, new-tab external links and
// heading anchors built from arbitrary heading text.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^(new|categories|category)$`)).OnElements("a", "div")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("id").Matching(regexp.MustCompile(`^\S+$`)).OnElements("h1", "h2", "h3")
	return p
}

// sanitize cleans an HTML fragment unless the --unsafe flag is used.
func sanitize(fragment string, opts BuildOptions) string {
	if opts.Unsafe {
		return fragment
	}
	return htmlSanitizer.Sanitize(encodeLinkSpaces(fragment))
}

// processMarkdown splits the front matter from a markdown side page and
// renders the body to HTML.
func processMarkdown(rawContent []byte, opts BuildOptions) (PageMeta, string, error) {
	meta := PageMeta{}
	body := rawContent

	if bytes.HasPrefix(rawContent, frontMatterDelim) {
		parts := bytes.SplitN(rawContent, frontMatterDelim, 3)
		if len(parts) == 3 {
			if err := yaml.Unmarshal(parts[1], &meta); err != nil {
				return PageMeta{}, "", fmt.Errorf("failed to parse front matter: %w", err)
			}
			body = parts[2]
		}
	}

	var htmlBuffer bytes.Buffer
	if err := markdownRenderer.Convert(body, &htmlBuffer); err != nil {
		return meta, "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}
	return meta, sanitize(htmlBuffer.String(), opts), nil
}
