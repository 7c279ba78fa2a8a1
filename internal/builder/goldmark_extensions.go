// internal/builder/goldmark_extensions.go
package builder

import (
	"bytes"
	"path"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

var (
	topicScheme = []byte("topic:")
	mdSuffix    = []byte(".md")
	urlScheme   = []byte("://")
)

// pageLinkTransformer points markdown links at wiki routes: "topic:Id"
// becomes /topic/Id and a link to another side page "about.md" becomes
// /page/about.
type pageLinkTransformer struct{}

func newPageLinkTransformer() parser.ASTTransformer {
	return &pageLinkTransformer{}
}

func (t *pageLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Destination = rewriteDestination(link.Destination)
		return ast.WalkContinue, nil
	})
}

func rewriteDestination(dest []byte) []byte {
	switch {
	case bytes.HasPrefix(dest, topicScheme):
		return append([]byte("/topic/"), bytes.TrimPrefix(dest, topicScheme)...)
	case bytes.HasSuffix(dest, mdSuffix) && !bytes.Contains(dest, urlScheme):
		slug := bytes.TrimSuffix([]byte(path.Base(string(dest))), mdSuffix)
		return append([]byte("/page/"), slug...)
	}
	return dest
}
