package render

import (
	"net/url"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// linkRewriter points relative links to Markdown sources at their output pages.
type linkRewriter struct {
	suffix string
}

var _ parser.ASTTransformer = linkRewriter{}

func (t linkRewriter) Transform(document *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			link.Destination = []byte(RewriteDocLink(string(link.Destination), t.suffix))
		}
		return ast.WalkContinue, nil
	})
}

// RewriteDocLink replaces a ".md" extension of a relative link with suffix,
// keeping query and fragment. Absolute URLs are returned unchanged.
func RewriteDocLink(dest, suffix string) string {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return dest
	}
	if !strings.HasSuffix(strings.ToLower(u.Path), ".md") {
		return dest
	}
	u.Path = u.Path[:len(u.Path)-len(".md")] + suffix
	return u.String()
}
