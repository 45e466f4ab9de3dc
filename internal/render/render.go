// Package render converts Markdown documents to HTML fragments.
package render

import (
	"bytes"
	"fmt"

	fences "github.com/stefanfritsch/goldmark-fences"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/awesometheme/internal/docs"
)

// Heading is a section heading of a rendered page.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Page is a rendered document body.
type Page struct {
	Title    string
	Body     string // HTML fragment
	Headings []Heading
}

// Renderer converts Markdown documents with a fixed goldmark pipeline.
// It is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New builds the pipeline. Extra extensions (code blocks, admonitions from
// other extensions) are applied after the built-in ones so they may override
// node renderers.
func New(suffix string, extra ...goldmark.Extender) *Renderer {
	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		extension.DefinitionList,
		&fences.Extender{},
	}
	exts = append(exts, extra...)
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
			parser.WithASTTransformers(util.Prioritized(linkRewriter{suffix: suffix}, 500)),
		),
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(headingRenderer{}, 100)),
		),
	)
	return &Renderer{md: md}
}

// Render converts a document body to HTML and extracts its headings.
func (r *Renderer) Render(doc *docs.Document) (*Page, error) {
	ctx := parser.NewContext(parser.WithIDs(newSlugIDs()))
	root := r.md.Parser().Parse(text.NewReader(doc.Body), parser.WithContext(ctx))

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, doc.Body, root); err != nil {
		return nil, fmt.Errorf("render %s: %w", doc.Name, err)
	}

	page := &Page{Title: doc.Title, Body: buf.String(), Headings: collectHeadings(root, doc.Body)}
	if doc.Meta.Title == "" {
		for _, h := range page.Headings {
			if h.Level == 1 {
				page.Title = h.Text
				break
			}
		}
	}
	return page, nil
}

func collectHeadings(root ast.Node, source []byte) []Heading {
	var out []Heading
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		id := ""
		if v, ok := h.AttributeString("id"); ok {
			id = string(toBytes(v))
		}
		out = append(out, Heading{Level: h.Level, ID: id, Text: plainText(h, source)})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// plainText concatenates the text content below n.
func plainText(n ast.Node, source []byte) string {
	var b bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
