package highlight

import (
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// CodeBlock is a goldmark extension that renders fenced code blocks with
// chroma and honours the options understood by ParseInfo.
type CodeBlock struct {
	// Style is only used for token lookups; colours come from the stylesheet.
	Style string
}

// NewCodeBlock returns the code-block extension.
func NewCodeBlock(style string) *CodeBlock {
	return &CodeBlock{Style: style}
}

func (e *CodeBlock) Extend(markdown goldmark.Markdown) {
	markdown.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&codeBlockRenderer{style: styles.Get(e.Style)}, 100),
		),
	)
}

type codeBlockRenderer struct {
	style *chroma.Style
}

var _ renderer.NodeRenderer = (*codeBlockRenderer)(nil)

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.render)
}

func (r *codeBlockRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	info := ""
	if n.Info != nil {
		info = string(n.Info.Segment.Value(source))
	}
	opts := ParseInfo(info)
	// With parser.WithAttribute goldmark may already have lifted the {...} part.
	for _, attr := range n.Attributes() {
		opts.set(string(attr.Name), attrString(attr.Value))
	}

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	out, err := render(code.String(), opts, r.style)
	if err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.WriteString(out)
	return ast.WalkSkipChildren, nil
}

// Render highlights code with the given options using the named style.
func Render(code string, opts BlockOptions, style string) (string, error) {
	return render(code, opts, styles.Get(style))
}

func render(code string, opts BlockOptions, style *chroma.Style) (string, error) {
	lang := opts.Language
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	if lang == "" {
		lang = "default"
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %s code block: %w", lang, err)
	}
	var body strings.Builder
	if err := formatter(opts).Format(&body, style, iterator); err != nil {
		return "", fmt.Errorf("format %s code block: %w", lang, err)
	}
	highlighted := body.String()
	if opts.EmphasizeText != "" {
		highlighted = markText(highlighted, html.EscapeString(opts.EmphasizeText))
	}

	var b strings.Builder
	id := ""
	if opts.Name != "" {
		id = fmt.Sprintf(` id="%s"`, html.EscapeString(opts.Name))
	}
	if opts.Caption != "" {
		fmt.Fprintf(&b, `<div class="literal-block-wrapper"%s>`, id)
		b.WriteString(`<div class="code-caption"><span class="caption-text">`)
		b.WriteString(html.EscapeString(opts.Caption))
		b.WriteString(`</span>`)
		if opts.Name != "" {
			fmt.Fprintf(&b, `<a class="headerlink" href="#%s" title="Link to this code">¶</a>`, html.EscapeString(opts.Name))
		}
		b.WriteString(`</div>`)
		id = ""
	}
	fmt.Fprintf(&b, `<div class="highlight-%s notranslate"%s><div class="highlight">`, html.EscapeString(lang), id)
	b.WriteString(highlighted)
	b.WriteString(`</div></div>`)
	if opts.Caption != "" {
		b.WriteString(`</div>`)
	}
	b.WriteString("\n")
	return b.String(), nil
}

// markText wraps every occurrence of needle that lies in text content (not
// inside a tag) with <mark>. Occurrences split across tokens are not marked.
func markText(s, needle string) string {
	var b strings.Builder
	for s != "" {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			lt = len(s)
		}
		b.WriteString(strings.ReplaceAll(s[:lt], needle, "<mark>"+needle+"</mark>"))
		s = s[lt:]
		if s == "" {
			break
		}
		gt := strings.IndexByte(s, '>')
		if gt < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:gt+1])
		s = s[gt+1:]
	}
	return b.String()
}

func attrString(v any) string {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = attrString(p)
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprint(val)
	}
}
