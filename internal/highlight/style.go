// Package highlight renders fenced code blocks with chroma and writes the
// matching light and dark stylesheets.
package highlight

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// StyleFile is the stylesheet name below _static.
const StyleFile = "pygments.css"

// DarkScope is the class toggled on <html> in dark mode.
const DarkScope = ".dark"

// Highlighter writes the code highlighting stylesheet. Light is always
// emitted; Dark, when set, is emitted scoped below DarkScope.
type Highlighter struct {
	Light string
	Dark  string
}

// New returns a highlighter for a light and an optional dark style.
func New(light, dark string) *Highlighter {
	return &Highlighter{Light: light, Dark: dark}
}

// StyleFilename returns the stylesheet name relative to _static.
func (h *Highlighter) StyleFilename() string { return StyleFile }

// Stylesheet returns the CSS for the configured styles.
func (h *Highlighter) Stylesheet() ([]byte, error) {
	light, err := lookupStyle(h.Light)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := formatter(BlockOptions{}).WriteCSS(&buf, light); err != nil {
		return nil, fmt.Errorf("write %s css: %w", h.Light, err)
	}
	if h.Dark == "" {
		return buf.Bytes(), nil
	}

	dark, err := lookupStyle(h.Dark)
	if err != nil {
		return nil, err
	}
	var darkBuf bytes.Buffer
	if err := formatter(BlockOptions{}).WriteCSS(&darkBuf, dark); err != nil {
		return nil, fmt.Errorf("write %s css: %w", h.Dark, err)
	}
	buf.WriteString("\n")
	buf.Write(ScopeCSS(darkBuf.Bytes(), DarkScope))
	return buf.Bytes(), nil
}

// selectorStart matches the start of each rule chroma emits, after its
// leading comment.
var selectorStart = regexp.MustCompile(`(?m)^((?:/\*[^*]*\*/[ \t]*)?)(\S)`)

// ScopeCSS prefixes every rule of a chroma stylesheet with scope.
func ScopeCSS(css []byte, scope string) []byte {
	return selectorStart.ReplaceAll(css, []byte("${1}"+scope+" ${2}"))
}

func lookupStyle(name string) (*chroma.Style, error) {
	style, ok := styles.Registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown highlight style %q", name)
	}
	return style, nil
}

func formatter(opts BlockOptions) *chromahtml.Formatter {
	options := []chromahtml.Option{
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(opts.LineNos),
	}
	if opts.LineNoStart > 0 {
		options = append(options, chromahtml.BaseLineNumber(opts.LineNoStart))
	}
	if len(opts.HLLines) > 0 {
		options = append(options, chromahtml.HighlightLines(opts.HLLines))
	}
	return chromahtml.New(options...)
}
