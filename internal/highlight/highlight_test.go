package highlight

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
)

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name string
		info string
		want BlockOptions
	}{
		{"empty", "", BlockOptions{}},
		{"language only", "python", BlockOptions{Language: "python"}},
		{
			name: "all options",
			info: `python {linenos=true hl_lines="1 3-4" caption="An example" emphasize_text="foo" name="ex"}`,
			want: BlockOptions{
				Language:      "python",
				LineNos:       true,
				HLLines:       [][2]int{{1, 1}, {3, 4}},
				Caption:       "An example",
				EmphasizeText: "foo",
				Name:          "ex",
			},
		},
		{"id shorthand", `go {#snippet}`, BlockOptions{Language: "go", Name: "snippet"}},
		{"line start", `go {linenostart=10}`, BlockOptions{Language: "go", LineNos: true, LineNoStart: 10}},
		{"broken attributes", `go {caption="unterminated}`, BlockOptions{Language: "go"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInfo(tt.info))
		})
	}
}

func TestParseLineRanges(t *testing.T) {
	assert.Equal(t, [][2]int{{1, 1}, {3, 4}, {7, 7}}, ParseLineRanges("1, 3-4 7"))
	assert.Empty(t, ParseLineRanges("x 0 5-2"))
}

func TestScopeCSS(t *testing.T) {
	in := []byte("/* Background */ .bg { color: #fff }\n/* Keyword */ .chroma .k { color: #000 }\n")
	want := "/* Background */ .dark .bg { color: #fff }\n/* Keyword */ .dark .chroma .k { color: #000 }\n"
	assert.Equal(t, want, string(ScopeCSS(in, ".dark")))
}

func TestStylesheet(t *testing.T) {
	css, err := New("friendly", "monokai").Stylesheet()
	require.NoError(t, err)
	assert.Contains(t, string(css), ".chroma")
	assert.Contains(t, string(css), ".dark .chroma")

	lightOnly, err := New("friendly", "").Stylesheet()
	require.NoError(t, err)
	assert.NotContains(t, string(lightOnly), ".dark")
	assert.True(t, bytes.HasPrefix(css, lightOnly))

	_, err = New("no-such-style", "").Stylesheet()
	require.Error(t, err)
	_, err = New("friendly", "no-such-style").Stylesheet()
	require.Error(t, err)

	assert.Equal(t, "pygments.css", New("friendly", "").StyleFilename())
}

func TestRender(t *testing.T) {
	out, err := Render("x = 'foo'\nprint(x)\n", BlockOptions{
		Language:      "python",
		LineNos:       true,
		HLLines:       [][2]int{{2, 2}},
		Caption:       "Example",
		EmphasizeText: "foo",
		Name:          "ex",
	}, "friendly")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<div class="literal-block-wrapper" id="ex">`))
	assert.Contains(t, out, `<div class="code-caption"><span class="caption-text">Example</span>`)
	assert.Contains(t, out, `href="#ex"`)
	assert.Contains(t, out, `<div class="highlight-python notranslate"><div class="highlight">`)
	assert.Contains(t, out, "<mark>foo</mark>")
	assert.Contains(t, out, `class="line hl"`)
}

func TestRenderPlain(t *testing.T) {
	out, err := Render("just text\n", BlockOptions{Name: "plain"}, "friendly")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="highlight-default notranslate" id="plain">`)
	assert.NotContains(t, out, "literal-block-wrapper")
}

func TestMarkTextSkipsTags(t *testing.T) {
	got := markText(`<span class="foo">foo bar</span>`, "foo")
	assert.Equal(t, `<span class="foo"><mark>foo</mark> bar</span>`, got)
}

func TestCodeBlockExtension(t *testing.T) {
	md := goldmark.New(goldmark.WithExtensions(NewCodeBlock("friendly")))
	src := "Intro\n\n```go {caption=\"Main\" name=\"main\"}\npackage main\n```\n"

	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte(src), &buf))
	out := buf.String()
	assert.Contains(t, out, "<p>Intro</p>")
	assert.Contains(t, out, `<div class="literal-block-wrapper" id="main">`)
	assert.Contains(t, out, `class="highlight-go notranslate"`)
	assert.NotContains(t, out, "<pre><code")
}
