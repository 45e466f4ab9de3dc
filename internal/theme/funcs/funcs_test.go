package funcs

import (
	"bytes"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/awesometheme/internal/config"
)

func TestPathTo(t *testing.T) {
	root := Page{DocName: "index", Suffix: ".html"}
	nested := Page{DocName: "guide/install", Suffix: ".html"}
	deep := Page{DocName: "a/b/c/page", Suffix: ".html"}

	tests := []struct {
		name     string
		page     Page
		target   string
		resource bool
		want     string
	}{
		{"root to doc", root, "guide/install", false, "guide/install.html"},
		{"sibling", nested, "guide/usage", false, "usage.html"},
		{"up", nested, "index", false, "../index.html"},
		{"md suffix and fragment", nested, "about.md#team", false, "../about.html#team"},
		{"absolute docname", nested, "/guide/usage", false, "usage.html"},
		{"resource from root", root, "_static/theme.js", true, "_static/theme.js"},
		{"resource from deep", deep, "_static/theme.js", true, "../../../_static/theme.js"},
		{"external", nested, "https://example.com/x", false, "https://example.com/x"},
		{"fragment", nested, "#usage", false, "#usage"},
		{"empty", nested, "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PathTo(tt.page, tt.target, tt.resource))
		})
	}
}

func TestIsAbsolute(t *testing.T) {
	assert.True(t, IsAbsolute("https://example.com"))
	assert.True(t, IsAbsolute("//cdn.example.com/x.js"))
	assert.True(t, IsAbsolute("mailto:hi@example.com"))
	assert.False(t, IsAbsolute("guide/install"))
	assert.False(t, IsAbsolute("#top"))
	assert.False(t, IsAbsolute("../index.html"))
}

func TestHeaderLinks(t *testing.T) {
	page := Page{DocName: "guide/install", Suffix: ".html"}
	links := HeaderLinks(page, config.NavLinks{
		{Label: "Guide", URL: "guide/install"},
		{Label: "GitHub", URL: "https://github.com/example/project"},
		{Label: "Docs", URL: "index"},
		{Label: "Contact", URL: "mailto:docs@example.com"},
	})

	assert.Equal(t, []HeaderLink{
		{Label: "Guide", URL: "install.html", Current: true},
		{Label: "GitHub", URL: "https://github.com/example/project", Absolute: true},
		{Label: "Docs", URL: "../index.html"},
		{Label: "Contact", URL: "mailto:docs@example.com", Absolute: true},
	}, links, "links keep their configured order")
}

func TestIconLinks(t *testing.T) {
	icons := IconLinks(config.HeaderIcons{
		{Label: "repository on GitHub", LinkIcon: config.LinkIcon{Link: "https://github.com/example", Icon: "<svg></svg>"}},
		{Label: "chat", LinkIcon: config.LinkIcon{Link: "https://chat.example.com", Icon: "<svg/>"}},
	})
	require.Len(t, icons, 2)
	assert.Equal(t, "repository on GitHub", icons[0].Label)
	assert.Equal(t, template.HTML("<svg></svg>"), icons[0].Icon)
	assert.True(t, icons[0].Absolute)
	assert.Equal(t, "chat", icons[1].Label)
}

func TestCanonicalURL(t *testing.T) {
	p := Page{DocName: "guide/install", Suffix: ".html"}
	assert.Equal(t, "https://docs.example.com/guide/install.html", CanonicalURL("https://docs.example.com/", p))
	assert.Empty(t, CanonicalURL("", p))
}

func TestTemplateUsesPageFuncs(t *testing.T) {
	base := template.Must(template.New("layout.html").Funcs(Global()).Parse(
		`{{ pathto "index" }}|{{ pathto "_static/theme.js" 1 }}|{{ upper "x" }}|{{ range headerLinks }}{{ .Label }}={{ .URL }}{{ end }}|{{ canonicalURL }}`))

	opts := config.DefaultThemeOptions()
	opts.MainNavLinks = config.NavLinks{{Label: "Home", URL: "index"}}

	tmpl, err := base.Clone()
	require.NoError(t, err)
	tmpl.Funcs(ForPage(Page{DocName: "a/b", Suffix: ".html"}, opts, "https://example.com"))

	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, nil))
	assert.Equal(t, "../index.html|../_static/theme.js|X|Home=../index.html|https://example.com/a/b.html", buf.String())
}
