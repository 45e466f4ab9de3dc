package theme_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/awesometheme/internal/build"
	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/environment"
	"git.home.luguber.info/inful/awesometheme/internal/host"
	"git.home.luguber.info/inful/awesometheme/internal/plugin"
	"git.home.luguber.info/inful/awesometheme/internal/search"
	"git.home.luguber.info/inful/awesometheme/internal/testutil"
	"git.home.luguber.info/inful/awesometheme/internal/theme"
	"git.home.luguber.info/inful/awesometheme/internal/version"
)

const svgLogo = `<svg xmlns="http://www.w3.org/2000/svg" width="16" height="16"><rect width="16" height="16"/></svg>`

var site = map[string]string{
	"index.md":         "---\ntoctree:\n  - caption: Contents\n    entries: [guide/index, \"Python <https://python.org>\"]\n---\n# Welcome\n\nRead the [guide](guide/index.md).\n",
	"guide/index.md":   "---\ntoctree:\n  - entries: [install]\n---\n# Guide\n\n## Usage\n",
	"guide/install.md": "# Install\n\n```go {linenos=true}\nfmt.Println(\"hi\")\n```\n",
	"logo.svg":         svgLogo,
	"logo-dark.svg":    svgLogo,
}

func setup(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "docs")
	testutil.WriteTree(t, src, site)

	cfg := config.Default()
	cfg.Project.Title = "Awesome"
	cfg.Project.BaseURL = "https://docs.example.com/"
	cfg.Source.Directory = src
	cfg.Output.Directory = filepath.Join(root, "out")
	cfg.HTMLTheme = theme.Name
	cfg.Extensions = []string{theme.ExtDesign, theme.ExtDocsearch}
	cfg.Theme.AwesomeExternalLinks = true
	cfg.Theme.LogoLight = "logo.svg"
	cfg.Theme.LogoDark = "logo-dark.svg"
	cfg.Theme.MainNavLinks = config.NavLinks{{Label: "Guide", URL: "guide/index"}, {Label: "GitHub", URL: "https://github.com/example"}}
	return cfg
}

func service(t *testing.T) *build.DefaultBuildService {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, reg.Register(theme.Extension{}))
	return build.NewBuildService().WithRegistry(reg)
}

func TestSetupRegistersTheme(t *testing.T) {
	cfg := config.Default()
	cfg.Extensions = []string{theme.ExtNotebook}
	app := host.New(cfg)

	loaded, err := plugin.Load(app, func() *plugin.Registry {
		reg := plugin.NewRegistry()
		require.NoError(t, reg.Register(theme.Extension{}))
		return reg
	}(), []string{theme.ExtNotebook, theme.Name})
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	md := loaded[1].Metadata
	assert.Equal(t, version.Version, md.Version)
	assert.True(t, md.ParallelReadSafe)
	assert.True(t, md.ParallelWriteSafe)

	_, ok := app.HTMLTheme(theme.Name)
	assert.True(t, ok)
	assert.Equal(t, []host.Asset{{Filename: "theme.js", Priority: host.DefaultPriority, Loading: host.LoadingDefer}}, app.JSFiles())
	assert.Equal(t, []host.Asset{{Filename: "awesome-notebook.css", Priority: 900}}, app.CSSFiles())
	_, docsearch := app.ContextVars()["docsearch"]
	assert.False(t, docsearch)
	assert.Equal(t, search.JSON{}, app.IndexFormat())
	assert.Len(t, app.MarkdownExtensions(), 1)
	assert.Contains(t, app.TemplateFuncs(), "headerLinks")
	assert.Equal(t, 1, app.Listeners(host.EventBuilderInited))
	assert.Equal(t, 1, app.Listeners(host.EventEnvBeforeReadDocs))
	assert.Equal(t, 3, app.Listeners(host.EventHTMLPageContext))
	assert.Equal(t, 2, app.Listeners(host.EventBuildFinished))
}

func TestBuildWithAwesomeTheme(t *testing.T) {
	cfg := setup(t)
	result, err := service(t).Run(context.Background(), build.BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, build.BuildStatusSuccess, result.Status)

	names := make([]string, 0, len(result.Extensions))
	for _, l := range result.Extensions {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{theme.ExtDesign, theme.ExtDocsearch, theme.Name}, names)

	out := cfg.Output.Directory
	install := testutil.ReadFile(t, filepath.Join(out, "guide", "install.html"))

	t.Run("assets", func(t *testing.T) {
		assert.Contains(t, install, `href="../_static/awesome.css"`)
		assert.Contains(t, install, `href="../_static/awesome-design.css"`)
		assert.Contains(t, install, `href="../_static/awesome-docsearch.css"`)
		assert.Contains(t, install, `src="../_static/theme.js" defer`)
		assert.Contains(t, install, `<div id="docsearch"></div>`)
		testutil.NewOutput(t, out).
			Exists("_static/awesome.css", "_static/theme.js", "_static/pygments.css", "_static/logo.svg", "_static/logo-dark.svg").
			Contains("_static/pygments.css", ".dark ")
	})

	t.Run("navigation", func(t *testing.T) {
		assert.Contains(t, install, `<li aria-current="page">Install</li>`)
		assert.Contains(t, install, `<a href="../index.html">Welcome</a>`)
		assert.Contains(t, install, `<a class="prev" href="index.html" rel="prev">`)
		assert.NotContains(t, install, `class="next"`)
		assert.Contains(t, install, `class="reference internal current" href="install.html"`)
	})

	t.Run("header", func(t *testing.T) {
		assert.Contains(t, install, `<img class="logo-light" src="../_static/logo.svg"`)
		assert.Contains(t, install, `<img class="logo-dark" src="../_static/logo-dark.svg"`)
		assert.Contains(t, install, `<a href="index.html">Guide</a>`)
		assert.Contains(t, install, `<link rel="canonical" href="https://docs.example.com/guide/install.html"`)
	})

	t.Run("post-processing", func(t *testing.T) {
		assert.Contains(t, install, `data-copy-link="https://docs.example.com/guide/install.html#install"`)
		assert.Contains(t, install, `title="Copy link to this section"`)

		index := testutil.ReadFile(t, filepath.Join(out, "index.html"))
		assert.Contains(t, index, `<a class="reference external" href="https://python.org" rel="nofollow noopener">`)
		assert.Contains(t, index, `rel="nofollow noopener"`)
		assert.Contains(t, index, `<span class="external-icon" aria-hidden="true"></span>`)
		assert.NotContains(t, index, `<nav class="breadcrumbs"`)
	})
}

func TestBuildIsRepeatable(t *testing.T) {
	cfg := setup(t)
	svc := service(t).WithStore(environment.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Run(ctx, build.BuildRequest{Config: cfg})
	require.NoError(t, err)
	indexPath := filepath.Join(cfg.Output.Directory, "index.html")
	first := testutil.ReadFile(t, indexPath)

	forced, err := svc.Run(ctx, build.BuildRequest{Config: cfg, Force: true})
	require.NoError(t, err)
	require.True(t, forced.FullRebuild)
	assert.Equal(t, first, testutil.ReadFile(t, indexPath), "post-processing is idempotent across rebuilds")

	// Pages outside the changed set are left alone.
	marked := first + "<!-- untouched -->"
	require.NoError(t, os.WriteFile(indexPath, []byte(marked), 0o600))
	again, err := svc.Run(ctx, build.BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, 0, again.DocsWritten)
	assert.Equal(t, marked, testutil.ReadFile(t, indexPath))
}

func TestBuildWithSingleLogo(t *testing.T) {
	cfg := setup(t)
	cfg.Theme.LogoDark = ""

	result, err := service(t).Run(context.Background(), build.BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, build.BuildStatusWarning, result.Status)
	assert.Equal(t, int64(1), result.Warnings)

	page := testutil.ReadFile(t, filepath.Join(cfg.Output.Directory, "index.html"))
	assert.Contains(t, page, `<img class="logo-dark" src="_static/logo.svg"`)
}

func TestBuildWithMissingLogos(t *testing.T) {
	cfg := setup(t)
	cfg.Theme.LogoLight = "missing-light.png"
	cfg.Theme.LogoDark = "missing-dark.png"

	result, err := service(t).Run(context.Background(), build.BuildRequest{Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build-finished listener of awesome")
	assert.Equal(t, build.BuildStatusFailed, result.Status)

	// The pages are still post-processed and link no logo.
	out := testutil.NewOutput(t, cfg.Output.Directory)
	out.Contains("index.html", `<span class="external-icon" aria-hidden="true"></span>`).
		Contains("guide/install.html", `data-copy-link="https://docs.example.com/guide/install.html#install"`).
		NotContains("index.html", `class="logo-light"`).
		NotContains("guide/install.html", "missing-light.png")
}

func TestBuildWithMissingDarkLogo(t *testing.T) {
	cfg := setup(t)
	cfg.Theme.LogoDark = "missing-dark.svg"

	result, err := service(t).Run(context.Background(), build.BuildRequest{Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, build.BuildStatusWarning, result.Status)
	assert.Equal(t, int64(1), result.Warnings)

	page := testutil.ReadFile(t, filepath.Join(cfg.Output.Directory, "guide", "install.html"))
	assert.Contains(t, page, `<img class="logo-light" src="../_static/logo.svg"`)
	assert.Contains(t, page, `<img class="logo-dark" src="../_static/logo.svg"`)
	assert.NotContains(t, page, "missing-dark.svg")
}

func TestBuildWithSameNamedLogos(t *testing.T) {
	cfg := setup(t)
	light := `<svg xmlns="http://www.w3.org/2000/svg"><title>light</title></svg>`
	dark := `<svg xmlns="http://www.w3.org/2000/svg"><title>dark</title></svg>`
	testutil.WriteTree(t, cfg.Source.Directory, map[string]string{
		"light/logo.svg": light,
		"dark/logo.svg":  dark,
	})
	cfg.Theme.LogoLight = "light/logo.svg"
	cfg.Theme.LogoDark = "dark/logo.svg"

	_, err := service(t).Run(context.Background(), build.BuildRequest{Config: cfg})
	require.NoError(t, err)

	out := testutil.NewOutput(t, cfg.Output.Directory)
	out.Contains("_static/logo.svg", "<title>light</title>").
		Contains("_static/logo-dark.svg", "<title>dark</title>").
		Contains("index.html", `<img class="logo-light" src="_static/logo.svg"`).
		Contains("index.html", `<img class="logo-dark" src="_static/logo-dark.svg"`)
}

func TestBuildJSONWithAwesomeTheme(t *testing.T) {
	cfg := setup(t)
	cfg.Output.Format = config.OutputFormatJSON

	_, err := service(t).Run(context.Background(), build.BuildRequest{Config: cfg})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(cfg.Output.Directory, "guide", "install.json"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	var page map[string]any
	require.NoError(t, search.JSON{}.Load(f, &page))
	assert.Equal(t, "Install", page["title"])
	assert.Contains(t, page, "breadcrumbs")
	assert.Contains(t, page, "nav")
	assert.Equal(t, "../_static/logo.svg", page["logo_light"])
	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, "guide", "install.fjson"))
	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "searchindex.json"))
}
