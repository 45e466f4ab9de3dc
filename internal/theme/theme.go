// Package theme is the awesome theme extension. Setup registers the theme
// templates and static files, the code-block and highlighting strategies,
// the JSON index format and the lifecycle listeners that adjust navigation,
// place logos and post-process the written pages.
package theme

import (
	"embed"
	"fmt"
	"io/fs"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/highlight"
	"git.home.luguber.info/inful/awesometheme/internal/host"
	"git.home.luguber.info/inful/awesometheme/internal/plugin"
	"git.home.luguber.info/inful/awesometheme/internal/search"
	"git.home.luguber.info/inful/awesometheme/internal/theme/changed"
	"git.home.luguber.info/inful/awesometheme/internal/theme/funcs"
	"git.home.luguber.info/inful/awesometheme/internal/theme/logos"
	"git.home.luguber.info/inful/awesometheme/internal/version"
)

// Name selects the theme with html_theme and loads it as an extension.
const Name = "awesome"

// Extensions the theme ships style overrides for.
const (
	ExtDesign    = "design"
	ExtNotebook  = "notebook"
	ExtDocsearch = "docsearch"
)

// overridePriority puts the override stylesheets after those of the
// extensions they restyle.
const overridePriority = 900

// postProcessPriority runs post-processing before the logo copy, whose fatal
// error ends build-finished.
const postProcessPriority = host.DefaultPriority - 100

//go:embed templates/*.html static/*
var files embed.FS

// Extension registers the awesome theme on a host.
type Extension struct{}

func init() {
	plugin.MustRegister(Extension{})
}

func (Extension) Name() string { return Name }

// Setup registers the theme. Listener state is created per call, so one
// Extension value serves any number of hosts.
func (Extension) Setup(app *host.App) (plugin.Metadata, error) {
	cfg := app.Config

	templates, err := fs.Sub(files, "templates")
	if err != nil {
		return plugin.Metadata{}, fmt.Errorf("theme templates: %w", err)
	}
	static, err := fs.Sub(files, "static")
	if err != nil {
		return plugin.Metadata{}, fmt.Errorf("theme static files: %w", err)
	}
	if err := app.AddHTMLTheme(host.Theme{Name: Name, Templates: templates, Static: static}); err != nil {
		return plugin.Metadata{}, err
	}

	app.AddMarkdownExtension(highlight.NewCodeBlock(cfg.Highlight.Style))
	app.SetHighlighter(highlight.New(cfg.Highlight.Style, cfg.Highlight.DarkStyle))
	app.SetIndexFormat(search.JSON{})

	app.AddJSFile("theme.js", host.AssetLoading(host.LoadingDefer))
	if cfg.HasExtension(ExtDesign) {
		app.AddCSSFile("awesome-design.css", host.AssetPriority(overridePriority))
	}
	if cfg.HasExtension(ExtNotebook) {
		app.AddCSSFile("awesome-notebook.css", host.AssetPriority(overridePriority))
	}
	if cfg.HasExtension(ExtDocsearch) {
		app.AddCSSFile("awesome-docsearch.css", host.AssetPriority(overridePriority))
		app.AddContextVar("docsearch", true)
	}
	app.AddTemplateFuncs(funcs.Global())

	a := &awesome{opts: cfg.Theme.Clone()}
	app.ConnectBuilderInited(a.validateLogos)
	app.ConnectPageContext(a.setupLogoPath)
	app.ConnectPageContext(a.setupFuncs)
	app.ConnectPageContext(a.changeTOC)
	app.ConnectEnvBeforeReadDocs(a.recordChanged)
	app.ConnectBuildFinished(a.postProcess, host.WithPriority(postProcessPriority))
	app.ConnectBuildFinished(a.copyLogos)

	return plugin.Metadata{
		Version:           version.Version,
		ParallelReadSafe:  true,
		ParallelWriteSafe: true,
	}, nil
}

// awesome is the listener state of one host.
type awesome struct {
	opts    config.ThemeOptions
	logos   logos.Logos // configured, after pairing
	shown   logos.Logos // linked from pages
	changed changed.Tracker
}
