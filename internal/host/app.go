// Package host is the documentation builder's extension surface: the
// lifecycle events, asset and template registration, and the strategy
// objects that extensions may replace during setup.
package host

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/environment"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/highlight"
	"git.home.luguber.info/inful/awesometheme/internal/metrics"
	"git.home.luguber.info/inful/awesometheme/internal/search"
)

// Highlighter writes the code highlighting stylesheet.
type Highlighter interface {
	StyleFilename() string
	Stylesheet() ([]byte, error)
}

// Theme is an HTML theme: templates plus static files copied to _static.
type Theme struct {
	Name string
	// Templates must provide "layout.html".
	Templates fs.FS
	Static    fs.FS
}

// App is created once per builder. Registration methods are meant for
// extension setup; accessors are safe for concurrent use during a build.
type App struct {
	Config *config.Config
	OutDir string
	// Builder is the output format name ("html" or "json").
	Builder string

	log      *slog.Logger
	metrics  metrics.Recorder
	warnings atomic.Int64
	ctx      context.Context

	mu          sync.RWMutex
	owner       string
	extensions  []string
	listeners   map[Event][]listener
	nextID      ListenerID
	jsFiles     []Asset
	cssFiles    []Asset
	funcs       template.FuncMap
	contextVars map[string]any
	themes      map[string]Theme
	mdExts      []goldmark.Extender
	highlighter Highlighter
	indexFormat search.Format
	env         *environment.Environment
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(a *App) { a.metrics = r }
}

// New creates an App with the default strategies: a light-only highlighter
// and the JSON index format.
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		Config:      cfg,
		OutDir:      cfg.Output.Directory,
		Builder:     string(cfg.Output.Format),
		listeners:   map[Event][]listener{},
		funcs:       template.FuncMap{},
		contextVars: map[string]any{},
		themes:      map[string]Theme{},
		highlighter: highlight.New(cfg.Highlight.Style, ""),
		indexFormat: search.JSON{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) logger() *slog.Logger {
	if a.log == nil {
		return slog.Default()
	}
	return a.log
}

func (a *App) recorder() metrics.Recorder {
	if a.metrics == nil {
		return metrics.NoopRecorder{}
	}
	return a.metrics
}

// SetContext sets the context of the running build. Listeners read it with
// Context for cancellation and reporting.
func (a *App) SetContext(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ctx = ctx
}

// Context returns the context of the running build.
func (a *App) Context() context.Context {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Logger returns the build logger.
func (a *App) Logger() *slog.Logger { return a.logger() }

// Recorder returns the metrics recorder.
func (a *App) Recorder() metrics.Recorder { return a.recorder() }

// SetupExtension runs setup with listeners attributed to name and records
// the extension as loaded.
func (a *App) SetupExtension(name string, setup func(*App) error) error {
	a.mu.Lock()
	a.owner = name
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.owner = ""
		a.mu.Unlock()
	}()

	if err := setup(a); err != nil {
		return err
	}
	a.DeclareExtension(name)
	return nil
}

// DeclareExtension records an extension name as active without running any setup.
func (a *App) DeclareExtension(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !slices.Contains(a.extensions, name) {
		a.extensions = append(a.extensions, name)
	}
}

// HasExtension reports whether an extension is active.
func (a *App) HasExtension(name string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Contains(a.extensions, name)
}

// Extensions returns the active extension names in load order.
func (a *App) Extensions() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.extensions)
}

// AddTemplateFuncs registers template functions. Later registrations win.
func (a *App) AddTemplateFuncs(funcs template.FuncMap) {
	a.mu.Lock()
	defer a.mu.Unlock()
	maps.Copy(a.funcs, funcs)
}

// TemplateFuncs returns a copy of the registered template functions.
func (a *App) TemplateFuncs() template.FuncMap {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.funcs)
}

// AddContextVar sets a variable available to every page template.
func (a *App) AddContextVar(key string, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.contextVars[key] = value
}

// ContextVars returns a copy of the global template variables.
func (a *App) ContextVars() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.contextVars)
}

// AddHTMLTheme registers a theme selectable with html_theme.
func (a *App) AddHTMLTheme(t Theme) error {
	if t.Name == "" || t.Templates == nil {
		return ferrors.ThemeError("theme needs a name and templates").Build()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.themes[t.Name] = t
	return nil
}

// HTMLTheme returns a registered theme.
func (a *App) HTMLTheme(name string) (Theme, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.themes[name]
	return t, ok
}

// AddMarkdownExtension adds a goldmark extension to the page renderer.
func (a *App) AddMarkdownExtension(ext goldmark.Extender) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mdExts = append(a.mdExts, ext)
}

// MarkdownExtensions returns the registered goldmark extensions in order.
func (a *App) MarkdownExtensions() []goldmark.Extender {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.mdExts)
}

// SetHighlighter replaces the stylesheet strategy.
func (a *App) SetHighlighter(h Highlighter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.highlighter = h
}

// Highlighter returns the stylesheet strategy.
func (a *App) Highlighter() Highlighter {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.highlighter
}

// SetIndexFormat replaces the search index serializer.
func (a *App) SetIndexFormat(f search.Format) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.indexFormat = f
}

// IndexFormat returns the search index serializer.
func (a *App) IndexFormat() search.Format {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.indexFormat
}

// Env returns the environment of the running build, nil before documents are read.
func (a *App) Env() *environment.Environment {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.env
}

// OutSuffix returns the suffix of output pages.
func (a *App) OutSuffix() string {
	if a.Builder == string(config.OutputFormatJSON) {
		return a.IndexFormat().Suffix()
	}
	return ".html"
}

// Warn reports a problem that does not stop the build. Classified errors keep
// their severity; unclassified errors are reported as build warnings.
func (a *App) Warn(ctx context.Context, err error) {
	if err == nil {
		return
	}
	ce, ok := ferrors.AsClassified(err)
	if !ok {
		ce = ferrors.WrapError(err, ferrors.CategoryBuild, "build warning").Warning().Build()
	}
	a.warnings.Add(1)
	a.recorder().IncWarning(string(ce.Category()))
	ferrors.Report(ctx, a.logger(), ce)
}

// Warnings returns the number of warnings reported so far.
func (a *App) Warnings() int64 { return a.warnings.Load() }
