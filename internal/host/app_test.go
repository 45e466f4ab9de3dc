package host

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/environment"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/highlight"
	"git.home.luguber.info/inful/awesometheme/internal/search"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(config.Default(), WithLogger(logger)), &buf
}

func TestListenerOrder(t *testing.T) {
	app, _ := newTestApp(t)
	var calls []string
	app.ConnectBuilderInited(func(*App) error { calls = append(calls, "default-1"); return nil })
	app.ConnectBuilderInited(func(*App) error { calls = append(calls, "late"); return nil }, WithPriority(900))
	app.ConnectBuilderInited(func(*App) error { calls = append(calls, "early"); return nil }, WithPriority(100))
	app.ConnectBuilderInited(func(*App) error { calls = append(calls, "default-2"); return nil })

	require.NoError(t, app.EmitBuilderInited())
	assert.Equal(t, []string{"early", "default-1", "default-2", "late"}, calls)
	assert.Equal(t, 4, app.Listeners(EventBuilderInited))
}

func TestDisconnect(t *testing.T) {
	app, _ := newTestApp(t)
	called := false
	id := app.ConnectBuildFinished(func(*App, error) error { called = true; return nil })
	app.Disconnect(id)
	app.Disconnect(12345)
	require.NoError(t, app.EmitBuildFinished(nil))
	assert.False(t, called)
}

func TestEmitStopsAtFirstError(t *testing.T) {
	app, _ := newTestApp(t)
	boom := ferrors.ThemeError("boom").Build()
	second := false

	require.NoError(t, app.SetupExtension("awesome", func(a *App) error {
		a.ConnectBuildFinished(func(*App, error) error { return boom })
		return nil
	}))
	app.ConnectBuildFinished(func(*App, error) error { second = true; return nil })

	err := app.EmitBuildFinished(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "build-finished listener of awesome")
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryTheme))
	assert.False(t, second)
}

func TestEmitPassesArguments(t *testing.T) {
	app, _ := newTestApp(t)
	env := &environment.Environment{}
	var gotEnv *environment.Environment
	var gotErr error
	var gotPage *PageContext

	app.ConnectEnvBeforeReadDocs(func(_ *App, e *environment.Environment) error { gotEnv = e; return nil })
	app.ConnectBuildFinished(func(_ *App, err error) error { gotErr = err; return nil })
	app.ConnectPageContext(func(_ *App, p *PageContext) error { gotPage = p; return nil })

	require.NoError(t, app.EmitEnvBeforeReadDocs(env))
	assert.Same(t, env, gotEnv)
	assert.Same(t, env, app.Env())

	buildErr := errors.New("failed")
	require.NoError(t, app.EmitBuildFinished(buildErr))
	assert.Equal(t, buildErr, gotErr)

	page := NewPageContext("index", 0, nil)
	require.NoError(t, app.EmitPageContext(page))
	assert.Same(t, page, gotPage)
}

func TestSetupExtensionFailureIsNotRecorded(t *testing.T) {
	app, _ := newTestApp(t)
	err := app.SetupExtension("broken", func(*App) error { return errors.New("nope") })
	require.Error(t, err)
	assert.False(t, app.HasExtension("broken"))

	app.DeclareExtension("design")
	app.DeclareExtension("design")
	assert.Equal(t, []string{"design"}, app.Extensions())
}

func TestAssets(t *testing.T) {
	app, _ := newTestApp(t)
	app.AddCSSFile("theme.css")
	app.AddCSSFile("design.css", AssetPriority(900))
	app.AddCSSFile("base.css", AssetPriority(200))
	app.AddJSFile("theme.js", AssetLoading(LoadingDefer))
	app.AddJSFile("theme.js", AssetLoading(LoadingAsync))

	css := app.CSSFiles()
	require.Len(t, css, 3)
	assert.Equal(t, []string{"base.css", "theme.css", "design.css"}, []string{css[0].Filename, css[1].Filename, css[2].Filename})

	js := app.JSFiles()
	require.Len(t, js, 1)
	assert.Equal(t, Asset{Filename: "theme.js", Priority: DefaultPriority, Loading: LoadingAsync}, js[0])
}

func TestRegistries(t *testing.T) {
	app, _ := newTestApp(t)

	app.AddTemplateFuncs(template.FuncMap{"a": func() string { return "a" }})
	funcs := app.TemplateFuncs()
	funcs["b"] = nil
	assert.Len(t, app.TemplateFuncs(), 1)

	app.AddContextVar("docsearch", true)
	assert.Equal(t, map[string]any{"docsearch": true}, app.ContextVars())

	require.Error(t, app.AddHTMLTheme(Theme{Name: "x"}))
	require.NoError(t, app.AddHTMLTheme(Theme{Name: "x", Templates: fstest.MapFS{}}))
	_, ok := app.HTMLTheme("x")
	assert.True(t, ok)

	ext := highlight.NewCodeBlock("friendly")
	app.AddMarkdownExtension(ext)
	require.Len(t, app.MarkdownExtensions(), 1)

	_, isDefault := app.Highlighter().(*highlight.Highlighter)
	assert.True(t, isDefault)
	dark := highlight.New("friendly", "monokai")
	app.SetHighlighter(dark)
	assert.Same(t, dark, app.Highlighter())

	assert.Equal(t, search.JSON{}, app.IndexFormat())
	assert.Equal(t, ".html", app.OutSuffix())
	app.Builder = string(config.OutputFormatJSON)
	assert.Equal(t, ".json", app.OutSuffix())
}

func TestWarn(t *testing.T) {
	app, buf := newTestApp(t)
	app.Warn(t.Context(), nil)
	app.Warn(t.Context(), errors.New("plain problem"))
	app.Warn(t.Context(), ferrors.AssetError("logo missing").WithContext("path", "logo.svg").Build())

	assert.EqualValues(t, 2, app.Warnings())
	out := buf.String()
	assert.Contains(t, out, "level=WARN msg=\"build warning\"")
	assert.Contains(t, out, "logo missing")
	assert.Contains(t, out, "logo.svg")
}

func TestPageContextVars(t *testing.T) {
	globals := map[string]any{"project": "Docs"}
	page := NewPageContext("guide/install", 1, globals)
	page.Set("logo", "../_static/logo.svg")
	globals["mutated"] = true

	v, ok := page.Get("project")
	require.True(t, ok)
	assert.Equal(t, "Docs", v)
	vars := page.Vars()
	assert.Len(t, vars, 2)
	assert.Equal(t, "layout.html", page.Template)
}

func TestPageFuncs(t *testing.T) {
	page := NewPageContext("index", 0, nil)
	page.AddFuncs(template.FuncMap{"pathto": func(string) string { return "x" }})
	funcs := page.Funcs()
	require.Contains(t, funcs, "pathto")
	delete(funcs, "pathto")
	assert.Len(t, page.Funcs(), 1)
}

func TestContext(t *testing.T) {
	app, _ := newTestApp(t)
	assert.NotNil(t, app.Context())
	ctx := t.Context()
	app.SetContext(ctx)
	assert.Equal(t, ctx, app.Context())
}
