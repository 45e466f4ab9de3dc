package build

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/docs"
	derrors "git.home.luguber.info/inful/awesometheme/internal/docs/errors"
	"git.home.luguber.info/inful/awesometheme/internal/environment"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/navtree"
	"git.home.luguber.info/inful/awesometheme/internal/plugin"
)

// stageSetup loads the extensions, selects the theme and emits builder-inited.
func stageSetup(ctx context.Context, bs *buildState) error {
	cfg := bs.req.Config
	app := bs.app

	if err := app.AddHTMLTheme(basicTheme()); err != nil {
		return err
	}
	app.AddTemplateFuncs(baseFuncs())

	reg := bs.svc.registry
	if reg == nil {
		reg = plugin.DefaultRegistry()
	}
	names := slices.Clone(cfg.Extensions)
	if cfg.HTMLTheme != "" && reg.Has(cfg.HTMLTheme) && !slices.Contains(names, cfg.HTMLTheme) {
		names = append(names, cfg.HTMLTheme)
	}
	loaded, err := plugin.Load(app, reg, names)
	bs.result.Extensions = loaded
	if err != nil {
		return err
	}
	bs.readSafe, bs.writeSafe = plugin.ParallelSafe(loaded)
	bs.svc.log().InfoContext(ctx, "Extensions ready",
		logfields.Count(len(loaded)),
		slog.Bool("parallel_read", bs.readSafe),
		slog.Bool("parallel_write", bs.writeSafe))

	if cfg.Output.Format == config.OutputFormatHTML {
		if err := bs.loadTheme(cfg.HTMLTheme); err != nil {
			return err
		}
	}

	if err := app.EmitBuilderInited(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryExtension, "builder-inited failed").Fatal().Build()
	}
	bs.inited = true
	return nil
}

// loadTheme parses the templates of the selected theme.
func (bs *buildState) loadTheme(name string) error {
	if name == "" {
		name = basicThemeName
	}
	t, ok := bs.app.HTMLTheme(name)
	if !ok {
		return ferrors.WrapError(fmt.Errorf("%w: unknown html_theme %q", ErrTheme, name), ferrors.CategoryTheme, "theme not found").
			WithContext("theme", name).
			Fatal().
			Build()
	}
	tmpl, err := template.New(name).Funcs(bs.app.TemplateFuncs()).ParseFS(t.Templates, "*.html")
	if err != nil {
		return ferrors.WrapError(fmt.Errorf("%w: %w", ErrTheme, err), ferrors.CategoryTheme, "failed to parse theme templates").
			WithContext("theme", name).
			Fatal().
			Build()
	}
	bs.theme, bs.tmpl = t, tmpl
	return nil
}

// stageDiscover reads the source directory and builds the navigation tree.
func stageDiscover(ctx context.Context, bs *buildState) error {
	cfg := bs.req.Config
	res, err := docs.NewDiscovery(cfg.Source, cfg.Project.Language).Discover()
	if err != nil {
		return ferrors.WrapError(fmt.Errorf("%w: %w", ErrDiscovery, err), discoveryCategory(err), "document discovery failed").
			WithContext("source", cfg.Source.Directory).
			Fatal().
			Build()
	}
	if _, ok := res.Get(cfg.Source.RootDoc); !ok {
		return ferrors.WrapError(fmt.Errorf("%w: %w", ErrDiscovery, derrors.ErrRootDocMissing), ferrors.CategoryConfig, "root document not found").
			WithContext("root_doc", cfg.Source.RootDoc).
			Fatal().
			Build()
	}

	nav, problems := navtree.Build(res, cfg.Source.RootDoc)
	for _, p := range problems {
		bs.app.Warn(ctx, ferrors.ValidationError(p.Message).
			WithContext("docname", p.DocName).
			Warning().
			Build())
	}
	bs.res, bs.nav = res, nav
	return nil
}

func discoveryCategory(err error) ferrors.ErrorCategory {
	switch {
	case errors.Is(err, derrors.ErrSourceDirNotFound), errors.Is(err, derrors.ErrInvalidExcludePattern):
		return ferrors.CategoryConfig
	case errors.Is(err, derrors.ErrInvalidFrontmatter):
		return ferrors.CategoryParse
	case errors.Is(err, derrors.ErrNoDocsFound):
		return ferrors.CategoryValidation
	default:
		return ferrors.CategoryFileSystem
	}
}

// stagePrepare computes the outdated documents and emits env-before-read-docs.
func stagePrepare(ctx context.Context, bs *buildState) error {
	cfg := bs.req.Config
	env, err := environment.Prepare(ctx, bs.svc.store, bs.res, environment.Options{
		BuildID:    bs.result.BuildID,
		ConfigHash: environment.ConfigHash(cfg),
		Force:      bs.req.Force,
		SourceDir:  cfg.Source.Directory,
		Since:      cfg.Build.Since,
	})
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryState, "failed to prepare build environment").Fatal().Build()
	}
	bs.result.FullRebuild = env.Outdated.FullRebuild
	bs.result.Reason = env.Outdated.Reason

	if env.Outdated.FullRebuild && cfg.Output.Clean {
		if err := cleanOutput(cfg); err != nil {
			return err
		}
		bs.svc.log().InfoContext(ctx, "Output directory cleaned", logfields.Path(cfg.Output.Directory))
	}

	if err := bs.app.EmitEnvBeforeReadDocs(env); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryExtension, "env-before-read-docs failed").Fatal().Build()
	}
	bs.env = env
	return nil
}

// cleanOutput empties the output directory. It refuses to remove the source
// directory or one of its parents.
func cleanOutput(cfg *config.Config) error {
	out, err := filepath.Abs(cfg.Output.Directory)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "invalid output directory").Fatal().Build()
	}
	src, err := filepath.Abs(cfg.Source.Directory)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "invalid source directory").Fatal().Build()
	}
	if rel, relErr := filepath.Rel(out, src); relErr == nil && filepath.IsLocal(rel) {
		return ferrors.ConfigError("output directory contains the source directory").
			WithContext("output", cfg.Output.Directory).
			Fatal().
			Build()
	}
	if err := os.RemoveAll(out); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to clean output directory").Fatal().Build()
	}
	return nil
}
