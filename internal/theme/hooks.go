package theme

import (
	"go.uber.org/multierr"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/environment"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/host"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/theme/funcs"
	"git.home.luguber.info/inful/awesometheme/internal/theme/logos"
	"git.home.luguber.info/inful/awesometheme/internal/theme/postprocess"
	"git.home.luguber.info/inful/awesometheme/internal/theme/toc"
)

// validateLogos resolves the logo pair once per build. A lone logo is used
// for both modes and reported. Pages only link the logos that exist.
func (a *awesome) validateLogos(app *host.App) error {
	l, err := logos.Validate(a.opts)
	a.logos = l
	a.shown = l.Available(app.Config.Source.Directory)
	app.Warn(app.Context(), err)
	return nil
}

func (a *awesome) recordChanged(app *host.App, env *environment.Environment) error {
	s := a.changed.Record(env)
	app.Logger().Debug("Changed documents recorded", logfields.Count(s.Len()), logfields.Stage("changed"))
	return nil
}

func (a *awesome) setupLogoPath(_ *host.App, page *host.PageContext) error {
	if a.shown.Empty() {
		return nil
	}
	page.Set("logo_light", a.logos.Link(page.Depth, a.shown.Light))
	page.Set("logo_dark", a.logos.Link(page.Depth, a.shown.Dark))
	return nil
}

func (a *awesome) setupFuncs(app *host.App, page *host.PageContext) error {
	page.Set("theme_options", a.opts)
	page.AddFuncs(funcs.ForPage(funcs.Page{DocName: page.DocName, Suffix: page.Suffix}, a.opts, app.Config.Project.BaseURL))
	return nil
}

// changeTOC derives the page's navigation from the shared tree.
func (a *awesome) changeTOC(_ *host.App, page *host.PageContext) error {
	page.Set("nav", toc.Adjust(page.Nav, page.DocName, toc.OptionsFrom(a.opts)))
	page.Set("localtoc", toc.LocalTOC(page.Headings))
	if a.opts.ShowBreadcrumbs {
		page.Set("breadcrumbs", toc.Breadcrumbs(page.Nav, page.DocName))
	}
	if a.opts.ShowPrevNext {
		prev, next := toc.PrevNext(page.Nav, page.DocName)
		page.Set("prev", prev)
		page.Set("next", next)
	}
	return nil
}

// copyLogos places the logos after a successful build. Only a fatal problem,
// every configured logo missing, fails the build.
func (a *awesome) copyLogos(app *host.App, buildErr error) error {
	if buildErr != nil || a.logos.Empty() {
		return nil
	}
	_, err := logos.Copy(app.Config.Source.Directory, app.OutDir, a.logos)
	var fatal error
	for _, e := range multierr.Errors(err) {
		if ferrors.IsFatal(e) {
			fatal = multierr.Append(fatal, e)
			continue
		}
		app.Warn(app.Context(), e)
	}
	return fatal
}

// postProcess rewrites the HTML pages written in this build.
func (a *awesome) postProcess(app *host.App, buildErr error) error {
	if buildErr != nil || app.Builder != string(config.OutputFormatHTML) {
		return nil
	}
	set := a.changed.Current()
	if set.Len() == 0 {
		return nil
	}
	p := &postprocess.Processor{
		OutDir:   app.OutDir,
		Options:  postprocess.OptionsFrom(app.Config, app.OutSuffix()),
		Jobs:     app.Config.Build.Jobs,
		Logger:   app.Logger(),
		Recorder: app.Recorder(),
	}
	ctx := app.Context()
	_, err := p.Run(ctx, set.Names())
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	for _, e := range multierr.Errors(err) {
		app.Warn(ctx, e)
	}
	return nil
}
