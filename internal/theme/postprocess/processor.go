package postprocess

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/metrics"
)

// Result counts what happened to the processed pages.
type Result struct {
	Rewritten int
	Unchanged int
	Failed    int
}

// Processor rewrites output pages in place.
type Processor struct {
	OutDir   string
	Options  Options
	Jobs     int
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// Run processes the pages of docnames. A page is written back only when its
// bytes changed. Per-page failures leave the page as rendered; they are
// returned as classified warnings combined with multierr and never stop the
// other pages. Only cancellation of ctx is returned as a plain error.
func (p *Processor) Run(ctx context.Context, docnames []string) (Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := p.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	var (
		mu   sync.Mutex
		res  Result
		errs error
	)
	record := func(label metrics.PostProcessLabel, err error) {
		rec.IncPostProcess(label)
		mu.Lock()
		defer mu.Unlock()
		switch label {
		case metrics.PostProcessRewritten:
			res.Rewritten++
		case metrics.PostProcessUnchanged:
			res.Unchanged++
		case metrics.PostProcessFailed:
			res.Failed++
			errs = multierr.Append(errs, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Jobs, 1))
	for _, docname := range docnames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			label, err := p.page(docname)
			if err != nil {
				logger.Warn("Post-processing failed; page left as rendered", logfields.DocName(docname), logfields.Error(err))
			}
			record(label, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	logger.Info("Post-processed pages",
		slog.Int("rewritten", res.Rewritten),
		slog.Int("unchanged", res.Unchanged),
		slog.Int("failed", res.Failed))
	return res, errs
}

func (p *Processor) page(docname string) (metrics.PostProcessLabel, error) {
	path := filepath.Join(p.OutDir, filepath.FromSlash(docname+p.Options.Suffix))
	src, err := os.ReadFile(path)
	if err != nil {
		return metrics.PostProcessFailed, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read page").
			WithContext("docname", docname).
			WithContext("path", path).
			Warning().
			Build()
	}
	out, err := Transform(src, docname, p.Options)
	if err != nil {
		return metrics.PostProcessFailed, err
	}
	if bytes.Equal(out, src) {
		return metrics.PostProcessUnchanged, nil
	}
	if err := os.WriteFile(path, out, 0o644); err != nil { //nolint:gosec // public HTML output, non-sensitive
		return metrics.PostProcessFailed, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write page").
			WithContext("docname", docname).
			WithContext("path", path).
			Warning().
			Build()
	}
	return metrics.PostProcessRewritten, nil
}
