// Package watch rebuilds the site when sources change.
//
// A Watcher runs one build at start, then an incremental build after every
// burst of file system events in the source and static directories settles
// for the configured debounce. A periodic forced rebuild can be scheduled on
// top. Builds never overlap: events arriving during a build are coalesced into
// the next one.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/awesometheme/internal/build"
	"git.home.luguber.info/inful/awesometheme/internal/config"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/logfields"
	"git.home.luguber.info/inful/awesometheme/internal/metrics"
	"git.home.luguber.info/inful/awesometheme/internal/notify"
)

// Watcher drives repeated builds of one configuration.
type Watcher struct {
	cfg      *config.Config
	svc      build.BuildService
	notifier *notify.Notifier
	registry *prom.Registry
	logger   *slog.Logger
	onBuild  func(*build.BuildResult, error)

	forced chan struct{}
	ignore []string // absolute directories whose events are dropped
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithNotifier publishes a summary after every build.
func WithNotifier(n *notify.Notifier) Option { return func(w *Watcher) { w.notifier = n } }

// WithMetricsRegistry serves reg on the configured metrics address.
func WithMetricsRegistry(reg *prom.Registry) Option { return func(w *Watcher) { w.registry = reg } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(w *Watcher) { w.logger = l } }

// OnBuild registers a callback invoked after every build.
func OnBuild(fn func(*build.BuildResult, error)) Option { return func(w *Watcher) { w.onBuild = fn } }

// New returns a Watcher for cfg.
func New(cfg *config.Config, svc build.BuildService, opts ...Option) *Watcher {
	w := &Watcher{
		cfg:    cfg,
		svc:    svc,
		logger: slog.Default(),
		forced: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if out, err := filepath.Abs(cfg.Output.Directory); err == nil {
		w.ignore = append(w.ignore, out)
	}
	return w
}

// Rebuild requests a forced full rebuild. Requests made while one is
// pending are merged.
func (w *Watcher) Rebuild() {
	select {
	case w.forced <- struct{}{}:
	default:
	}
}

// Run builds once and then watches until ctx is canceled. Errors of
// individual builds are logged; Run only fails when watching cannot start.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create file watcher").Fatal().Build()
	}
	defer func() { _ = fw.Close() }()

	if err := w.addDirsRecursive(fw, w.cfg.Source.Directory); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch source directory").
			WithContext("path", w.cfg.Source.Directory).
			Fatal().
			Build()
	}
	for _, dir := range w.cfg.Source.Static {
		// The build reports missing static directories itself.
		if err := w.addDirsRecursive(fw, dir); err != nil {
			w.logger.DebugContext(ctx, "Static directory not watched", logfields.Path(dir), logfields.Error(err))
		}
	}

	if every := w.cfg.Watch.RebuildEvery(); every > 0 {
		s, err := w.schedule(every)
		if err != nil {
			return err
		}
		s.Start()
		defer func() { _ = s.Shutdown() }()
	}

	if w.registry != nil && w.cfg.Monitoring.MetricsAddr != "" {
		stop := w.serveMetrics(ctx, w.cfg.Monitoring.MetricsAddr)
		defer stop()
	}

	w.logger.InfoContext(ctx, "Watching for changes",
		logfields.Path(w.cfg.Source.Directory),
		slog.Duration("debounce", w.cfg.Watch.DebounceDuration()))
	w.build(ctx, false)
	return w.loop(ctx, fw)
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) error {
	debounce := w.cfg.Watch.DebounceDuration()
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.handleEvent(fw, ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "Watcher error", logfields.Error(err))
		case <-timerC:
			timerC = nil
			w.build(ctx, false)
		case <-w.forced:
			w.build(ctx, true)
		}
	}
}

// handleEvent reports whether ev should trigger a build. New directories
// are watched as they appear.
func (w *Watcher) handleEvent(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	if w.shouldIgnore(ev.Name) || ev.Op == fsnotify.Chmod {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return true
}

func (w *Watcher) build(ctx context.Context, force bool) {
	if ctx.Err() != nil {
		return
	}
	result, err := w.svc.Run(ctx, build.BuildRequest{Config: w.cfg, Force: force})
	if err != nil {
		ferrors.Report(ctx, w.logger, err)
	}
	if result != nil {
		if nerr := w.notifier.Notify(ctx, result, err); nerr != nil {
			ferrors.Report(ctx, w.logger, nerr)
		}
	}
	if w.onBuild != nil {
		w.onBuild(result, err)
	}
}

// schedule creates the periodic forced rebuild job.
func (w *Watcher) schedule(every time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to create scheduler").Fatal().Build()
	}
	if _, err := s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(w.Rebuild),
		gocron.WithName("periodic-rebuild"),
	); err != nil {
		_ = s.Shutdown()
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to schedule periodic rebuild").
			WithContext("interval", every.String()).
			Fatal().
			Build()
	}
	w.logger.Info("Periodic rebuild scheduled", slog.Duration("interval", every))
	return s, nil
}

// serveMetrics exposes the Prometheus registry until the returned stop
// function is called.
func (w *Watcher) serveMetrics(ctx context.Context, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(w.registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.ErrorContext(ctx, "Metrics server failed", logfields.Error(err))
		}
	}()
	w.logger.Info("Serving metrics", slog.String("addr", addr))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			w.logger.Warn("Metrics server shutdown error", logfields.Error(err))
		}
	}
}

func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.logger.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnore reports whether changes to path never affect the output:
// hidden and editor temporary files, and anything below the output directory.
func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."),
		strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swx"),
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"),
		base == "Thumbs.db":
		return true
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, dir := range w.ignore {
		if rel, err := filepath.Rel(dir, abs); err == nil && filepath.IsLocal(rel) {
			return true
		}
	}
	return false
}
