package commands

import (
	"context"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/awesometheme/internal/build"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/metrics"
	"git.home.luguber.info/inful/awesometheme/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output      string `short:"o" help:"Override output.directory"`
	MetricsAddr string `name:"metrics-addr" help:"Override monitoring.metrics_addr"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if w.Output != "" {
		cfg.Output.Directory = w.Output
	}
	if w.MetricsAddr != "" {
		cfg.Monitoring.MetricsAddr = w.MetricsAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := openStore(cfg, true)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryState, "failed to open build state").Fatal().Build()
	}
	defer func() { _ = store.Close() }()

	notifier := newNotifier(cfg, g.Logger)
	defer func() { _ = notifier.Close() }()

	svc := build.NewBuildService().WithStore(store).WithLogger(g.Logger)
	opts := []watch.Option{watch.WithLogger(g.Logger), watch.WithNotifier(notifier)}
	if cfg.Monitoring.MetricsAddr != "" {
		reg := prom.NewRegistry()
		svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
		opts = append(opts, watch.WithMetricsRegistry(reg))
	}
	return watch.New(cfg, svc, opts...).Run(ctx)
}
