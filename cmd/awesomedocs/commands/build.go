package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/awesometheme/internal/build"
	"git.home.luguber.info/inful/awesometheme/internal/config"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Override output.directory"`
	Format string `short:"b" help:"Override output.format (html|json)" enum:",html,json" default:""`
	Force  bool   `short:"f" help:"Rebuild every document regardless of recorded state"`
	Jobs   int    `short:"j" help:"Override build.jobs"`
	Since  string `help:"Also rebuild documents changed in git since this revision"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	b.apply(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, g, cfg, b.Force, os.Stdout)
}

// apply copies flag overrides into cfg.
func (b *BuildCmd) apply(cfg *config.Config) {
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Format != "" {
		cfg.Output.Format = config.OutputFormat(b.Format)
	}
	if b.Jobs > 0 {
		cfg.Build.Jobs = b.Jobs
	}
	if b.Since != "" {
		cfg.Build.Since = b.Since
	}
}

// RunBuild runs one build and prints a summary to out.
func RunBuild(ctx context.Context, g *Global, cfg *config.Config, force bool, out io.Writer) error {
	store, err := openStore(cfg, false)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryState, "failed to open build state").Fatal().Build()
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	notifier := newNotifier(cfg, g.Logger)
	defer func() { _ = notifier.Close() }()

	svc := build.NewBuildService().WithStore(store).WithLogger(g.Logger)
	result, err := svc.Run(ctx, build.BuildRequest{Config: cfg, Force: force})
	if nerr := notifier.Notify(ctx, result, err); nerr != nil {
		ferrors.Report(ctx, g.Logger, nerr)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Build %s: %d read, %d written, %d removed, %d warnings in %s\n",
		result.Status, result.DocsRead, result.DocsWritten, result.DocsRemoved, result.Warnings,
		result.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(out, "Output: %s\n", result.OutputPath)
	return nil
}
