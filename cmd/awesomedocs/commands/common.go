// Package commands implements the awesomedocs subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/awesometheme/internal/config"
	"git.home.luguber.info/inful/awesometheme/internal/environment"
	"git.home.luguber.info/inful/awesometheme/internal/notify"
	"git.home.luguber.info/inful/awesometheme/internal/observability"
	"git.home.luguber.info/inful/awesometheme/internal/retry"

	// Registers the awesome theme and its companion extensions.
	_ "git.home.luguber.info/inful/awesometheme/internal/theme"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"awesome.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Build the documentation site"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild the site whenever sources change"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Discover DiscoverCmd `cmd:"" help:"List documents and the navigation tree without building"`
}

// AfterApply runs after flag parsing; it installs a text logger until the
// configuration chooses the final handler.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = newLogger(os.Stderr, config.LoggingConfig{}, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration file and reconfigures logging from it.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = newLogger(os.Stderr, cfg.Monitoring.Logging, root.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// newLogger builds the process logger. Records carry the build ID, stage
// and docname of their context.
func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(lc.Level, verbose)}
	var h slog.Handler
	if lc.Format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(observability.NewContextHandler(h))
}

func logLevel(level config.LogLevel, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openStore returns the fingerprint store. A configured state file wins;
// otherwise watch mode keeps state in memory and one-shot builds keep none.
func openStore(cfg *config.Config, watch bool) (environment.Store, error) {
	switch {
	case cfg.Build.StateFile != "":
		store, err := environment.NewSQLiteStore(cfg.Build.StateFile)
		if err != nil {
			return nil, fmt.Errorf("open state file %s: %w", cfg.Build.StateFile, err)
		}
		return store, nil
	case watch:
		return environment.NewMemoryStore(), nil
	default:
		return nil, nil
	}
}

// newNotifier connects the build event publisher when notify is configured.
// A server that cannot be reached disables notifications for this run.
func newNotifier(cfg *config.Config, logger *slog.Logger) *notify.Notifier {
	if cfg.Notify == nil {
		return nil
	}
	pub, err := notify.NewNATSPublisher(cfg.Notify)
	if err != nil {
		logger.Warn("Build notifications disabled", slog.String("error", err.Error()))
		return nil
	}
	return notify.NewNotifier(pub, cfg.Project.Title).WithRetry(retry.FromNotify(cfg.Notify))
}
