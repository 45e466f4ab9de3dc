// Command awesomedocs builds documentation sites with the awesome theme.
package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/awesometheme/cmd/awesomedocs/commands"
	ferrors "git.home.luguber.info/inful/awesometheme/internal/foundation/errors"
	"git.home.luguber.info/inful/awesometheme/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("awesomedocs"),
		kong.Description("Build documentation sites with the awesome theme."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	if err := ctx.Run(global, &cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
