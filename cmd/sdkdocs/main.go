package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sdkdocs/cmd/sdkdocs/commands"
	"git.home.luguber.info/inful/sdkdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/sdkdocs/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("sdkdocs"),
		kong.Description("Build the unified API reference site of the SDK."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(cli),
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()})
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
