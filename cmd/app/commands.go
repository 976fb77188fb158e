package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
	"github.com/allisson/keyvault/internal/operation"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands()...)
	cmds = append(cmds, getCryptoCommands()...)
	return cmds
}

// paramsFunc builds the parameters of one operation from flags and stdin.
type paramsFunc func(cmd *cli.Command, stdio commands.IOTuple) (any, error)

// operationAction runs a single named operation against a fresh container and
// prints its envelope. Logs go to stderr so stdout carries only the envelope.
func operationAction(name string, params paramsFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		stdio := commands.DefaultIO()

		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return commands.WriteResult(stdio.Writer, name, operation.Fail(err))
		}

		container := app.NewContainer(cfg)
		container.SetLogOutput(os.Stderr)
		defer func() { _ = container.Shutdown(ctx) }()

		dispatcher, err := container.Dispatcher()
		if err != nil {
			return commands.WriteResult(stdio.Writer, name, operation.Fail(err))
		}

		p, err := params(cmd, stdio)
		if err != nil {
			return err
		}

		return commands.RunOperation(ctx, dispatcher, stdio.Writer, name, p)
	}
}
