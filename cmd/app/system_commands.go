package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server exposing every operation",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:      "exec",
			Usage:     "Run any operation with raw JSON parameters",
			ArgsUsage: "<operation>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "params",
					Aliases: []string{"p"},
					Usage:   "JSON object of parameters (read from stdin when omitted)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				name := cmd.Args().First()
				if name == "" {
					return fmt.Errorf("operation name is required")
				}
				return operationAction(name, func(cmd *cli.Command, stdio commands.IOTuple) (any, error) {
					raw := cmd.String("params")
					if raw == "" {
						secret, err := commands.ReadSecret(stdio.Reader)
						if err != nil {
							return nil, err
						}
						raw = secret
					}
					return json.RawMessage(raw), nil
				})(ctx, cmd)
			},
		},
	}
}
