package main

import (
	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
	"github.com/allisson/keyvault/internal/operation"
)

func idFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Aliases:  []string{"i"},
		Required: true,
		Usage:    "Secret id (e.g., claude-prod)",
	}
}

func dataFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   usage + " (read from stdin when omitted)",
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  operation.OpStoreKey,
			Usage: "Encrypt and store a secret under an id, replacing any previous value",
			Flags: []cli.Flag{
				idFlag(),
				dataFlag("Secret value"),
				&cli.StringFlag{
					Name:    "kind",
					Aliases: []string{"k"},
					Usage:   "Secret kind: credential, encryption or signing",
				},
			},
			Action: operationAction(operation.OpStoreKey, func(cmd *cli.Command, stdio commands.IOTuple) (any, error) {
				data, err := commands.FlagOrStdin(cmd.String("data"), stdio.Reader)
				if err != nil {
					return nil, err
				}
				return operation.StoreKeyParams{ID: cmd.String("id"), Data: data, Kind: cmd.String("kind")}, nil
			}),
		},
		{
			Name:  operation.OpRetrieveKey,
			Usage: "Decrypt and print a stored secret",
			Flags: []cli.Flag{idFlag()},
			Action: operationAction(operation.OpRetrieveKey, func(cmd *cli.Command, _ commands.IOTuple) (any, error) {
				return operation.KeyIDParams{ID: cmd.String("id")}, nil
			}),
		},
		{
			Name:  operation.OpDeleteKey,
			Usage: "Delete a stored secret",
			Flags: []cli.Flag{idFlag()},
			Action: operationAction(operation.OpDeleteKey, func(cmd *cli.Command, _ commands.IOTuple) (any, error) {
				return operation.KeyIDParams{ID: cmd.String("id")}, nil
			}),
		},
		{
			Name:  operation.OpListKeys,
			Usage: "List metadata of every stored secret",
			Action: operationAction(operation.OpListKeys, func(*cli.Command, commands.IOTuple) (any, error) {
				return nil, nil
			}),
		},
		{
			Name:  operation.OpRotateKey,
			Usage: "Replace the value of an existing secret and bump its rotation count",
			Flags: []cli.Flag{idFlag(), dataFlag("New secret value")},
			Action: operationAction(operation.OpRotateKey, func(cmd *cli.Command, stdio commands.IOTuple) (any, error) {
				data, err := commands.FlagOrStdin(cmd.String("data"), stdio.Reader)
				if err != nil {
					return nil, err
				}
				return operation.RotateKeyParams{ID: cmd.String("id"), NewData: data}, nil
			}),
		},
	}
}
