// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:     "keyvault",
		Usage:    "Local secret vault and asymmetric crypto toolkit",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		// Operation failures were already written to stdout as an envelope.
		var opErr *commands.OperationError
		if !errors.As(err, &opErr) {
			slog.Error("application error", slog.Any("error", err))
		}
		os.Exit(commands.ExitCode(err))
	}
}
