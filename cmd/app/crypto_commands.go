package main

import (
	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
	"github.com/allisson/keyvault/internal/operation"
)

func getCryptoCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  operation.OpGenerateKeyPair,
			Usage: "Generate an RSA key pair as PEM",
			Action: operationAction(operation.OpGenerateKeyPair, func(*cli.Command, commands.IOTuple) (any, error) {
				return nil, nil
			}),
		},
		{
			Name:  operation.OpEncrypt,
			Usage: "Encrypt data to a PEM public key",
			Flags: []cli.Flag{
				dataFlag("Plaintext"),
				&cli.StringFlag{
					Name:     "public-key-file",
					Required: true,
					Usage:    "Path to a PEM public key",
				},
			},
			Action: operationAction(operation.OpEncrypt, func(cmd *cli.Command, stdio commands.IOTuple) (any, error) {
				publicKey, err := commands.ReadKeyFile(cmd.String("public-key-file"))
				if err != nil {
					return nil, err
				}
				data, err := commands.FlagOrStdin(cmd.String("data"), stdio.Reader)
				if err != nil {
					return nil, err
				}
				return operation.EncryptParams{Data: data, PublicKey: publicKey}, nil
			}),
		},
		{
			Name:  operation.OpDecrypt,
			Usage: "Decrypt base64 ciphertext with a PEM private key",
			Flags: []cli.Flag{
				dataFlag("Base64 ciphertext"),
				&cli.StringFlag{
					Name:     "private-key-file",
					Required: true,
					Usage:    "Path to a PEM private key",
				},
			},
			Action: operationAction(operation.OpDecrypt, func(cmd *cli.Command, stdio commands.IOTuple) (any, error) {
				privateKey, err := commands.ReadKeyFile(cmd.String("private-key-file"))
				if err != nil {
					return nil, err
				}
				data, err := commands.FlagOrStdin(cmd.String("data"), stdio.Reader)
				if err != nil {
					return nil, err
				}
				return operation.DecryptParams{EncryptedData: data, PrivateKey: privateKey}, nil
			}),
		},
		{
			Name:  operation.OpHash,
			Usage: "Print the SHA-256 digest of data as hex",
			Flags: []cli.Flag{dataFlag("Data to hash")},
			Action: operationAction(operation.OpHash, func(cmd *cli.Command, stdio commands.IOTuple) (any, error) {
				data, err := commands.FlagOrStdin(cmd.String("data"), stdio.Reader)
				if err != nil {
					return nil, err
				}
				return operation.HashParams{Data: data}, nil
			}),
		},
		{
			Name:  operation.OpGenerateToken,
			Usage: "Generate a random hex token",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "length",
					Aliases: []string{"l"},
					Usage:   "Number of random bytes (0 uses the default)",
				},
			},
			Action: operationAction(operation.OpGenerateToken, func(cmd *cli.Command, _ commands.IOTuple) (any, error) {
				return operation.GenerateTokenParams{Length: int(cmd.Int("length"))}, nil
			}),
		},
		{
			Name:  operation.OpDeriveKey,
			Usage: "Derive a 32-byte key from a password and salt",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "salt",
					Required: true,
					Usage:    "Salt",
				},
				&cli.StringFlag{
					Name:  "password",
					Usage: "Password (read from stdin when omitted)",
				},
			},
			Action: operationAction(operation.OpDeriveKey, func(cmd *cli.Command, stdio commands.IOTuple) (any, error) {
				password, err := commands.FlagOrStdin(cmd.String("password"), stdio.Reader)
				if err != nil {
					return nil, err
				}
				return operation.DeriveKeyParams{Password: password, Salt: cmd.String("salt")}, nil
			}),
		},
	}
}
