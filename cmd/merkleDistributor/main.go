package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-distributor-go/pkg/config"
	"github.com/Layr-Labs/merkle-distributor-go/pkg/hashing"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "merkle-distributor",
		Usage: "Build and verify merkle distributor manifests",
		Description: `Turns a set of account balances into a merkle root plus one inclusion proof per account.

Commands:
- generate: parse a balance file and emit the manifest
- verify: check one claim or a whole manifest against its root
- proof: print a stored claim
- list: list stored manifests

The manifest is written to stdout, logs go to stderr.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file. Flags and environment variables override it",
			},
			&cli.StringFlag{
				Name:    "hash",
				Usage:   fmt.Sprintf("Hash strategy: %s", hashing.GetSupportedHashTypesString()),
				Value:   hashing.DefaultHashType.String(),
				EnvVars: []string{config.EnvMerkleHashType},
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "Goroutines used to generate proofs",
				Value:   config.DefaultWorkers,
				EnvVars: []string{config.EnvMerkleWorkers},
			},
			&cli.StringFlag{
				Name:    "store-type",
				Usage:   fmt.Sprintf("Manifest store: %s", config.GetSupportedStoreTypesString()),
				Value:   config.StoreTypeNone.String(),
				EnvVars: []string{config.EnvMerkleStoreType},
			},
			&cli.StringFlag{
				Name:    "store-path",
				Usage:   "Data directory for badger or leveldb stores",
				EnvVars: []string{config.EnvMerkleStorePath},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvMerkleVerbose},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate a manifest from a balance file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Balance file: a JSON array of {address, earnings, reasons} or an {address: earnings} object",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Also write an indented copy of the manifest to this file",
					},
					&cli.BoolFlag{
						Name:  "sort-leaves",
						Usage: "Build the tree over sorted leaf hashes",
					},
					&cli.BoolFlag{
						Name:  "empty-flags",
						Usage: "Emit an empty flags object for records that have reasons but no flags",
					},
					&cli.StringSliceFlag{
						Name:  "reason-flag",
						Usage: "Derive a claim flag from reasons, as name=substring. Repeatable",
					},
				},
				Action: generateCommand,
			},
			{
				Name:  "verify",
				Usage: "Verify a manifest, or one account's claim in it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "manifest",
						Aliases:  []string{"m"},
						Usage:    "Manifest JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "account",
						Usage: "Only verify this account's claim",
					},
				},
				Action: verifyCommand,
			},
			{
				Name:  "proof",
				Usage: "Print a stored claim",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "root",
						Usage:    "Merkle root of the stored manifest",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "account",
						Usage:    "Account to print the claim for",
						Required: true,
					},
				},
				Action: proofCommand,
			},
			{
				Name:   "list",
				Usage:  "List stored manifests",
				Action: listCommand,
			},
		},
	}
}
