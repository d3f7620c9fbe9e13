package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// Flags shared by every subcommand.
var (
	mapsDir   string
	logLevel  string
	logFormat string
)

func main() {
	app := &cli.Command{
		Name:  "galmap",
		Usage: "Sample Milky Way dust maps",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			sampleCmd(),
			extinctCmd(),
			serveCmd(),
			mkmapCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
