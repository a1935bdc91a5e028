package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/r9s-ai/gofumpt-plugin/cli"
)

// Set at build time via -ldflags.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	err := cli.Run(args, cli.Options{
		BuildInfo: cli.BuildInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		},
	})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrNotFormatted):
		return 1
	default:
		fmt.Fprintf(os.Stderr, "gofumpt-plugin: %v\n", err)
		return 2
	}
}
