package cli

import internalcli "github.com/r9s-ai/gofumpt-plugin/internal/cli"

type BuildInfo = internalcli.BuildInfo
type Options = internalcli.Options

// ErrNotFormatted is returned by format --check when a file would change.
var ErrNotFormatted = internalcli.ErrNotFormatted

func Run(args []string, opts Options) error {
	return internalcli.Run(args, opts)
}
