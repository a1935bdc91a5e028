package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/gofumpt-plugin/internal/plugin"
	"github.com/r9s-ai/gofumpt-plugin/internal/schema"
)

func newSchemaCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the gofumpt configuration section",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Generate()
			if err != nil {
				return err
			}
			_, err = opts.Stdout.Write(append(data, '\n'))
			return err
		},
	}
}

func newLicenseCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "license",
		Short: "Print the license text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(opts.Stdout, plugin.Gofumpt{}.LicenseText())
			return err
		},
	}
}
