package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/gofumpt-plugin/internal/lsp"
	"github.com/r9s-ai/gofumpt-plugin/internal/userconfig"
)

type ServeRuntimeOptions struct {
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	BuildInfo  BuildInfo
	ConfigPath string
	LogLevel   slog.Level
}

type ServeRunner func(opts ServeRuntimeOptions) error

type serveOptions struct {
	configPath string
	logLevel   string
}

func newServeCmd(opts Options) *cobra.Command {
	var serveOpts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gofumpt formatting server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeWithOptions(opts, serveOpts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&serveOpts.configPath, "config", "", "configuration file (default: discovered from the workspace root)")
	fs.StringVar(&serveOpts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	return cmd
}

func runServeWithOptions(opts Options, serveOpts serveOptions) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(serveOpts.logLevel))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", serveOpts.logLevel, err)
	}
	return opts.ServeRunner(ServeRuntimeOptions{
		Stdin:      opts.Stdin,
		Stdout:     opts.Stdout,
		Stderr:     opts.Stderr,
		BuildInfo:  opts.BuildInfo,
		ConfigPath: serveOpts.configPath,
		LogLevel:   level,
	})
}

func defaultServeRunner(opts ServeRuntimeOptions) error {
	lsp.ServerVersion = opts.BuildInfo.Version
	logger := slog.New(slog.NewTextHandler(opts.Stderr, &slog.HandlerOptions{Level: opts.LogLevel})).
		With("component", "gofumpt-plugin")

	var serverOpts []lsp.Option
	if opts.ConfigPath != "" {
		doc, err := userconfig.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
		serverOpts = append(serverOpts, lsp.WithConfig(doc))
	}
	srv := lsp.NewServer(opts.Stdin, opts.Stdout, logger, serverOpts...)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	return nil
}
