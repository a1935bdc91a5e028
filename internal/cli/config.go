package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/r9s-ai/gofumpt-plugin/internal/plugin"
	"github.com/r9s-ai/gofumpt-plugin/internal/userconfig"
)

// configFlags are the flags shared by commands that resolve a
// configuration.
type configFlags struct {
	path        string
	lineWidth   uint32
	useTabs     bool
	indentWidth uint8
	newLineKind string
	set         []string
}

func (f *configFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.path, "config", "", "configuration file (default: search upwards for "+userconfig.BaseName+".*)")
	fs.Uint32Var(&f.lineWidth, "line-width", 0, "global line width")
	fs.BoolVar(&f.useTabs, "use-tabs", false, "global: indent with tabs")
	fs.Uint8Var(&f.indentWidth, "indent-width", 0, "global indent width")
	fs.StringVar(&f.newLineKind, "new-line-kind", "", "global newline kind: auto, lf, crlf or system")
	fs.StringArrayVar(&f.set, "set", nil, "gofumpt override as key=value (repeatable)")
}

// globals returns the global options given explicitly on the command line.
func (f *configFlags) globals(fs *pflag.FlagSet) (plugin.GlobalOptions, error) {
	var g plugin.GlobalOptions
	if fs.Changed("line-width") {
		g.LineWidth = &f.lineWidth
	}
	if fs.Changed("use-tabs") {
		g.UseTabs = &f.useTabs
	}
	if fs.Changed("indent-width") {
		g.IndentWidth = &f.indentWidth
	}
	if fs.Changed("new-line-kind") {
		kind, ok := plugin.ParseNewLineKind(f.newLineKind)
		if !ok {
			return g, fmt.Errorf("invalid --new-line-kind %q", f.newLineKind)
		}
		g.NewLineKind = &kind
	}
	return g, nil
}

func (f *configFlags) document(workDir string) (*userconfig.Document, error) {
	if f.path != "" {
		return userconfig.Load(f.path)
	}
	if workDir == "" {
		return userconfig.FromMap(nil), nil
	}
	path, ok, err := userconfig.Find(workDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return userconfig.FromMap(nil), nil
	}
	return userconfig.Load(path)
}

type resolvedConfig struct {
	config      *plugin.Configuration
	diagnostics []plugin.Diagnostic
}

// resolve loads the configuration document and applies command line
// globals and --set entries on top of it.
func (f *configFlags) resolve(cmd *cobra.Command, h plugin.Handler, workDir string) (resolvedConfig, error) {
	doc, err := f.document(workDir)
	if err != nil {
		return resolvedConfig{}, err
	}
	global, err := f.globals(cmd.Flags())
	if err != nil {
		return resolvedConfig{}, err
	}
	overrides := doc.Section(h.ConfigKey())
	for _, kv := range f.set {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return resolvedConfig{}, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		overrides[key] = value
	}

	cfg, diags := h.ResolveConfig(overrides, doc.Global.Merge(global))
	all := make([]plugin.Diagnostic, 0, len(doc.Diagnostics)+len(diags))
	all = append(all, doc.Diagnostics...)
	all = append(all, diags...)
	return resolvedConfig{config: cfg, diagnostics: all}, nil
}

var warnColor = color.New(color.FgYellow)

func printWarnings(w io.Writer, diags []plugin.Diagnostic) {
	for _, d := range diags {
		warnColor.Fprint(w, "warning:")
		fmt.Fprintf(w, " %s\n", d)
	}
}

func newConfigCmd(opts Options) *cobra.Command {
	var flags configFlags
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration and its diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := plugin.Gofumpt{}
			res, err := flags.resolve(cmd, h, opts.WorkDir)
			if err != nil {
				return err
			}
			eng := res.config.Engine()
			out := struct {
				Overrides   *plugin.Configuration `json:"overrides"`
				Engine      map[string]any        `json:"engine"`
				Diagnostics []plugin.Diagnostic   `json:"diagnostics"`
			}{
				Overrides: res.config,
				Engine: map[string]any{
					"max_width":              eng.MaxWidth(),
					"hard_tabs":              eng.HardTabs(),
					"tab_spaces":             eng.TabSpaces(),
					"newline_style":          eng.NewlineStyle().String(),
					"edition":                eng.Edition(),
					"module_path":            eng.ModulePath(),
					"extra_rules":            eng.ExtraRules(),
					"error_on_line_overflow": eng.ErrorOnLineOverflow(),
					"emit_mode":              eng.EmitMode().String(),
				},
				Diagnostics: res.diagnostics,
			}
			enc := json.NewEncoder(opts.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
