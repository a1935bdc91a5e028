package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/r9s-ai/gofumpt-plugin/internal/engine"
	"github.com/r9s-ai/gofumpt-plugin/internal/plugin"
)

// ErrNotFormatted is returned by format --check when a file would change.
var ErrNotFormatted = errors.New("some files are not formatted")

type formatOptions struct {
	config configFlags
	write  bool
	check  bool
	diff   bool
	jobs   int
}

type formatResult struct {
	path    string
	out     string
	changed bool
	err     error
}

func newFormatCmd(opts Options) *cobra.Command {
	var formatOpts formatOptions
	cmd := &cobra.Command{
		Use:   "format [file...|-]",
		Short: "Format Go source files",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]string, 0, len(args))
			for _, a := range args {
				a = strings.TrimSpace(a)
				if a == "" {
					a = "-"
				}
				paths = append(paths, a)
			}
			if len(paths) == 0 {
				paths = []string{"-"}
			}
			return runFormat(cmd, opts, formatOpts, paths)
		},
	}

	fs := cmd.Flags()
	formatOpts.config.register(fs)
	fs.BoolVarP(&formatOpts.write, "write", "w", false, "write result back to file")
	fs.BoolVar(&formatOpts.check, "check", false, "list files that would change and fail if any")
	fs.BoolVar(&formatOpts.diff, "diff", false, "print a diff instead of the formatted source")
	fs.IntVarP(&formatOpts.jobs, "jobs", "j", 0, "number of files formatted in parallel (default GOMAXPROCS)")
	cmd.MarkFlagsMutuallyExclusive("write", "check", "diff")
	return cmd
}

func runFormat(cmd *cobra.Command, opts Options, formatOpts formatOptions, paths []string) error {
	var stdin []byte
	stdinCount := 0
	for _, p := range paths {
		if p == "-" {
			stdinCount++
		}
	}
	if stdinCount > 0 {
		if formatOpts.write {
			return errors.New("--write requires a file path")
		}
		if stdinCount > 1 {
			return errors.New("stdin can only be formatted once")
		}
		if isTerminal(opts.Stdin) {
			return errors.New("refusing to read source from a terminal; pass file paths or pipe input")
		}
		src, err := io.ReadAll(opts.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		stdin = src
	}

	h := plugin.Gofumpt{}
	res, err := formatOpts.config.resolve(cmd, h, opts.WorkDir)
	if err != nil {
		return err
	}
	printWarnings(opts.Stderr, res.diagnostics)

	jobs := formatOpts.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]formatResult, len(paths))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = formatOne(path, stdin, res.config, formatOpts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	changed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(opts.Stderr, "%s: %v\n", displayName(r.path), r.err)
			continue
		}
		if r.changed {
			changed++
		}
		switch {
		case formatOpts.check:
			if r.changed {
				fmt.Fprintln(opts.Stdout, displayName(r.path))
			}
		case formatOpts.diff:
			writeColoredDiff(opts.Stdout, r.out)
		case formatOpts.write:
		default:
			if _, err := io.WriteString(opts.Stdout, r.out); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to format", failed, len(paths))
	}
	if formatOpts.check && changed > 0 {
		return ErrNotFormatted
	}
	return nil
}

func formatOne(path string, stdin []byte, cfg *plugin.Configuration, formatOpts formatOptions) formatResult {
	r := formatResult{path: path}
	var in engine.Input
	if path == "-" {
		in = engine.TextInput(string(stdin))
	} else {
		src, err := os.ReadFile(path)
		if err != nil {
			r.err = fmt.Errorf("read file: %w", err)
			return r
		}
		in = engine.FileInput(path, string(src))
	}

	switch {
	case formatOpts.write:
		r.changed, r.err = emit(cfg, engine.EmitFiles, in, io.Discard)
	case formatOpts.diff:
		var buf bytes.Buffer
		r.changed, r.err = emit(cfg, engine.EmitDiff, in, &buf)
		r.out = buf.String()
	default:
		r.out, r.err = plugin.FormatText(path, in.Text, cfg)
		r.changed = r.err == nil && r.out != in.Text
	}
	return r
}

// emit runs the engine directly with cfg and a different emit mode.
func emit(cfg *plugin.Configuration, mode engine.EmitMode, in engine.Input, out io.Writer) (bool, error) {
	b := engine.NewBuilder(cfg.Engine())
	b.SetEmitMode(mode)
	rep, err := engine.NewSession(b.Build(), out).Format(in)
	return rep.Changed, err
}

var (
	diffDelColor = color.New(color.FgRed)
	diffAddColor = color.New(color.FgGreen)
	diffHdrColor = color.New(color.Bold)
)

func writeColoredDiff(w io.Writer, diff string) {
	sc := bufio.NewScanner(strings.NewReader(diff))
	sc.Buffer(make([]byte, 0, 64*1024), len(diff)+1)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "-"):
			diffDelColor.Fprintln(w, line)
		case strings.HasPrefix(line, "+"):
			diffAddColor.Fprintln(w, line)
		case strings.HasPrefix(line, "Diff in "):
			diffHdrColor.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
}

func displayName(path string) string {
	if path == "-" {
		return engine.StdinName
	}
	return path
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
