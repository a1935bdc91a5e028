package engine

import (
	"bytes"
	"fmt"
	"go/parser"
	"go/printer"
	"go/token"
	"io"
	"os"
	"runtime"

	"mvdan.cc/gofumpt/format"
)

// StdinName is the name given to inputs that carry no file name.
const StdinName = "stdin"

// Input is one unit of source handed to a Session.
type Input struct {
	// Name labels the input in emitted output and errors.
	Name string
	// Path is where EmitFiles writes the result. Empty for text inputs.
	Path string
	Text string
}

// TextInput wraps in-memory source with no backing file.
func TextInput(text string) Input {
	return Input{Name: StdinName, Text: text}
}

// FileInput wraps source read from path.
func FileInput(path, text string) Input {
	return Input{Name: path, Path: path, Text: text}
}

// Report summarises one Format call.
type Report struct {
	Changed bool
}

// Session formats inputs with a fixed Config and writes results to out
// according to the configured EmitMode.
type Session struct {
	cfg Config
	out io.Writer
}

func NewSession(cfg Config, out io.Writer) *Session {
	return &Session{cfg: cfg, out: out}
}

// Format formats in and emits the result. Nothing is emitted when an
// error is returned.
func (s *Session) Format(in Input) (Report, error) {
	name := in.Name
	if name == "" {
		name = StdinName
	}
	src := []byte(in.Text)
	formatted, err := formatSource(s.cfg, name, src)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Changed: !bytes.Equal(src, formatted)}
	if err := s.emit(in, name, src, formatted, rep.Changed); err != nil {
		return Report{}, err
	}
	return rep, nil
}

func (s *Session) emit(in Input, name string, src, formatted []byte, changed bool) error {
	switch s.cfg.emitMode {
	case EmitStdout:
		if _, err := fmt.Fprintf(s.out, "%s:\n\n", name); err != nil {
			return &Error{Kind: KindInternal, File: name, Msg: "write output", Err: err}
		}
		if _, err := s.out.Write(formatted); err != nil {
			return &Error{Kind: KindInternal, File: name, Msg: "write output", Err: err}
		}
	case EmitDiff:
		if err := writeDiff(s.out, name, src, formatted); err != nil {
			return &Error{Kind: KindInternal, File: name, Msg: "write diff", Err: err}
		}
	case EmitFiles:
		if in.Path == "" {
			return &Error{Kind: KindInternal, File: name, Msg: "emit mode Files requires a file input"}
		}
		if !changed {
			return nil
		}
		mode := os.FileMode(0o644)
		if st, statErr := os.Stat(in.Path); statErr == nil {
			mode = st.Mode().Perm()
		}
		if err := os.WriteFile(in.Path, formatted, mode); err != nil {
			return &Error{Kind: KindInternal, File: name, Msg: "write file", Err: err}
		}
	default:
		return &Error{Kind: KindInternal, File: name, Msg: fmt.Sprintf("unsupported emit mode %s", s.cfg.emitMode)}
	}
	return nil
}

func formatSource(cfg Config, name string, src []byte) ([]byte, error) {
	out, err := format.Source(src, format.Options{
		LangVersion: cfg.edition,
		ModulePath:  cfg.modulePath,
		ExtraRules:  cfg.extraRules,
	})
	if err != nil {
		return nil, parseError(name, err)
	}
	out, err = reprint(cfg, out)
	if err != nil {
		return nil, &Error{Kind: KindInternal, File: name, Msg: "reprint formatted source", Err: err}
	}
	if cfg.errorOnLineOverflow {
		if err := checkLineWidth(cfg, name, out); err != nil {
			return nil, err
		}
	}
	return applyNewline(out, newlineFor(cfg.newlineStyle, src)), nil
}

// reprint applies the indentation settings on top of gofumpt's output,
// which is always tab-indented with a tab width of 8.
func reprint(cfg Config, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	mode := printer.UseSpaces
	if cfg.hardTabs {
		mode |= printer.TabIndent
	}
	pc := printer.Config{Mode: mode, Tabwidth: cfg.tabSpaces}
	var buf bytes.Buffer
	if err := pc.Fprint(&buf, fset, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newlineFor(style NewlineStyle, src []byte) string {
	switch style {
	case NewlineUnix:
		return "\n"
	case NewlineWindows:
		return "\r\n"
	case NewlineNative:
		return nativeNewline()
	default:
		if i := bytes.IndexByte(src, '\n'); i >= 0 {
			if i > 0 && src[i-1] == '\r' {
				return "\r\n"
			}
			return "\n"
		}
		return nativeNewline()
	}
}

func nativeNewline() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

func applyNewline(src []byte, nl string) []byte {
	if nl == "\n" {
		return src
	}
	return bytes.ReplaceAll(src, []byte("\n"), []byte(nl))
}
