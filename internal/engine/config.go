package engine

import (
	"fmt"
	"strings"
)

// NewlineStyle selects the line ending written to formatted output.
type NewlineStyle int

const (
	// NewlineAuto follows the first line ending found in the input.
	NewlineAuto NewlineStyle = iota
	// NewlineNative uses the line ending of the running platform.
	NewlineNative
	NewlineUnix
	NewlineWindows
)

var newlineStyleNames = map[NewlineStyle]string{
	NewlineAuto:    "Auto",
	NewlineNative:  "Native",
	NewlineUnix:    "Unix",
	NewlineWindows: "Windows",
}

func (s NewlineStyle) String() string {
	if name, ok := newlineStyleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("NewlineStyle(%d)", int(s))
}

// EmitMode selects where a Session writes its result.
type EmitMode int

const (
	// EmitFiles writes formatted text back to the input path.
	EmitFiles EmitMode = iota
	// EmitStdout writes "<name>:\n\n" followed by the formatted text.
	EmitStdout
	// EmitDiff writes a line diff between input and formatted text.
	EmitDiff
)

var emitModeNames = map[EmitMode]string{
	EmitFiles:  "Files",
	EmitStdout: "Stdout",
	EmitDiff:   "Diff",
}

func (m EmitMode) String() string {
	if name, ok := emitModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("EmitMode(%d)", int(m))
}

// DefaultEdition is the Go language version code is parsed as unless
// configured otherwise by the caller.
const DefaultEdition = "go1.21"

// Config is an immutable engine configuration. The zero value is not
// useful; start from DefaultConfig and change it through a Builder.
//
// Config holds only value fields, so copies are independent and a Config
// may be shared between goroutines.
type Config struct {
	maxWidth            int
	hardTabs            bool
	tabSpaces           int
	newlineStyle        NewlineStyle
	edition             string
	modulePath          string
	extraRules          bool
	errorOnLineOverflow bool
	emitMode            EmitMode
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		maxWidth:     100,
		hardTabs:     true,
		tabSpaces:    8,
		newlineStyle: NewlineAuto,
		emitMode:     EmitFiles,
	}
}

func (c Config) MaxWidth() int { return c.maxWidth }
func (c Config) HardTabs() bool { return c.hardTabs }
func (c Config) TabSpaces() int { return c.tabSpaces }
func (c Config) NewlineStyle() NewlineStyle { return c.newlineStyle }
func (c Config) Edition() string { return c.edition }
func (c Config) ModulePath() string { return c.modulePath }
func (c Config) ExtraRules() bool { return c.extraRules }
func (c Config) ErrorOnLineOverflow() bool { return c.errorOnLineOverflow }
func (c Config) EmitMode() EmitMode { return c.emitMode }

// Fingerprint returns a stable textual form of every setting. Two configs
// with equal fingerprints format identically.
func (c Config) Fingerprint() string {
	var b strings.Builder
	fmt.Fprintf(&b, "max_width=%d;", c.maxWidth)
	fmt.Fprintf(&b, "hard_tabs=%t;", c.hardTabs)
	fmt.Fprintf(&b, "tab_spaces=%d;", c.tabSpaces)
	fmt.Fprintf(&b, "newline_style=%s;", c.newlineStyle)
	fmt.Fprintf(&b, "edition=%q;", c.edition)
	fmt.Fprintf(&b, "module_path=%q;", c.modulePath)
	fmt.Fprintf(&b, "extra_rules=%t;", c.extraRules)
	fmt.Fprintf(&b, "error_on_line_overflow=%t;", c.errorOnLineOverflow)
	fmt.Fprintf(&b, "emit_mode=%s", c.emitMode)
	return b.String()
}
