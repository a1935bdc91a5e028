package engine

import (
	"errors"
	"fmt"
	"go/version"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// ErrUnknownKey is returned by Builder.Override for keys outside the schema.
var ErrUnknownKey = errors.New("unknown configuration key")

// Option describes one key of the configuration schema.
type Option struct {
	Name    string
	Doc     string
	Default string
	// Values lists the accepted spellings of an enum option.
	Values []string
}

type option struct {
	Option
	parse func(string) (any, error)
	apply func(*Config, any)
}

var options = map[string]option{
	"max_width": {
		Option: Option{Name: "max_width", Doc: "Maximum width of each line.", Default: "100"},
		parse:  intInRange(1, 1000),
		apply:  func(c *Config, v any) { c.maxWidth = v.(int) },
	},
	"hard_tabs": {
		Option: Option{Name: "hard_tabs", Doc: "Indent with tabs instead of spaces.", Default: "true"},
		parse:  parseBool,
		apply:  func(c *Config, v any) { c.hardTabs = v.(bool) },
	},
	"tab_spaces": {
		Option: Option{Name: "tab_spaces", Doc: "Number of columns per indentation level.", Default: "8"},
		parse:  intInRange(1, 16),
		apply:  func(c *Config, v any) { c.tabSpaces = v.(int) },
	},
	"newline_style": {
		Option: Option{
			Name:    "newline_style",
			Doc:     "Line ending written to formatted output.",
			Default: "Auto",
			Values:  []string{"Auto", "Native", "Unix", "Windows"},
		},
		parse: func(s string) (any, error) { return parseEnum(s, newlineStyleNames) },
		apply: func(c *Config, v any) { c.newlineStyle = v.(NewlineStyle) },
	},
	"edition": {
		Option: Option{Name: "edition", Doc: "Go language version the source is written in, e.g. go1.21."},
		parse: func(s string) (any, error) {
			if !version.IsValid(s) {
				return nil, fmt.Errorf("invalid Go version %q", s)
			}
			return s, nil
		},
		apply: func(c *Config, v any) { c.edition = v.(string) },
	},
	"module_path": {
		Option: Option{Name: "module_path", Doc: "Module path of the formatted code, used to group imports."},
		parse:  func(s string) (any, error) { return s, nil },
		apply:  func(c *Config, v any) { c.modulePath = v.(string) },
	},
	"extra_rules": {
		Option: Option{Name: "extra_rules", Doc: "Enable gofumpt's extra rules.", Default: "false"},
		parse:  parseBool,
		apply:  func(c *Config, v any) { c.extraRules = v.(bool) },
	},
	"error_on_line_overflow": {
		Option: Option{Name: "error_on_line_overflow", Doc: "Fail when a formatted line exceeds max_width.", Default: "false"},
		parse:  parseBool,
		apply:  func(c *Config, v any) { c.errorOnLineOverflow = v.(bool) },
	},
	"emit_mode": {
		Option: Option{
			Name:    "emit_mode",
			Doc:     "Where formatted output is written.",
			Default: "Files",
			Values:  []string{"Files", "Stdout", "Diff"},
		},
		parse: func(s string) (any, error) { return parseEnum(s, emitModeNames) },
		apply: func(c *Config, v any) { c.emitMode = v.(EmitMode) },
	},
}

// IsValidKeyVal reports whether key is part of the schema and value
// parses as a legal value for it.
func IsValidKeyVal(key, value string) bool {
	opt, ok := options[key]
	if !ok {
		return false
	}
	_, err := opt.parse(value)
	return err == nil
}

// Options returns the schema sorted by key.
func Options() []Option {
	out := make([]Option, 0, len(options))
	for _, opt := range options {
		out = append(out, opt.Option)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func parseBool(s string) (any, error) {
	return cast.ToBoolE(strings.TrimSpace(s))
}

func intInRange(lo, hi int) func(string) (any, error) {
	return func(s string) (any, error) {
		n, err := cast.ToIntE(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		if n < lo || n > hi {
			return nil, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
		}
		return n, nil
	}
}

func parseEnum[T comparable](s string, names map[T]string) (any, error) {
	s = strings.TrimSpace(s)
	for v, name := range names {
		if strings.EqualFold(name, s) {
			return v, nil
		}
	}
	return nil, fmt.Errorf("unknown value %q", s)
}
