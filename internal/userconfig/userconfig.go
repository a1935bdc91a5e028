// Package userconfig loads user configuration documents and splits them
// into host global options and per-tool override sections.
package userconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/cast"

	"github.com/r9s-ai/gofumpt-plugin/internal/plugin"
)

// Format is the syntax of a configuration document.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatTOML  Format = "toml"
	FormatYAML  Format = "yaml"
	FormatHCL   Format = "hcl"
)

// BaseName is the file name Find looks for, without extension.
const BaseName = "gofumpt-plugin"

var extensions = []struct {
	ext    string
	format Format
}{
	{".json", FormatJSON},
	{".jsonc", FormatJSONC},
	{".toml", FormatTOML},
	{".yaml", FormatYAML},
	{".yml", FormatYAML},
	{".hcl", FormatHCL},
}

// FormatForPath picks a Format from the file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if e.ext == ext {
			return e.format, nil
		}
	}
	return "", fmt.Errorf("unsupported configuration file extension %q", ext)
}

// Document is a parsed configuration document.
type Document struct {
	Path     string
	Global   plugin.GlobalOptions
	Sections map[string]plugin.RawOverrides
	// Diagnostics report entries that were skipped.
	Diagnostics []plugin.Diagnostic
}

// Section returns a copy of the named tool section, empty when absent.
func (d *Document) Section(key string) plugin.RawOverrides {
	out := plugin.RawOverrides{}
	if d == nil {
		return out
	}
	for k, v := range d.Sections[key] {
		out[k] = v
	}
	return out
}

// Find walks from startDir towards the filesystem root and returns the
// first configuration file found.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, prefix := range []string{"", "."} {
			for _, e := range extensions {
				candidate := filepath.Join(dir, prefix+BaseName+e.ext)
				if _, err := os.Stat(candidate); err == nil {
					return candidate, true, nil
				} else if !errors.Is(err, os.ErrNotExist) {
					return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
				}
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*Document, error) {
	var (
		m   map[string]any
		err error
	)
	switch format {
	case FormatJSON:
		m, err = decodeJSON(data)
	case FormatJSONC:
		m, err = decodeJSONC(data)
	case FormatTOML:
		m, err = decodeTOML(data)
	case FormatYAML:
		m, err = decodeYAML(data)
	case FormatHCL:
		m, err = decodeHCL(data)
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return FromMap(m), nil
}

var ignoredKeys = map[string]bool{
	"$schema":  true,
	"includes": true,
	"excludes": true,
	"plugins":  true,
}

// FromMap splits a decoded document into global options and tool
// sections. It never fails; problems become diagnostics.
func FromMap(m map[string]any) *Document {
	doc := &Document{Sections: map[string]plugin.RawOverrides{}}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := m[key]
		if ignoredKeys[key] {
			continue
		}
		if section, ok := asMap(value); ok {
			doc.Sections[key] = doc.section(key, section)
			continue
		}
		switch key {
		case "lineWidth":
			if n, ok := positive[uint32](value); ok {
				doc.Global.LineWidth = &n
			} else {
				doc.invalid(key, value)
			}
		case "useTabs":
			if b, err := cast.ToBoolE(value); err == nil {
				doc.Global.UseTabs = &b
			} else {
				doc.invalid(key, value)
			}
		case "indentWidth":
			if n, ok := positive[uint8](value); ok {
				doc.Global.IndentWidth = &n
			} else {
				doc.invalid(key, value)
			}
		case "newLineKind":
			if k, ok := plugin.ParseNewLineKind(cast.ToString(value)); ok {
				doc.Global.NewLineKind = &k
			} else {
				doc.invalid(key, value)
			}
		default:
			doc.Diagnostics = append(doc.Diagnostics, plugin.Diagnostic{
				PropertyName: key,
				Message:      fmt.Sprintf("Unknown property in configuration: %s", key),
			})
		}
	}
	sort.SliceStable(doc.Diagnostics, func(i, j int) bool {
		return doc.Diagnostics[i].PropertyName < doc.Diagnostics[j].PropertyName
	})
	return doc
}

func (d *Document) section(name string, m map[string]any) plugin.RawOverrides {
	out := plugin.RawOverrides{}
	for k, v := range m {
		// Maps and lists fail to cast.
		s, err := cast.ToStringE(v)
		if err != nil {
			d.Diagnostics = append(d.Diagnostics, plugin.Diagnostic{
				PropertyName: name + "." + k,
				Message:      "Expected a string, number, or boolean value.",
			})
			continue
		}
		out[k] = s
	}
	return out
}

func (d *Document) invalid(key string, value any) {
	d.Diagnostics = append(d.Diagnostics, plugin.Diagnostic{
		PropertyName: key,
		Message:      fmt.Sprintf("Invalid value for global option %s: %v", key, value),
	})
}

// positive coerces v to a non-zero T, rejecting values that would
// overflow it.
func positive[T uint8 | uint32](v any) (T, bool) {
	n, err := cast.ToInt64E(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	out, err := safecast.Conv[T](n)
	if err != nil {
		return 0, false
	}
	return out, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	default:
		return nil, false
	}
}
