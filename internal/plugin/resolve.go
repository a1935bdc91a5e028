package plugin

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/r9s-ai/gofumpt-plugin/internal/engine"
)

// Configuration is a resolved, immutable engine configuration together
// with the overrides it was resolved from.
type Configuration struct {
	overrides RawOverrides
	engine    engine.Config
}

// Engine returns the engine configuration. Config is a value type, so the
// caller receives an independent copy.
func (c *Configuration) Engine() engine.Config {
	return c.engine
}

// Overrides returns a copy of the raw overrides.
func (c *Configuration) Overrides() RawOverrides {
	return c.overrides.clone()
}

// MarshalJSON emits the retained raw overrides as a flat object.
func (c *Configuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string(c.overrides))
}

var newlineStyles = map[NewLineKind]engine.NewlineStyle{
	NewLineAuto:   engine.NewlineAuto,
	NewLineLF:     engine.NewlineUnix,
	NewLineCRLF:   engine.NewlineWindows,
	NewLineSystem: engine.NewlineNative,
}

var keyAliases = map[string]string{
	"lineWidth":   "max_width",
	"useTabs":     "hard_tabs",
	"indentWidth": "tab_spaces",
}

const newLineKindKey = "newLineKind"

// Resolve merges global options and tool overrides into an engine
// configuration. Entries that cannot be applied are skipped and reported
// as diagnostics; resolution itself never fails.
func Resolve(global GlobalOptions, overrides RawOverrides) (*Configuration, []Diagnostic) {
	b := engine.NewBuilder(engine.DefaultConfig())
	b.SetEdition(engine.DefaultEdition)

	if global.LineWidth != nil {
		b.SetMaxWidth(int(*global.LineWidth))
	}
	if global.UseTabs != nil {
		b.SetHardTabs(*global.UseTabs)
	}
	if global.IndentWidth != nil {
		b.SetTabSpaces(int(*global.IndentWidth))
	}
	if global.NewLineKind != nil {
		b.SetNewlineStyle(newlineStyles[*global.NewLineKind])
	}

	diagnostics := []Diagnostic{}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := overrides[key]
		if key == newLineKindKey {
			kind, ok := ParseNewLineKind(value)
			if !ok {
				diagnostics = append(diagnostics, Diagnostic{
					PropertyName: key,
					Message:      fmt.Sprintf("Invalid newline kind: %s", value),
				})
				continue
			}
			b.SetNewlineStyle(newlineStyles[kind])
			continue
		}

		engineKey := key
		if alias, ok := keyAliases[key]; ok {
			engineKey = alias
		}
		if !engine.IsValidKeyVal(engineKey, value) {
			diagnostics = append(diagnostics, Diagnostic{
				PropertyName: key,
				Message:      fmt.Sprintf("Invalid key or value in configuration. Key: %s, Value: %s", engineKey, value),
			})
			continue
		}
		if err := b.Override(engineKey, value); err != nil {
			diagnostics = append(diagnostics, Diagnostic{PropertyName: key, Message: err.Error()})
		}
	}

	b.SetEmitMode(engine.EmitStdout)

	return &Configuration{
		overrides: overrides.clone(),
		engine:    b.Build(),
	}, diagnostics
}
