// Package schema generates the JSON schema of the gofumpt configuration
// section.
package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ID is the $id written into the generated schema.
const ID = "https://github.com/r9s-ai/gofumpt-plugin/schema.json"

// Section mirrors the keys accepted in the tool section. Values are
// loosely typed in the configuration document, so only their shape is
// described here; the engine performs the real validation.
type Section struct {
	LineWidth   uint   `json:"lineWidth,omitempty" jsonschema:"minimum=1,maximum=1000,description=Alias of max_width."`
	UseTabs     bool   `json:"useTabs,omitempty" jsonschema:"description=Alias of hard_tabs."`
	IndentWidth uint   `json:"indentWidth,omitempty" jsonschema:"minimum=1,maximum=16,description=Alias of tab_spaces."`
	NewLineKind string `json:"newLineKind,omitempty" jsonschema:"enum=auto,enum=lf,enum=crlf,enum=system,description=Line ending of formatted output."`

	MaxWidth            uint   `json:"max_width,omitempty" jsonschema:"minimum=1,maximum=1000,default=100,description=Maximum width of each line."`
	HardTabs            bool   `json:"hard_tabs,omitempty" jsonschema:"default=true,description=Indent with tabs instead of spaces."`
	TabSpaces           uint   `json:"tab_spaces,omitempty" jsonschema:"minimum=1,maximum=16,default=8,description=Number of columns per indentation level."`
	NewlineStyle        string `json:"newline_style,omitempty" jsonschema:"enum=Auto,enum=Native,enum=Unix,enum=Windows,default=Auto"`
	Edition             string `json:"edition,omitempty" jsonschema:"pattern=^go1(\\.[0-9]+)*$,description=Go language version the source is written in."`
	ModulePath          string `json:"module_path,omitempty" jsonschema:"description=Module path of the formatted code."`
	ExtraRules          bool   `json:"extra_rules,omitempty" jsonschema:"default=false,description=Enable gofumpt's extra rules."`
	ErrorOnLineOverflow bool   `json:"error_on_line_overflow,omitempty" jsonschema:"default=false,description=Fail when a formatted line exceeds max_width."`
	EmitMode            string `json:"emit_mode,omitempty" jsonschema:"enum=Files,enum=Stdout,enum=Diff,description=Ignored by the plugin which always captures output."`
}

// Generate returns the indented JSON schema of Section.
func Generate() ([]byte, error) {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	s := r.Reflect(&Section{})
	s.ID = ID
	s.Title = "gofumpt configuration"
	return json.MarshalIndent(s, "", "  ")
}
