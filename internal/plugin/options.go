package plugin

import (
	"encoding/json"
	"fmt"
)

// NewLineKind is the host's cross-tool line ending preference.
type NewLineKind int

const (
	NewLineAuto NewLineKind = iota
	NewLineLF
	NewLineCRLF
	NewLineSystem
)

var newLineKindNames = map[NewLineKind]string{
	NewLineAuto:   "auto",
	NewLineLF:     "lf",
	NewLineCRLF:   "crlf",
	NewLineSystem: "system",
}

func (k NewLineKind) String() string {
	if name, ok := newLineKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("NewLineKind(%d)", int(k))
}

// ParseNewLineKind accepts exactly "auto", "lf", "crlf" and "system".
func ParseNewLineKind(s string) (NewLineKind, bool) {
	for k, name := range newLineKindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

func (k NewLineKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *NewLineKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, ok := ParseNewLineKind(s)
	if !ok {
		return fmt.Errorf("invalid newline kind %q", s)
	}
	*k = v
	return nil
}

// GlobalOptions are the host's cross-tool preferences. A nil field means
// the host has no preference and the engine default applies.
type GlobalOptions struct {
	LineWidth   *uint32      `json:"lineWidth,omitempty"`
	UseTabs     *bool        `json:"useTabs,omitempty"`
	IndentWidth *uint8       `json:"indentWidth,omitempty"`
	NewLineKind *NewLineKind `json:"newLineKind,omitempty"`
}

// Merge returns g with every non-nil field of over applied on top.
func (g GlobalOptions) Merge(over GlobalOptions) GlobalOptions {
	if over.LineWidth != nil {
		g.LineWidth = over.LineWidth
	}
	if over.UseTabs != nil {
		g.UseTabs = over.UseTabs
	}
	if over.IndentWidth != nil {
		g.IndentWidth = over.IndentWidth
	}
	if over.NewLineKind != nil {
		g.NewLineKind = over.NewLineKind
	}
	return g
}

// RawOverrides are the tool-specific key/value entries from the user's
// configuration section.
type RawOverrides map[string]string

func (o RawOverrides) clone() RawOverrides {
	out := make(RawOverrides, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Diagnostic reports one configuration entry that was not applied.
type Diagnostic struct {
	PropertyName string `json:"propertyName"`
	Message      string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.PropertyName, d.Message)
}
