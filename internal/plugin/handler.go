package plugin

import (
	gofumptplugin "github.com/r9s-ai/gofumpt-plugin"
)

// Handler is the contract a formatting host drives: a static descriptor
// plus configuration resolution and formatting.
type Handler interface {
	// ConfigKey is the key of the tool section in the user's configuration.
	ConfigKey() string
	FileExtensions() []string
	HelpURL() string
	// ConfigSchemaURL may be empty when no published schema exists.
	ConfigSchemaURL() string
	LicenseText() string
	ResolveConfig(overrides RawOverrides, global GlobalOptions) (*Configuration, []Diagnostic)
	FormatText(path string, text string, cfg *Configuration) (string, error)
}

// Gofumpt is the Handler for Go source files.
type Gofumpt struct{}

var _ Handler = Gofumpt{}

func (Gofumpt) ConfigKey() string { return "gofumpt" }

func (Gofumpt) FileExtensions() []string { return []string{"go"} }

func (Gofumpt) HelpURL() string { return "https://github.com/r9s-ai/gofumpt-plugin#configuration" }

func (Gofumpt) ConfigSchemaURL() string { return "" }

func (Gofumpt) LicenseText() string { return gofumptplugin.License }

func (Gofumpt) ResolveConfig(overrides RawOverrides, global GlobalOptions) (*Configuration, []Diagnostic) {
	return Resolve(global, overrides)
}

func (Gofumpt) FormatText(path string, text string, cfg *Configuration) (string, error) {
	return FormatText(path, text, cfg)
}

// Info is the serialisable form of a Handler's descriptor.
type Info struct {
	ConfigKey       string   `json:"configKey"`
	FileExtensions  []string `json:"fileExtensions"`
	HelpURL         string   `json:"helpUrl"`
	ConfigSchemaURL string   `json:"configSchemaUrl"`
}

func Describe(h Handler) Info {
	return Info{
		ConfigKey:       h.ConfigKey(),
		FileExtensions:  h.FileExtensions(),
		HelpURL:         h.HelpURL(),
		ConfigSchemaURL: h.ConfigSchemaURL(),
	}
}
