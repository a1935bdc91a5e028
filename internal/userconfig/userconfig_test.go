package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/gofumpt-plugin/internal/plugin"
)

func assertSampleDocument(t *testing.T, doc *Document) {
	t.Helper()
	require.NotNil(t, doc.Global.LineWidth)
	assert.Equal(t, uint32(120), *doc.Global.LineWidth)
	require.NotNil(t, doc.Global.UseTabs)
	assert.False(t, *doc.Global.UseTabs)
	require.NotNil(t, doc.Global.NewLineKind)
	assert.Equal(t, plugin.NewLineLF, *doc.Global.NewLineKind)
	assert.Equal(t, plugin.RawOverrides{
		"extra_rules": "true",
		"indentWidth": "4",
		"module_path": "example.com/m",
	}, doc.Section("gofumpt"))
	assert.Empty(t, doc.Diagnostics)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatJSON, `{
  "$schema": "https://example.com/schema.json",
  "lineWidth": 120,
  "useTabs": false,
  "newLineKind": "lf",
  "gofumpt": {"extra_rules": true, "indentWidth": 4, "module_path": "example.com/m"}
}`},
		{FormatJSONC, `{
  // global options
  "lineWidth": 120,
  "useTabs": false,
  "newLineKind": "lf",
  "gofumpt": {"extra_rules": true, "indentWidth": 4, "module_path": "example.com/m",},
}`},
		{FormatTOML, `lineWidth = 120
useTabs = false
newLineKind = "lf"

[gofumpt]
extra_rules = true
indentWidth = 4
module_path = "example.com/m"
`},
		{FormatYAML, `lineWidth: 120
useTabs: false
newLineKind: lf
gofumpt:
  extra_rules: true
  indentWidth: 4
  module_path: example.com/m
`},
		{FormatHCL, `lineWidth = 120
useTabs = false
newLineKind = "lf"

gofumpt {
  extra_rules = true
  indentWidth = 4
  module_path = "example.com/m"
}
`},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			doc, err := Parse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assertSampleDocument(t, doc)
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatTOML, FormatYAML, FormatHCL} {
		t.Run(string(format), func(t *testing.T) {
			_, err := Parse([]byte("{{{ = ["), format)
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsNonObject(t *testing.T) {
	_, err := Parse([]byte(`[1, 2]`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an object")
}

func TestFromMapDiagnostics(t *testing.T) {
	doc := FromMap(map[string]any{
		"lineWidth":   "wide",
		"indentWidth": int64(300),
		"newLineKind": "bogus",
		"mystery":     true,
		"gofumpt": map[string]any{
			"ok":     "1",
			"nested": map[string]any{"a": 1},
			"list":   []any{1, 2},
		},
	})
	names := make([]string, 0, len(doc.Diagnostics))
	for _, d := range doc.Diagnostics {
		names = append(names, d.PropertyName)
	}
	assert.Equal(t, []string{"gofumpt.list", "gofumpt.nested", "indentWidth", "lineWidth", "mystery", "newLineKind"}, names)
	assert.Equal(t, plugin.RawOverrides{"ok": "1"}, doc.Section("gofumpt"))
	assert.Nil(t, doc.Global.LineWidth)
	assert.Nil(t, doc.Global.IndentWidth)
	assert.Nil(t, doc.Global.NewLineKind)
}

func TestSectionMissing(t *testing.T) {
	doc := FromMap(map[string]any{})
	assert.Empty(t, doc.Section("gofumpt"))

	var nilDoc *Document
	assert.Empty(t, nilDoc.Section("gofumpt"))
}

func TestFindWalksParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	cfgPath := filepath.Join(root, ".gofumpt-plugin.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("lineWidth = 90\n"), 0o600))

	got, ok, err := Find(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, cfgPath, got)

	doc, err := Load(got)
	require.NoError(t, err)
	assert.Equal(t, cfgPath, doc.Path)
	require.NotNil(t, doc.Global.LineWidth)
	assert.Equal(t, uint32(90), *doc.Global.LineWidth)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.ini"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}
