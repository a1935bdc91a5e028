package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	unformattedSrc = "package main\nfunc main(){\nprintln( 1 )\n}\n"
	formattedSrc   = "package main\n\nfunc main() {\n\tprintln(1)\n}\n"
)

func testOptions(t *testing.T, stdin string, stdout, stderr *bytes.Buffer) Options {
	t.Helper()
	return Options{
		Stdin:       strings.NewReader(stdin),
		Stdout:      stdout,
		Stderr:      stderr,
		WorkDir:     t.TempDir(),
		ServeRunner: func(opts ServeRuntimeOptions) error { return nil },
	}
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFormatStdinToStdout(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := Run([]string{"format"}, testOptions(t, unformattedSrc, &out, &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, formattedSrc, out.String())
}

func TestFormatWriteFile(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "main.go", unformattedSrc)
	var out bytes.Buffer
	err := Run([]string{"format", "--write", path}, testOptions(t, "", &out, &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Empty(t, out.String())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, formattedSrc, string(got))
}

func TestFormatWriteRequiresFilePath(t *testing.T) {
	t.Parallel()

	err := Run([]string{"format", "--write"}, testOptions(t, unformattedSrc, &bytes.Buffer{}, &bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--write requires a file path")
}

func TestFormatModesAreExclusive(t *testing.T) {
	t.Parallel()

	err := Run([]string{"format", "--check", "--diff", "a.go"}, testOptions(t, "", &bytes.Buffer{}, &bytes.Buffer{}))
	require.Error(t, err)
}

func TestFormatMultipleFilesKeepOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeTemp(t, dir, "a.go", "package a\nvar  A = 1\n")
	b := writeTemp(t, dir, "b.go", "package b\nvar  B = 2\n")
	c := writeTemp(t, dir, "c.go", "package c\nvar  C = 3\n")

	var out bytes.Buffer
	err := Run([]string{"format", "--jobs", "3", a, b, c}, testOptions(t, "", &out, &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, "package a\n\nvar A = 1\npackage b\n\nvar B = 2\npackage c\n\nvar C = 3\n", out.String())
}

func TestFormatCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bad := writeTemp(t, dir, "bad.go", unformattedSrc)
	good := writeTemp(t, dir, "good.go", formattedSrc)

	var out bytes.Buffer
	err := Run([]string{"format", "--check", good, bad}, testOptions(t, "", &out, &bytes.Buffer{}))
	require.ErrorIs(t, err, ErrNotFormatted)
	assert.Equal(t, bad+"\n", out.String())

	out.Reset()
	err = Run([]string{"format", "--check", good}, testOptions(t, "", &out, &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Empty(t, out.String())

	got, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, unformattedSrc, string(got))
}

func TestFormatDiff(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "main.go", unformattedSrc)
	var out bytes.Buffer
	err := Run([]string{"format", "--diff", path}, testOptions(t, "", &out, &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Diff in "+path+":")
	assert.Contains(t, out.String(), "-println( 1 )\n")
	assert.Contains(t, out.String(), "+\tprintln(1)\n")
}

func TestFormatGlobalFlagsAndSet(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := Run([]string{
		"format", "--use-tabs=false", "--indent-width", "4", "--set", "max_width=120",
	}, testOptions(t, unformattedSrc, &out, &bytes.Buffer{}))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "\n    println(1)\n")
}

func TestFormatInvalidFlags(t *testing.T) {
	t.Parallel()

	err := Run([]string{"format", "--set", "novalue"}, testOptions(t, unformattedSrc, &bytes.Buffer{}, &bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")

	err = Run([]string{"format", "--new-line-kind", "mac"}, testOptions(t, unformattedSrc, &bytes.Buffer{}, &bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--new-line-kind")
}

func TestFormatWarnsAboutConfigDiagnostics(t *testing.T) {
	t.Parallel()

	var out, errOut bytes.Buffer
	opts := testOptions(t, unformattedSrc, &out, &errOut)
	writeTemp(t, opts.WorkDir, "gofumpt-plugin.toml", "[gofumpt]\ntab_spaces = 99\nextra_rules = true\n")

	require.NoError(t, Run([]string{"format"}, opts))
	assert.Equal(t, formattedSrc, out.String())
	assert.Contains(t, errOut.String(), "warning:")
	assert.Contains(t, errOut.String(), "tab_spaces")
}

func TestFormatReportsSyntaxErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := writeTemp(t, dir, "broken.go", "package main\n\nfunc {\n")
	ok := writeTemp(t, dir, "ok.go", formattedSrc)

	var out, errOut bytes.Buffer
	err := Run([]string{"format", broken, ok}, testOptions(t, "", &out, &errOut))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, errOut.String(), broken+":")
	assert.Equal(t, formattedSrc, out.String())
}

func TestConfigCommand(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := Run([]string{"config", "--line-width", "90", "--set", "indentWidth=4", "--set", "bogus=1"},
		testOptions(t, "", &out, &bytes.Buffer{}))
	require.NoError(t, err)

	var got struct {
		Overrides   map[string]string `json:"overrides"`
		Engine      map[string]any    `json:"engine"`
		Diagnostics []struct {
			PropertyName string `json:"propertyName"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]string{"indentWidth": "4", "bogus": "1"}, got.Overrides)
	assert.Equal(t, float64(90), got.Engine["max_width"])
	assert.Equal(t, float64(4), got.Engine["tab_spaces"])
	assert.Equal(t, "Stdout", got.Engine["emit_mode"])
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, "bogus", got.Diagnostics[0].PropertyName)
}

func TestConfigCommandExplicitFile(t *testing.T) {
	t.Parallel()

	path := writeTemp(t, t.TempDir(), "custom.yaml", "useTabs: false\ngofumpt:\n  tab_spaces: 2\n")
	var out bytes.Buffer
	require.NoError(t, Run([]string{"config", "--config", path}, testOptions(t, "", &out, &bytes.Buffer{})))
	assert.Contains(t, out.String(), `"hard_tabs": false`)
	assert.Contains(t, out.String(), `"tab_spaces": 2`)

	err := Run([]string{"config", "--config", filepath.Join(t.TempDir(), "missing.toml")},
		testOptions(t, "", &bytes.Buffer{}, &bytes.Buffer{}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFormatted))
}
