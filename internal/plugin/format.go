package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/r9s-ai/gofumpt-plugin/internal/engine"
)

// ErrEngineContract marks output from the engine that breaks its
// documented contract. It is never returned as a *FormatError.
var ErrEngineContract = errors.New("formatting engine broke its output contract")

// FormatError is an ordinary formatting failure, such as a syntax error in
// the input. Line and Column are 1-based, or zero when unknown.
type FormatError struct {
	Path    string
	Message string
	Line    int
	Column  int
	Err     error
}

func (e *FormatError) Error() string {
	return e.Message
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func newFormatError(path string, err error) *FormatError {
	fe := &FormatError{Path: path, Message: err.Error(), Err: err}
	var ee *engine.Error
	if errors.As(err, &ee) {
		fe.Line = ee.Line
		fe.Column = ee.Column
	}
	return fe
}

// The engine prefixes Stdout output for text inputs with this header.
const enginePreamble = engine.StdinName + ":\n\n"

// FormatText formats text with cfg. path is only used to label errors. A
// nil cfg formats with the defaults Resolve produces for empty input.
func FormatText(path string, text string, cfg *Configuration) (string, error) {
	if cfg == nil {
		cfg, _ = Resolve(GlobalOptions{}, nil)
	}
	var out bytes.Buffer
	if _, err := engine.NewSession(cfg.engine, &out).Format(engine.TextInput(text)); err != nil {
		return "", newFormatError(path, err)
	}

	return stripPreamble(out.Bytes())
}

// stripPreamble removes the fixed engine header by length and checks that
// the remainder is text.
func stripPreamble(raw []byte) (string, error) {
	if !bytes.HasPrefix(raw, []byte(enginePreamble)) {
		return "", fmt.Errorf("%w: output does not start with %q", ErrEngineContract, enginePreamble)
	}
	body := raw[len(enginePreamble):]
	if !utf8.Valid(body) {
		return "", fmt.Errorf("%w: output is not valid UTF-8", ErrEngineContract)
	}
	return string(body), nil
}
