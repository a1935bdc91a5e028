package engine

import (
	"errors"
	"fmt"
	"go/scanner"
)

// Kind classifies a formatting failure.
type Kind int

const (
	KindParse Kind = iota + 1
	KindLineOverflow
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindLineOverflow:
		return "line overflow"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is returned by Session.Format. Line and Column are 1-based and
// zero when the failure has no source position.
type Error struct {
	Kind   Kind
	File   string
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func parseError(name string, err error) *Error {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		msg := first.Msg
		if n := len(list); n > 1 {
			msg = fmt.Sprintf("%s (and %d more errors)", msg, n-1)
		}
		return &Error{
			Kind:   KindParse,
			File:   name,
			Line:   first.Pos.Line,
			Column: first.Pos.Column,
			Msg:    msg,
			Err:    err,
		}
	}
	return &Error{Kind: KindParse, File: name, Msg: err.Error(), Err: err}
}
