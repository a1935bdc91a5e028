package engine

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// writeDiff writes a line diff of src against formatted. Each hunk starts
// with the 1-based line number in src. Nothing is written when the inputs
// are equal.
func writeDiff(w io.Writer, name string, src, formatted []byte) error {
	if bytes.Equal(src, formatted) {
		return nil
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(src), string(formatted))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Diff in %s:\n", name)
	oldLine := 1
	inHunk := false
	for _, d := range diffs {
		chunk := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldLine += len(chunk)
			inHunk = false
		case diffmatchpatch.DiffDelete:
			if !inHunk {
				fmt.Fprintf(bw, "Line %d:\n", oldLine)
				inHunk = true
			}
			for _, l := range chunk {
				fmt.Fprintf(bw, "-%s\n", l)
			}
			oldLine += len(chunk)
		case diffmatchpatch.DiffInsert:
			if !inHunk {
				fmt.Fprintf(bw, "Line %d:\n", oldLine)
				inHunk = true
			}
			for _, l := range chunk {
				fmt.Fprintf(bw, "+%s\n", l)
			}
		}
	}
	return bw.Flush()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
