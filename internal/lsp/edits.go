package lsp

import "unicode/utf16"

// endPosition returns the position just past the last character of text,
// with characters counted in UTF-16 code units as LSP requires.
func endPosition(text string) Position {
	line := 0
	col := 0
	for _, r := range text {
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col += utf16.RuneLen(r)
	}
	return Position{Line: line, Character: col}
}
