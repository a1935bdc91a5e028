package engine

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/mattn/go-runewidth"
)

func checkLineWidth(cfg Config, name string, src []byte) error {
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), len(src)+1)
	line := 0
	for sc.Scan() {
		line++
		w := displayWidth(sc.Text(), cfg.tabSpaces)
		if w > cfg.maxWidth {
			return &Error{
				Kind:   KindLineOverflow,
				File:   name,
				Line:   line,
				Column: cfg.maxWidth + 1,
				Msg: fmt.Sprintf("line formatted, but exceeded maximum width (maximum: %d (see `max_width` option), found: %d)",
					cfg.maxWidth, w),
			}
		}
	}
	return sc.Err()
}

// displayWidth counts a tab as tabSpaces columns and every other rune by
// its terminal cell width.
func displayWidth(line string, tabSpaces int) int {
	w := 0
	for _, r := range line {
		if r == '\t' {
			w += tabSpaces
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}
