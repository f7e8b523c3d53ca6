package core

// scan.go implements the quote-aware scanner used for pasted CSV text.
//
// Pasted office data is rarely valid RFC 4180, so the scanner is a plain
// two-state machine instead of encoding/csv: a double quote flips between
// unquoted and quoted, and delimiters only count while unquoted. Unbalanced
// quotes never fail; the rest of the input is simply treated as quoted.

import "strings"

type scanState int

const (
	unquoted scanState = iota
	quoted
)

func (s scanState) toggle() scanState {
	if s == unquoted {
		return quoted
	}
	return unquoted
}

// SplitLogicalLines splits text into logical lines. A newline ends a line only
// outside a quoted span, so quoted fields may carry literal line breaks.
// Quote characters are kept so SplitColumns can see them.
// Surrounding whitespace of the whole text is ignored.
func SplitLogicalLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var (
		lines []string
		cur   strings.Builder
		state = unquoted
	)
	for _, r := range text {
		if r == '"' {
			state = state.toggle()
		}
		if r == '\n' && state == unquoted {
			lines = append(lines, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// SplitColumns splits one logical line on commas outside quoted spans.
// Quote characters are dropped and every column is trimmed.
// The result always has at least one element.
func SplitColumns(line string) []string {
	var (
		cols  []string
		cur   strings.Builder
		state = unquoted
	)
	for _, r := range line {
		switch {
		case r == '"':
			state = state.toggle()
		case r == ',' && state == unquoted:
			cols = append(cols, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(cols, strings.TrimSpace(cur.String()))
}
