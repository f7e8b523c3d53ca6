package core

// sanitize.go cleans a pasted CSV blob before it is split into lines.
//
// Text copied out of spreadsheet exports often carries:
//   - a UTF-8 byte order mark (0xEF 0xBB 0xBF) from Windows programs
//   - invalid UTF-8 from legacy code pages
//   - NUL bytes from UTF-16 files opened as UTF-8
//
// None of them mean anything to the report, and invalid UTF-8 would be
// replaced later anyway by the JSON encoder.

import (
	"strings"
	"unicode/utf8"
)

const bom = "\uFEFF"

// sanitizePaste strips a leading BOM and NUL bytes and replaces invalid
// UTF-8 sequences with U+FFFD. Valid input is returned unchanged.
func sanitizePaste(text string) string {
	text = strings.TrimPrefix(text, bom)
	if strings.IndexByte(text, 0) >= 0 {
		text = strings.ReplaceAll(text, "\x00", "")
	}
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	return text
}
