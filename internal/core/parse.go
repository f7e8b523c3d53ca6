package core

import "strings"

// ParseRows converts a pasted CSV blob into records shaped by schema.
//
// The first logical line is always a header and is discarded unchecked.
// Blank data lines are skipped. Parsing never fails: missing columns become
// "", surplus columns are folded back into the summary (see Schema), and
// unbalanced quotes degrade to best-effort extraction.
//
// The result is never nil.
func ParseRows(text string, schema Schema) []Record {
	lines := SplitLogicalLines(sanitizePaste(text))
	records := make([]Record, 0, len(lines))
	if len(lines) < 2 {
		return records
	}

	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, schema.build(SplitColumns(line)))
	}
	return records
}

// ParseSection parses a per-section paste and tags every record with section.
func ParseSection(text, section string) []Record {
	key := CanonicalSection(section)
	records := ParseRows(text, SectionSchema)
	for i := range records {
		records[i].Section = key
	}
	return records
}

// CanonicalSection normalizes a section name to its key ("India " -> "india").
func CanonicalSection(section string) string {
	return strings.ToLower(strings.TrimSpace(section))
}

// build maps split columns onto a record.
func (s Schema) build(cols []string) Record {
	var rec Record

	split := s.summaryIndex()
	if split < 0 {
		for i, col := range s {
			rec.set(col, at(cols, i))
		}
		return rec
	}

	leading, trailing := s[:split], s[split+1:]
	for i, col := range leading {
		rec.set(col, at(cols, i))
	}

	// Trailing columns are anchored to the end of the line but never reach
	// back into the leading ones.
	end := len(cols) - len(trailing)
	for j, col := range trailing {
		pos := end + j
		if pos < len(leading) {
			rec.set(col, "")
			continue
		}
		rec.set(col, stripQuotePair(at(cols, pos)))
	}

	if end > len(leading) {
		rec.set(ColSummary, stripQuotePair(strings.Join(cols[len(leading):end], ",")))
	}
	return rec
}

func (s Schema) summaryIndex() int {
	for i, col := range s {
		if col == ColSummary {
			return i
		}
	}
	return -1
}

// at returns cols[i] or "" when i is out of range.
func at(cols []string, i int) string {
	if i < 0 || i >= len(cols) {
		return ""
	}
	return cols[i]
}

// stripQuotePair removes one leading and one trailing double quote, then trims.
func stripQuotePair(s string) string {
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return strings.TrimSpace(s)
}
