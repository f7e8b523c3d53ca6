package core

import "fmt"

// EditableColumns are the record fields that inline editing may change.
// The section tag is fixed by where the record was pasted.
var EditableColumns = []Column{ColDate, ColTitle, ColCategory, ColSummary, ColSource}

// ParseColumn resolves a field name to an editable Column.
func ParseColumn(name string) (Column, error) {
	for _, col := range EditableColumns {
		if string(col) == name {
			return col, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Field returns the value of col.
func (r Record) Field(col Column) string {
	switch col {
	case ColSection:
		return r.Section
	case ColDate:
		return r.Date
	case ColTitle:
		return r.Title
	case ColCategory:
		return r.Category
	case ColSummary:
		return r.Summary
	case ColSource:
		return r.Source
	}
	return ""
}

// With returns a copy of r with col replaced by value.
func (r Record) With(col Column, value string) (Record, error) {
	if !r.set(col, value) {
		return r, fmt.Errorf("%w: %q", ErrUnknownField, col)
	}
	return r, nil
}

func (r *Record) set(col Column, value string) bool {
	switch col {
	case ColSection:
		r.Section = CanonicalSection(value)
	case ColDate:
		r.Date = value
	case ColTitle:
		r.Title = value
	case ColCategory:
		r.Category = value
	case ColSummary:
		r.Summary = value
	case ColSource:
		r.Source = value
	default:
		return false
	}
	return true
}
