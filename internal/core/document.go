package core

import "fmt"

// Header field names accepted by Document.WithHeader.
const (
	HeaderTitle      = "title"
	HeaderPeriod     = "period"
	HeaderCategories = "categories"
	HeaderCompiled   = "compiled"
)

// Every Document method returns a new value. Rows are copied before any
// change so a snapshot held elsewhere never observes a later edit.

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := d
	out.Rows = make([]Record, len(d.Rows))
	copy(out.Rows, d.Rows)
	return out
}

// Groups returns the document rows grouped by section in first-seen order.
func (d Document) Groups() []SectionGroup {
	return GroupBySection(d.Rows)
}

// Section returns the records of one section in order.
func (d Document) Section(section string) []Record {
	key := CanonicalSection(section)
	var out []Record
	for _, rec := range d.Rows {
		if rec.Section == key {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the total number of records.
func (d Document) Len() int {
	return len(d.Rows)
}

// WithHeader sets one header scalar.
func (d Document) WithHeader(field, value string) (Document, error) {
	out := d.Clone()
	switch field {
	case HeaderTitle:
		out.Title = value
	case HeaderPeriod:
		out.Period = value
	case HeaderCategories:
		out.Categories = value
	case HeaderCompiled:
		out.Compiled = value
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return out, nil
}

// ReplaceSection swaps every record of section for records. The new block
// takes the place where the section first appeared, or goes last when the
// section was absent. An empty records slice removes the section.
func (d Document) ReplaceSection(section string, records []Record) Document {
	key := CanonicalSection(section)

	block := make([]Record, len(records))
	for i, rec := range records {
		rec.Section = key
		block[i] = rec
	}

	out := d
	out.Rows = make([]Record, 0, len(d.Rows)+len(block))
	placed := false
	for _, rec := range d.Rows {
		if rec.Section != key {
			out.Rows = append(out.Rows, rec)
			continue
		}
		if !placed {
			out.Rows = append(out.Rows, block...)
			placed = true
		}
	}
	if !placed {
		out.Rows = append(out.Rows, block...)
	}
	return out
}

// ReplaceAll swaps the whole row sequence, e.g. after a combined paste.
func (d Document) ReplaceAll(records []Record) Document {
	out := d
	out.Rows = make([]Record, len(records))
	for i, rec := range records {
		rec.Section = CanonicalSection(rec.Section)
		out.Rows[i] = rec
	}
	return out
}

// UpdateField replaces one field of the index-th record of section.
func (d Document) UpdateField(section string, index int, field Column, value string) (Document, error) {
	pos, err := d.position(section, index)
	if err != nil {
		return d, err
	}
	if field == ColSection {
		return d, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	rec, err := d.Rows[pos].With(field, value)
	if err != nil {
		return d, err
	}

	out := d.Clone()
	out.Rows[pos] = rec
	return out, nil
}

// DeleteRecord removes the index-th record of section. Later records of the
// section shift down by one.
func (d Document) DeleteRecord(section string, index int) (Document, error) {
	pos, err := d.position(section, index)
	if err != nil {
		return d, err
	}

	out := d
	out.Rows = make([]Record, 0, len(d.Rows)-1)
	out.Rows = append(out.Rows, d.Rows[:pos]...)
	out.Rows = append(out.Rows, d.Rows[pos+1:]...)
	return out, nil
}

// Record returns the index-th record of section.
func (d Document) Record(section string, index int) (Record, error) {
	pos, err := d.position(section, index)
	if err != nil {
		return Record{}, err
	}
	return d.Rows[pos], nil
}

// position maps a (section, index) pair to an index into Rows.
func (d Document) position(section string, index int) (int, error) {
	key := CanonicalSection(section)
	if index >= 0 {
		n := 0
		for pos, rec := range d.Rows {
			if rec.Section != key {
				continue
			}
			if n == index {
				return pos, nil
			}
			n++
		}
	}
	return -1, fmt.Errorf("%w: %s[%d]", ErrRecordNotFound, key, index)
}

// afterDelete adjusts an edit pointer once record index of section is gone.
// A pointer at the deleted record is cleared, a pointer past it follows its
// record down by one, and anything left out of range is cleared.
func (p *EditPointer) afterDelete(section string, index, remaining int) *EditPointer {
	if p == nil || p.Section != CanonicalSection(section) {
		return p
	}
	switch {
	case p.Index == index:
		return nil
	case p.Index > index:
		next := &EditPointer{Section: p.Section, Index: p.Index - 1}
		if next.Index >= remaining {
			return nil
		}
		return next
	case p.Index >= remaining:
		return nil
	}
	return p
}
