// Package core provides the business logic for the fraud watch report editor.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"strings"
	"time"
)

// Column names a single field of a Record.
type Column string

const (
	ColSection  Column = "section"
	ColDate     Column = "date"
	ColTitle    Column = "title"
	ColCategory Column = "category"
	ColSummary  Column = "summary"
	ColSource   Column = "source"
)

// Schema is the ordered list of columns a pasted CSV blob is expected to carry.
// Columns before ColSummary are read positionally from the front of a line,
// columns after it positionally from the back; everything in between is the
// summary.
type Schema []Column

var (
	// SectionSchema is the per-section paste: Date,Title,Category,Summary,Source.
	SectionSchema = Schema{ColDate, ColTitle, ColCategory, ColSummary, ColSource}

	// CombinedSchema is the single paste with an explicit section column.
	CombinedSchema = Schema{ColSection, ColDate, ColTitle, ColCategory, ColSummary, ColSource}
)

// Header returns the CSV header line for the schema, e.g. "Date,Title,...".
func (s Schema) Header() string {
	names := make([]string, len(s))
	for i, col := range s {
		name := string(col)
		if name != "" {
			name = strings.ToUpper(name[:1]) + name[1:]
		}
		names[i] = name
	}
	return strings.Join(names, ",")
}

// Record is one item of watch-list content.
// Every field is a plain string; a missing column is always "" and never absent.
type Record struct {
	Section  string `json:"section" yaml:"section"`
	Date     string `json:"date" yaml:"date"`
	Title    string `json:"title" yaml:"title"`
	Category string `json:"category" yaml:"category"`
	Summary  string `json:"summary" yaml:"summary"`
	Source   string `json:"source" yaml:"source"`
}

// Document is the report aggregate: header scalars plus one flat, ordered
// sequence of section-tagged records. Grouping is derived, never stored.
type Document struct {
	Title      string   `json:"title"`
	Period     string   `json:"period"`
	Categories string   `json:"categories"`
	Compiled   string   `json:"compiled"`
	Rows       []Record `json:"rows"`
}

// SectionGroup is the records of one section in insertion order.
type SectionGroup struct {
	Section string
	Records []Record
}

// EditPointer identifies the record currently open for inline editing.
type EditPointer struct {
	Section string `json:"section"`
	Index   int    `json:"index"`
}

// Session is one editor's state: the document plus the inline edit pointer.
type Session struct {
	ID        string       `json:"id"`
	Document  Document     `json:"document"`
	Editing   *EditPointer `json:"editing,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Mailer delivers a report to one or more recipients.
// sendTo is a comma-separated list of addresses.
type Mailer interface {
	SendReport(ctx context.Context, doc Document, sendTo string) error
}

// PDFRenderer turns a report into PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, doc Document) ([]byte, error)
}

// DeliveryKind names the outbound action for logging and limiter status.
type DeliveryKind string

const (
	DeliveryEmail DeliveryKind = "email"
	DeliveryPDF   DeliveryKind = "pdf"
)
