// Package core provides the business logic for the fraud watch report editor.
//
// The package holds every domain rule of the editor, independent of any UI or
// transport layer. It is used by the web handlers, the CLI and tests without
// modification.
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Document: the report being composed. Header fields plus a flat list of
//     [Record] values, each tagged with its section. Sections are derived by
//     [GroupBySection] in first-seen order.
//   - Ingestion: [ParseRows] turns a pasted CSV block into records using a
//     lenient quote-aware scanner that tolerates unescaped commas in summaries.
//   - Store: in-memory editing sessions, each owning one Document.
//   - Service: the entry point for every mutation and delivery action.
//
// # Section Registry
//
// Known sections are registered at init time using [RegisterSection]. Each
// [SectionInfo] carries a display label, a sort order and whether summaries are
// shown as numbered points:
//
//	core.RegisterSection(SectionInfo{
//	    Key:      "analysis",
//	    Label:    "Analysis",
//	    Order:    30,
//	    Numbered: true,
//	})
//
// Unregistered sections still render; their label is the upper-cased key.
//
// # Ingestion
//
// Per-section pastes use [SectionSchema] (Date,Title,Category,Summary,Source);
// combined pastes use [CombinedSchema] with a leading Section column. The first
// line of every paste is a header and is discarded. Columns before Summary are
// read left to right, columns after it are read from the end, and everything in
// between is rejoined with commas into the summary. A leading byte order mark,
// NUL bytes and invalid UTF-8 are cleaned out before the text is split.
//
// # Delivery
//
// Reports leave the process through a [Mailer] (email) or a [PDFRenderer].
// Both run under a [DeliveryLimiter] and a per-call timeout; a failure is
// returned once and never retried.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - SES001: Session errors
//   - REC001-REC002: Record errors (not found, unknown field)
//   - DLV001-DLV003: Delivery errors (recipient, send failure, busy)
//   - PDF001-PDF002: PDF errors (generation failure, no engine)
//   - REQ001-REQ003, RATE001: Request errors
package core
