// Package templates renders the report editor and the report itself as
// templ components.
package templates

import (
	"net/url"
	"strconv"

	"github.com/JonMunkholm/fraudwatch/internal/core"
)

// PreviewData is everything the report preview needs.
type PreviewData struct {
	Document core.Document
	Sections []SectionView
	Editable bool   // show edit/delete controls
	Contact  string // footer contact address
}

// SectionView is one rendered section of the report.
type SectionView struct {
	Info    core.SectionInfo
	Records []RecordView
}

// RecordView is one record plus what the template needs to draw it.
type RecordView struct {
	Section string
	Index   int
	Record  core.Record
	Points  []string // set for numbered sections
	Editing bool
}

// NewPreview builds the preview model. Sections appear in first-seen order;
// a section with no records is not shown.
func NewPreview(doc core.Document, editing *core.EditPointer, editable bool, contact string) PreviewData {
	groups := doc.Groups()
	sections := make([]SectionView, 0, len(groups))

	for _, g := range groups {
		info := core.DescribeSection(g.Section)
		view := SectionView{Info: info, Records: make([]RecordView, len(g.Records))}
		for i, rec := range g.Records {
			rv := RecordView{
				Section: g.Section,
				Index:   i,
				Record:  rec,
				Editing: editable && editing != nil && editing.Section == g.Section && editing.Index == i,
			}
			if info.Numbered {
				rv.Points = core.NumberedPoints(rec.Summary)
			}
			view.Records[i] = rv
		}
		sections = append(sections, view)
	}

	return PreviewData{
		Document: doc,
		Sections: sections,
		Editable: editable,
		Contact:  contact,
	}
}

// HasRecords reports whether the preview has anything to show.
func (p PreviewData) HasRecords() bool {
	return len(p.Sections) > 0
}

// readOnly returns p without edit controls.
func (p PreviewData) readOnly() PreviewData {
	p.Editable = false
	return p
}

func (rv RecordView) domID() string {
	return "record-" + rv.Section + "-" + strconv.Itoa(rv.Index)
}

func (rv RecordView) path() string {
	return recordPath(rv.Section, rv.Index)
}

// recordPath is the URL of one record, e.g. /sections/india/records/2.
func recordPath(section string, index int) string {
	return "/sections/" + url.PathEscape(section) + "/records/" + strconv.Itoa(index)
}

// sectionCSVPath is the paste endpoint of one section.
func sectionCSVPath(section string) string {
	return "/sections/" + url.PathEscape(section) + "/csv"
}

// PageData is the full editor page.
type PageData struct {
	Preview PreviewData

	// Paste boxes, one per registered section plus any extra section
	// present in the document.
	PasteSections []core.SectionInfo

	SectionHeader  string // CSV header hint for per-section pastes
	CombinedHeader string // CSV header hint for the combined paste
	PDFFileName    string
}

// NewPage builds the editor page model.
func NewPage(sess core.Session, contact, pdfFileName string) PageData {
	paste := core.Sections()
	known := make(map[string]bool, len(paste))
	for _, info := range paste {
		known[info.Key] = true
	}
	for _, g := range sess.Document.Groups() {
		if !known[g.Section] {
			known[g.Section] = true
			paste = append(paste, core.DescribeSection(g.Section))
		}
	}

	return PageData{
		Preview:        NewPreview(sess.Document, sess.Editing, true, contact),
		PasteSections:  paste,
		SectionHeader:  core.SectionSchema.Header(),
		CombinedHeader: core.CombinedSchema.Header(),
		PDFFileName:    pdfFileName,
	}
}
