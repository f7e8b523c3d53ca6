package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fraudwatch/internal/core"
	"github.com/JonMunkholm/fraudwatch/internal/logging"
	"github.com/JonMunkholm/fraudwatch/internal/web/templates"
)

// sessionID returns the session attached by withSession.
func sessionID(r *http.Request) string {
	return core.SessionIDFromContext(r.Context())
}

// handleIndex renders the editor page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Page(templates.NewPage(sess, s.cfg.Report.Contact, s.cfg.PDF.FileName)).Render(r.Context(), w)
}

// handlePreview renders the report preview fragment.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.renderPreview(w, r, sess)
}

// handlePrint renders the report alone for the browser's print dialog.
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	preview := templates.NewPreview(sess.Document, nil, false, s.cfg.Report.Contact)
	templates.PrintPage(preview, true).Render(r.Context(), w)
}

// handleSetHeader sets one header field from the form's field and value.
func (s *Server) handleSetHeader(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	sess, err := s.service.SetHeader(r.Context(), sessionID(r), r.PostForm.Get("field"), r.PostForm.Get("value"))
	s.respondDocument(w, r, sess, err)
}

// handleSectionCSV replaces one section with a pasted CSV blob.
func (s *Server) handleSectionCSV(w http.ResponseWriter, r *http.Request) {
	section, err := sectionParam(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	sess, err := s.service.IngestSection(r.Context(), sessionID(r), section, r.PostForm.Get("csv"))
	s.respondDocument(w, r, sess, err)
}

// handleImport replaces the whole record list with a combined CSV paste.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	sess, err := s.service.IngestCombined(r.Context(), sessionID(r), r.PostForm.Get("csv"))
	s.respondDocument(w, r, sess, err)
}

// handleUpdateRecord edits a record, either one field (field, value) or the
// editor form's columns at once. Either way an open editor on that record
// closes.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	section, index, err := recordParams(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := r.Context()
	var sess core.Session

	if r.PostForm.Has("field") {
		var col core.Column
		col, err = core.ParseColumn(r.PostForm.Get("field"))
		if err == nil {
			sess, err = s.service.UpdateField(ctx, sessionID(r), section, index, col, r.PostForm.Get("value"))
		}
	} else {
		fields := make(map[core.Column]string, len(core.EditableColumns))
		for _, col := range core.EditableColumns {
			if r.PostForm.Has(string(col)) {
				fields[col] = r.PostForm.Get(string(col))
			}
		}
		sess, err = s.service.UpdateRecord(ctx, sessionID(r), section, index, fields)
	}

	s.respondDocument(w, r, sess, err)
}

// handleStartEdit opens a record for inline editing.
func (s *Server) handleStartEdit(w http.ResponseWriter, r *http.Request) {
	section, index, err := recordParams(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	sess, err := s.service.StartEdit(r.Context(), sessionID(r), section, index)
	s.respondDocument(w, r, sess, err)
}

// handleCancelEdit closes the inline editor without saving.
func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.CancelEdit(r.Context(), sessionID(r))
	s.respondDocument(w, r, sess, err)
}

// handleDeleteRecord removes one record.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	section, index, err := recordParams(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	sess, err := s.service.DeleteRecord(r.Context(), sessionID(r), section, index)
	s.respondDocument(w, r, sess, err)
}

// handleSend emails the current report to the comma-separated sendTo list.
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if err := s.service.SendEmail(r.Context(), sessionID(r), r.PostForm.Get("sendTo")); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	const sent = "Email sent successfully!"
	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		templates.Notice(sent).Render(r.Context(), w)
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent", "message": sent})
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// handlePDF returns the current report as a PDF download.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.GeneratePDF(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", contentDisposition(s.cfg.PDF.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("pdf write failed", "error", err)
	}
}

// handleAPIDocument returns the session as JSON.
func (s *Server) handleAPIDocument(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Snapshot(r.Context(), sessionID(r))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// handleHealth reports liveness plus a few gauges.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"sessions":   s.service.SessionCount(),
		"deliveries": s.service.DeliveryStatus(),
	})
}

// respondDocument answers a mutation. HTMX gets the fresh preview fragment,
// JSON clients the session, and plain form posts a redirect back to the
// editor.
func (s *Server) respondDocument(w http.ResponseWriter, r *http.Request, sess core.Session, err error) {
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	switch {
	case isHTMX(r):
		s.renderPreview(w, r, sess)
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, sess)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) renderPreview(w http.ResponseWriter, r *http.Request, sess core.Session) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	preview := templates.NewPreview(sess.Document, sess.Editing, true, s.cfg.Report.Contact)
	templates.Preview(preview).Render(r.Context(), w)
}

// sectionParam returns the {section} URL parameter. chi matches on the raw
// path only when the request carried escapes the decoded path cannot
// reproduce (such as %2F); only then is the value still escaped.
func sectionParam(r *http.Request) (string, error) {
	section := chi.URLParam(r, "section")
	if r.URL.RawPath == "" {
		return section, nil
	}
	decoded, err := url.PathUnescape(section)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", errBadSection, section, err)
	}
	return decoded, nil
}

// recordParams returns the {section} and {index} URL parameters. A malformed
// index names no record.
func recordParams(r *http.Request) (string, int, error) {
	section, err := sectionParam(r)
	if err != nil {
		return "", 0, err
	}

	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: index %q", core.ErrRecordNotFound, raw)
	}
	return section, index, nil
}
