package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/fraudwatch/internal/config"
)

// Service provides the core business logic of the report editor. Every
// mutation of a session's Document goes through it.
type Service struct {
	store    *Store
	mailer   Mailer
	pdf      PDFRenderer
	limiter  *DeliveryLimiter
	defaults Document
	timeout  time.Duration
}

// NewService creates a Service. mailer and pdf may be nil, in which case the
// corresponding action fails with ErrDeliveryFailed / ErrPDFUnavailable.
func NewService(mailer Mailer, pdf PDFRenderer, cfg *config.Config) *Service {
	return &Service{
		store:   NewStore(),
		mailer:  mailer,
		pdf:     pdf,
		limiter: NewDeliveryLimiter(cfg.Delivery.MaxConcurrent, cfg.Delivery.MaxWaitTime),
		defaults: Document{
			Title:      cfg.Report.Title,
			Period:     cfg.Report.Period,
			Categories: cfg.Report.Categories,
			Compiled:   cfg.Report.Compiled,
		},
		timeout: cfg.Delivery.Timeout,
	}
}

// NewSession starts an editor session with the configured header defaults.
func (s *Service) NewSession(ctx context.Context) Session {
	sess := s.store.Create(s.defaults)
	slog.Debug("session created", "session_id", sess.ID)
	return sess
}

// Snapshot returns the current state of a session.
func (s *Service) Snapshot(ctx context.Context, sessionID string) (Session, error) {
	return s.store.Get(sessionID)
}

// Defaults returns the empty report a new session starts from.
func (s *Service) Defaults() Document {
	return s.defaults.Clone()
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	return s.store.Len()
}

// IngestSection parses a per-section CSV paste and replaces that section
// wholesale. An empty paste clears the section.
func (s *Service) IngestSection(ctx context.Context, sessionID, section, text string) (Session, error) {
	key := CanonicalSection(section)
	if key == "" {
		return Session{}, fmt.Errorf("%w: empty section", ErrUnknownField)
	}

	records := ParseSection(text, key)
	sess, err := s.store.Update(sessionID, func(sess Session) (Session, error) {
		sess.Document = sess.Document.ReplaceSection(key, records)
		if sess.Editing != nil && sess.Editing.Section == key {
			sess.Editing = nil
		}
		return sess, nil
	})
	if err != nil {
		return Session{}, err
	}

	slog.Info("section ingested",
		"session_id", sessionID,
		"section", key,
		"records", len(records),
	)
	return sess, nil
}

// IngestCombined parses a combined paste (Section,Date,Title,...) and
// replaces every row of the document.
func (s *Service) IngestCombined(ctx context.Context, sessionID, text string) (Session, error) {
	records := ParseRows(text, CombinedSchema)
	sess, err := s.store.Update(sessionID, func(sess Session) (Session, error) {
		sess.Document = sess.Document.ReplaceAll(records)
		sess.Editing = nil
		return sess, nil
	})
	if err != nil {
		return Session{}, err
	}

	slog.Info("combined csv ingested",
		"session_id", sessionID,
		"records", len(records),
		"sections", len(sess.Document.Groups()),
	)
	return sess, nil
}

// SetHeader sets title, period, categories or compiled.
func (s *Service) SetHeader(ctx context.Context, sessionID, field, value string) (Session, error) {
	return s.store.Update(sessionID, func(sess Session) (Session, error) {
		doc, err := sess.Document.WithHeader(field, value)
		if err != nil {
			return sess, err
		}
		sess.Document = doc
		return sess, nil
	})
}

// StartEdit points the inline editor at one record.
func (s *Service) StartEdit(ctx context.Context, sessionID, section string, index int) (Session, error) {
	return s.store.Update(sessionID, func(sess Session) (Session, error) {
		if _, err := sess.Document.Record(section, index); err != nil {
			return sess, err
		}
		sess.Editing = &EditPointer{Section: CanonicalSection(section), Index: index}
		return sess, nil
	})
}

// CancelEdit clears the inline edit pointer.
func (s *Service) CancelEdit(ctx context.Context, sessionID string) (Session, error) {
	return s.store.Update(sessionID, func(sess Session) (Session, error) {
		sess.Editing = nil
		return sess, nil
	})
}

// UpdateField replaces one field of one record. Saving the record that is
// open in the inline editor closes the editor.
func (s *Service) UpdateField(ctx context.Context, sessionID, section string, index int, field Column, value string) (Session, error) {
	return s.store.Update(sessionID, func(sess Session) (Session, error) {
		doc, err := sess.Document.UpdateField(section, index, field, value)
		if err != nil {
			return sess, err
		}
		sess.Document = doc
		if p := sess.Editing; p != nil && p.Section == CanonicalSection(section) && p.Index == index {
			sess.Editing = nil
		}
		return sess, nil
	})
}

// UpdateRecord saves several fields of one record at once, as the inline
// editor form does, and closes the editor if it was open on that record.
// Nothing changes unless every field is valid.
func (s *Service) UpdateRecord(ctx context.Context, sessionID, section string, index int, fields map[Column]string) (Session, error) {
	return s.store.Update(sessionID, func(sess Session) (Session, error) {
		for col := range fields {
			if _, err := ParseColumn(string(col)); err != nil {
				return sess, err
			}
		}
		doc := sess.Document
		if _, err := doc.Record(section, index); err != nil {
			return sess, err
		}
		for _, col := range EditableColumns {
			value, ok := fields[col]
			if !ok {
				continue
			}
			next, err := doc.UpdateField(section, index, col, value)
			if err != nil {
				return sess, err
			}
			doc = next
		}
		sess.Document = doc
		if p := sess.Editing; p != nil && p.Section == CanonicalSection(section) && p.Index == index {
			sess.Editing = nil
		}
		return sess, nil
	})
}

// DeleteRecord removes one record and fixes up the edit pointer.
func (s *Service) DeleteRecord(ctx context.Context, sessionID, section string, index int) (Session, error) {
	sess, err := s.store.Update(sessionID, func(sess Session) (Session, error) {
		doc, err := sess.Document.DeleteRecord(section, index)
		if err != nil {
			return sess, err
		}
		sess.Document = doc
		sess.Editing = sess.Editing.afterDelete(section, index, len(doc.Section(section)))
		return sess, nil
	})
	if err != nil {
		return Session{}, err
	}

	slog.Info("record deleted",
		"session_id", sessionID,
		"section", CanonicalSection(section),
		"index", index,
	)
	return sess, nil
}

// NormalizeRecipients splits a comma-separated recipient list, trims each
// address and drops empties. At least one address is required; addresses
// are not otherwise validated.
func NormalizeRecipients(sendTo string) (string, error) {
	var out []string
	for _, addr := range strings.Split(sendTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	if len(out) == 0 {
		return "", ErrRecipientRequired
	}
	return strings.Join(out, ","), nil
}

// SendEmail emails a snapshot of the session's document. The document is
// read once up front and never locked during the outbound call.
func (s *Service) SendEmail(ctx context.Context, sessionID, sendTo string) error {
	recipients, err := NormalizeRecipients(sendTo)
	if err != nil {
		return err
	}

	sess, err := s.store.Get(sessionID)
	if err != nil {
		return err
	}
	return s.SendDocument(ctx, sess.Document, recipients)
}

// SendDocument emails doc to a comma-separated recipient list.
func (s *Service) SendDocument(ctx context.Context, doc Document, sendTo string) error {
	recipients, err := NormalizeRecipients(sendTo)
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return fmt.Errorf("send report: %w: no mailer configured", ErrDeliveryFailed)
	}

	release, err := s.acquire(ctx, DeliveryEmail)
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	if err := s.mailer.SendReport(ctx, doc, recipients); err != nil {
		slog.Warn("report email failed",
			"session_id", SessionIDFromContext(ctx),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	slog.Info("report emailed",
		"session_id", SessionIDFromContext(ctx),
		"recipients", strings.Count(recipients, ",")+1,
		"records", doc.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GeneratePDF renders a snapshot of the session's document to PDF bytes.
func (s *Service) GeneratePDF(ctx context.Context, sessionID string) ([]byte, error) {
	sess, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.RenderPDF(ctx, sess.Document)
}

// RenderPDF renders doc to PDF bytes through the configured engine.
func (s *Service) RenderPDF(ctx context.Context, doc Document) ([]byte, error) {
	if s.pdf == nil {
		return nil, ErrPDFUnavailable
	}

	release, err := s.acquire(ctx, DeliveryPDF)
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	data, err := s.pdf.RenderPDF(ctx, doc)
	if err != nil {
		slog.Warn("pdf generation failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	slog.Info("pdf generated",
		"bytes", len(data),
		"records", doc.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}

// DeliveryStatus reports in-flight deliveries.
func (s *Service) DeliveryStatus() DeliveryLimiterStatus {
	return s.limiter.Status()
}

// WaitForDeliveries blocks until in-flight deliveries finish or ctx is done.
func (s *Service) WaitForDeliveries(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) acquire(ctx context.Context, kind DeliveryKind) (func(), error) {
	if err := s.limiter.Acquire(ctx, kind); err != nil {
		return nil, err
	}
	return func() { s.limiter.Release(kind) }, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
