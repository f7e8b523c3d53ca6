package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/fraudwatch/internal/config"
)

type fakeMailer struct {
	mu     sync.Mutex
	calls  int
	doc    Document
	sendTo string
	err    error
	block  bool
}

func (m *fakeMailer) SendReport(ctx context.Context, doc Document, sendTo string) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.doc = doc
	m.sendTo = sendTo
	return m.err
}

type fakePDF struct {
	data []byte
	err  error
}

func (p *fakePDF) RenderPDF(ctx context.Context, doc Document) ([]byte, error) {
	return p.data, p.err
}

func testConfig() *config.Config {
	return &config.Config{
		Delivery: config.DeliveryConfig{
			Timeout:       time.Second,
			MaxConcurrent: 2,
			MaxWaitTime:   100 * time.Millisecond,
		},
		Report: config.ReportConfig{
			Title:      "Fraud Watchlist",
			Categories: "IPR / Cyber",
			Compiled:   "Compiler",
		},
	}
}

const indiaCSV = "Date,Title,Category,Summary,Source\n" +
	"2025-10-18,First,Cyber,One,https://example.com/1\n" +
	"2025-10-19,Second,IPR,Two,https://example.com/2\n" +
	"2025-10-20,Third,Theft,Three,https://example.com/3"

func TestService_NewSessionDefaults(t *testing.T) {
	svc := NewService(nil, nil, testConfig())
	sess := svc.NewSession(context.Background())

	if sess.Document.Title != "Fraud Watchlist" || sess.Document.Compiled != "Compiler" {
		t.Errorf("header = %+v, want configured defaults", sess.Document)
	}
	if sess.Document.Len() != 0 {
		t.Errorf("new document has %d rows, want 0", sess.Document.Len())
	}
	if svc.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", svc.SessionCount())
	}
}

func TestService_IngestSection(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, nil, testConfig())
	sess := svc.NewSession(ctx)

	got, err := svc.IngestSection(ctx, sess.ID, "India", indiaCSV)
	if err != nil {
		t.Fatalf("IngestSection() error = %v", err)
	}
	if n := len(got.Document.Section("india")); n != 3 {
		t.Fatalf("india has %d records, want 3", n)
	}

	// A second paste replaces the section wholesale.
	got, err = svc.IngestSection(ctx, sess.ID, "india", "Date,Title,Category,Summary,Source\nd,Only,c,s,u")
	if err != nil {
		t.Fatalf("IngestSection() error = %v", err)
	}
	if got.Document.Len() != 1 || got.Document.Rows[0].Title != "Only" {
		t.Errorf("india after re-paste = %v, want [Only]", titles(got.Document.Section("india")))
	}

	if _, err := svc.IngestSection(ctx, sess.ID, "  ", indiaCSV); err == nil {
		t.Error("IngestSection(blank section) error = nil")
	}
	if _, err := svc.IngestSection(ctx, "missing", "india", indiaCSV); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("IngestSection(missing) error = %v, want ErrSessionNotFound", err)
	}
}

func TestService_IngestCombined(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, nil, testConfig())
	sess := svc.NewSession(ctx)
	_, _ = svc.IngestSection(ctx, sess.ID, "india", indiaCSV)
	_, _ = svc.StartEdit(ctx, sess.ID, "india", 0)

	text := CombinedSchema.Header() + "\n" +
		"Analysis,,Trend,,\"1. a\n2. b\",\n" +
		"International,2025-10-18,Abroad,Cyber,S,u"

	got, err := svc.IngestCombined(ctx, sess.ID, text)
	if err != nil {
		t.Fatalf("IngestCombined() error = %v", err)
	}
	if got.Document.Len() != 2 {
		t.Errorf("Len() = %d, want 2", got.Document.Len())
	}
	if got.Editing != nil {
		t.Errorf("Editing = %+v, want nil after combined paste", got.Editing)
	}
	groups := got.Document.Groups()
	if groups[0].Section != "analysis" || groups[1].Section != "international" {
		t.Errorf("group order = %s, %s", groups[0].Section, groups[1].Section)
	}
}

func TestService_EditFlow(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, nil, testConfig())
	sess := svc.NewSession(ctx)
	_, _ = svc.IngestSection(ctx, sess.ID, "india", indiaCSV)

	got, err := svc.StartEdit(ctx, sess.ID, "india", 1)
	if err != nil {
		t.Fatalf("StartEdit() error = %v", err)
	}
	if got.Editing == nil || got.Editing.Index != 1 {
		t.Fatalf("Editing = %+v, want india[1]", got.Editing)
	}

	// Editing another record keeps the editor open.
	got, err = svc.UpdateField(ctx, sess.ID, "india", 0, ColTitle, "Renamed")
	if err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	if got.Editing == nil {
		t.Error("UpdateField() on another record closed the editor")
	}

	// Saving the open record closes it.
	got, err = svc.UpdateField(ctx, sess.ID, "india", 1, ColSummary, "Edited")
	if err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	if got.Editing != nil {
		t.Errorf("Editing = %+v, want nil after save", got.Editing)
	}

	rows := got.Document.Section("india")
	if rows[0].Title != "Renamed" || rows[1].Summary != "Edited" || rows[2].Title != "Third" {
		t.Errorf("rows after edits = %+v", rows)
	}

	if _, err := svc.StartEdit(ctx, sess.ID, "india", 9); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("StartEdit(out of range) error = %v, want ErrRecordNotFound", err)
	}

	_, _ = svc.StartEdit(ctx, sess.ID, "india", 2)
	got, _ = svc.CancelEdit(ctx, sess.ID)
	if got.Editing != nil {
		t.Error("CancelEdit() left the pointer set")
	}
}

func TestService_UpdateRecord(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, nil, testConfig())
	sess := svc.NewSession(ctx)
	_, _ = svc.IngestSection(ctx, sess.ID, "india", indiaCSV)
	_, _ = svc.StartEdit(ctx, sess.ID, "india", 2)

	got, err := svc.UpdateRecord(ctx, sess.ID, "india", 2, map[Column]string{
		ColTitle:  "New title",
		ColSource: "",
	})
	if err != nil {
		t.Fatalf("UpdateRecord() error = %v", err)
	}
	rec := got.Document.Section("india")[2]
	if rec.Title != "New title" || rec.Source != "" || rec.Summary != "Three" {
		t.Errorf("record = %+v", rec)
	}
	if got.Editing != nil {
		t.Errorf("Editing = %+v, want nil after save", got.Editing)
	}

	_, err = svc.UpdateRecord(ctx, sess.ID, "india", 0, map[Column]string{
		ColTitle:   "Should not stick",
		ColSection: "analysis",
	})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("UpdateRecord(section) error = %v, want ErrUnknownField", err)
	}
	snap, _ := svc.Snapshot(ctx, sess.ID)
	if snap.Document.Rows[0].Title != "First" {
		t.Errorf("partial update applied: %+v", snap.Document.Rows[0])
	}
}

func TestService_DeleteRecordAdjustsPointer(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, nil, testConfig())
	sess := svc.NewSession(ctx)
	_, _ = svc.IngestSection(ctx, sess.ID, "india", indiaCSV)
	_, _ = svc.StartEdit(ctx, sess.ID, "india", 2)

	got, err := svc.DeleteRecord(ctx, sess.ID, "india", 0)
	if err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if got.Editing == nil || got.Editing.Index != 1 {
		t.Fatalf("Editing = %+v, want india[1]", got.Editing)
	}
	if want := "Third"; got.Document.Section("india")[got.Editing.Index].Title != want {
		t.Errorf("pointer no longer targets %q", want)
	}

	got, err = svc.DeleteRecord(ctx, sess.ID, "india", 1)
	if err != nil {
		t.Fatalf("DeleteRecord() error = %v", err)
	}
	if got.Editing != nil {
		t.Errorf("Editing = %+v, want nil after deleting the edited record", got.Editing)
	}
}

func TestNormalizeRecipients(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"a@example.com", "a@example.com", false},
		{" a@example.com , b@example.com ", "a@example.com,b@example.com", false},
		{"a@example.com,,", "a@example.com", false},
		{"not-an-address", "not-an-address", false},
		{"", "", true},
		{" , ,", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeRecipients(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeRecipients(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrRecipientRequired) {
			t.Errorf("NormalizeRecipients(%q) error = %v, want ErrRecipientRequired", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeRecipients(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestService_SendEmail(t *testing.T) {
	ctx := context.Background()
	mailer := &fakeMailer{}
	svc := NewService(mailer, nil, testConfig())
	sess := svc.NewSession(ctx)
	_, _ = svc.IngestSection(ctx, sess.ID, "india", indiaCSV)

	if err := svc.SendEmail(ctx, sess.ID, " "); !errors.Is(err, ErrRecipientRequired) {
		t.Fatalf("SendEmail(blank) error = %v, want ErrRecipientRequired", err)
	}
	if mailer.calls != 0 {
		t.Fatal("mailer called without a recipient")
	}

	if err := svc.SendEmail(ctx, sess.ID, "a@example.com, b@example.com"); err != nil {
		t.Fatalf("SendEmail() error = %v", err)
	}
	if mailer.sendTo != "a@example.com,b@example.com" {
		t.Errorf("sendTo = %q", mailer.sendTo)
	}
	if mailer.doc.Len() != 3 {
		t.Errorf("mailed document has %d rows, want 3", mailer.doc.Len())
	}

	// The mailed document is a snapshot.
	_, _ = svc.DeleteRecord(ctx, sess.ID, "india", 0)
	if mailer.doc.Len() != 3 {
		t.Error("later edits leaked into the mailed snapshot")
	}
}

func TestService_SendEmailFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no mailer", func(t *testing.T) {
		svc := NewService(nil, nil, testConfig())
		sess := svc.NewSession(ctx)
		err := svc.SendEmail(ctx, sess.ID, "a@example.com")
		if !errors.Is(err, ErrDeliveryFailed) {
			t.Errorf("error = %v, want ErrDeliveryFailed", err)
		}
	})

	t.Run("mailer error is returned once", func(t *testing.T) {
		mailer := &fakeMailer{err: ErrDeliveryFailed}
		svc := NewService(mailer, nil, testConfig())
		sess := svc.NewSession(ctx)
		err := svc.SendEmail(ctx, sess.ID, "a@example.com")
		if !errors.Is(err, ErrDeliveryFailed) {
			t.Errorf("error = %v, want ErrDeliveryFailed", err)
		}
		if mailer.calls != 1 {
			t.Errorf("mailer called %d times, want 1 (no retry)", mailer.calls)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		cfg := testConfig()
		cfg.Delivery.Timeout = 50 * time.Millisecond
		svc := NewService(&fakeMailer{block: true}, nil, cfg)
		sess := svc.NewSession(ctx)
		err := svc.SendEmail(ctx, sess.ID, "a@example.com")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, want context.DeadlineExceeded", err)
		}
		if svc.DeliveryStatus().Email != 0 {
			t.Error("delivery slot not released after timeout")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		svc := NewService(&fakeMailer{}, nil, testConfig())
		err := svc.SendEmail(ctx, "missing", "a@example.com")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("error = %v, want ErrSessionNotFound", err)
		}
	})
}

func TestService_GeneratePDF(t *testing.T) {
	ctx := context.Background()

	svc := NewService(nil, &fakePDF{data: []byte("%PDF-1.7")}, testConfig())
	sess := svc.NewSession(ctx)
	data, err := svc.GeneratePDF(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GeneratePDF() error = %v", err)
	}
	if string(data) != "%PDF-1.7" {
		t.Errorf("GeneratePDF() = %q", data)
	}

	noEngine := NewService(nil, nil, testConfig())
	sess = noEngine.NewSession(ctx)
	if _, err := noEngine.GeneratePDF(ctx, sess.ID); !errors.Is(err, ErrPDFUnavailable) {
		t.Errorf("GeneratePDF() without engine error = %v, want ErrPDFUnavailable", err)
	}
}

func TestService_RunSweep(t *testing.T) {
	svc := NewService(nil, nil, testConfig())
	clock := &fakeClock{now: time.Date(2025, 10, 18, 9, 0, 0, 0, time.UTC)}
	svc.store.now = clock.Now

	svc.NewSession(context.Background())
	clock.Advance(13 * time.Hour)
	svc.runSweep(SweepConfig{}.withDefaults())

	if svc.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d, want 0 after sweep", svc.SessionCount())
	}
}

func TestService_SweeperStopsWithContext(t *testing.T) {
	svc := NewService(nil, nil, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.StartSessionSweeper(ctx, SweepConfig{CheckInterval: 10 * time.Millisecond})
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
