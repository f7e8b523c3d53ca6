package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/JonMunkholm/fraudwatch/internal/config"
	"github.com/JonMunkholm/fraudwatch/internal/core"
	"github.com/JonMunkholm/fraudwatch/internal/delivery"
)

const bundleYAML = `title: Weekly Watch
period: 18 Oct 2025 - 24 Oct 2025
sections:
  - key: india
    csv: |
      Date,Title,Category,Summary,Source
      2025-10-18,Counterfeit seizure,IPR,Raid on warehouse,https://example.com/a
`

func writeBundle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := os.WriteFile(path, []byte(bundleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file="}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	out, err := run(t, "render", writeBundle(t))
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Find(".report-title").Text(); got != "Weekly Watch" {
		t.Errorf("title = %q", got)
	}
	if got := doc.Find(`section[data-section="india"] .record-title`).Text(); got != "Counterfeit seizure" {
		t.Errorf("record = %q", got)
	}
}

func TestSendCommand(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()
	t.Setenv("DELIVERY_BASE_URL", srv.URL)

	out, err := run(t, "send", writeBundle(t), "--to", "a@example.com, b@example.com")
	if err != nil {
		t.Fatalf("send: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Email sent successfully!") {
		t.Errorf("output = %q", out)
	}
	if got["sendTo"] != "a@example.com,b@example.com" || got["title"] != "Weekly Watch" {
		t.Errorf("payload = %v", got)
	}
}

func TestSendCommand_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	t.Setenv("DELIVERY_BASE_URL", srv.URL)

	_, err := run(t, "send", writeBundle(t), "--to", "a@example.com")
	var userErr *core.UserError
	if !errors.As(err, &userErr) || userErr.User.Code != "DLV002" {
		t.Errorf("err = %v, want DLV002 user error", err)
	}
}

func TestPDFCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 remote"))
	}))
	defer srv.Close()
	t.Setenv("DELIVERY_BASE_URL", srv.URL)

	output := filepath.Join(t.TempDir(), "out.pdf")
	if out, err := run(t, "pdf", writeBundle(t), "-o", output); err != nil {
		t.Fatalf("pdf: %v\n%s", err, out)
	}
	data, err := os.ReadFile(output)
	if err != nil || string(data) != "%PDF-1.4 remote" {
		t.Errorf("output = %q, %v", data, err)
	}
}

func TestNewRenderer(t *testing.T) {
	cfg, err := config.LoadFrom(func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatal(err)
	}
	remote := delivery.NewClient(cfg.Delivery)

	r, err := newRenderer(cfg, remote)
	if err != nil || r != core.PDFRenderer(remote) {
		t.Errorf("remote engine = %v, %v, want the delivery client", r, err)
	}

	cfg.PDF.Engine = "wkhtmltopdf"
	t.Setenv("PATH", t.TempDir())
	if _, err := newRenderer(cfg, remote); !errors.Is(err, core.ErrPDFUnavailable) {
		t.Errorf("missing binary error = %v, want ErrPDFUnavailable", err)
	}
}
