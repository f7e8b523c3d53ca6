package pdf

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/JonMunkholm/fraudwatch/internal/core"
)

// stubLookPath makes only the named binaries resolvable.
func stubLookPath(t *testing.T, found map[string]string) {
	t.Helper()
	orig := lookPath
	lookPath = func(name string) (string, error) {
		if path, ok := found[name]; ok {
			return path, nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = orig })
}

// fakeEngine writes a shell script that behaves like wkhtmltopdf: it writes
// a PDF stub to its last argument.
func fakeEngine(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engines need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "wkhtmltopdf")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake engine: %v", err)
	}
	return path
}

func staticHTML(html string) HTMLFunc {
	return func(ctx context.Context, doc core.Document) (string, error) {
		return html, nil
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		found      map[string]string
		wantEngine Engine
		wantBin    string
	}{
		{
			name:       "nothing installed",
			found:      nil,
			wantEngine: EngineNone,
		},
		{
			name:       "wkhtmltopdf preferred",
			found:      map[string]string{"wkhtmltopdf": "/usr/bin/wkhtmltopdf", "chromium": "/usr/bin/chromium"},
			wantEngine: EngineWKHTML,
			wantBin:    "/usr/bin/wkhtmltopdf",
		},
		{
			name:       "chrome fallback",
			found:      map[string]string{"google-chrome": "/opt/google/chrome"},
			wantEngine: EngineChromium,
			wantBin:    "/opt/google/chrome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookPath(t, tt.found)
			engine, bin := Detect()
			if engine != tt.wantEngine || bin != tt.wantBin {
				t.Errorf("Detect() = %q, %q, want %q, %q", engine, bin, tt.wantEngine, tt.wantBin)
			}
		})
	}
}

func TestNew_Unavailable(t *testing.T) {
	stubLookPath(t, nil)

	for _, engine := range []string{"local", "wkhtmltopdf", "chromium"} {
		if _, err := New(engine, Options{}, staticHTML("")); !errors.Is(err, core.ErrPDFUnavailable) {
			t.Errorf("New(%q) error = %v, want ErrPDFUnavailable", engine, err)
		}
	}

	if _, err := New("printer", Options{}, staticHTML("")); err == nil {
		t.Error("New(printer) error = nil, want unsupported engine")
	}
}

func TestNew_Defaults(t *testing.T) {
	stubLookPath(t, map[string]string{"chromium": "/usr/bin/chromium"})

	r, err := New("chromium", Options{Orientation: "landscape"}, staticHTML(""))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if r.Engine() != EngineChromium {
		t.Errorf("Engine() = %q, want chromium", r.Engine())
	}
	if r.opts.PageSize != "A4" || r.opts.Orientation != "landscape" || r.opts.MarginTop != "15mm" {
		t.Errorf("opts = %+v", r.opts)
	}
}

func TestChromiumArgs(t *testing.T) {
	args := chromiumArgs(Options{Orientation: "Landscape"}, "/tmp/x/report.html", "/tmp/x/report.pdf")
	joined := strings.Join(args, " ")

	for _, want := range []string{"--headless", "--print-to-pdf=/tmp/x/report.pdf", "--landscape"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}
	if last := args[len(args)-1]; last != "file:///tmp/x/report.html" {
		t.Errorf("last arg = %q, want the input file URL", last)
	}
}

func TestWKHTMLArgs(t *testing.T) {
	args := wkhtmlArgs(DefaultOptions(), "in.html", "out.pdf")
	if args[len(args)-2] != "in.html" || args[len(args)-1] != "out.pdf" {
		t.Errorf("args end with %v, want [in.html out.pdf]", args[len(args)-2:])
	}
	if !strings.Contains(strings.Join(args, " "), "--page-size A4") {
		t.Errorf("args missing page size: %v", args)
	}
}

func TestRenderPDF_FakeEngine(t *testing.T) {
	bin := fakeEngine(t, `for a; do last="$a"; done
printf '%%PDF-fake' > "$last"
`)
	stubLookPath(t, map[string]string{"wkhtmltopdf": bin})

	r, err := New("local", Options{}, staticHTML("<html><body>report</body></html>"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	data, err := r.RenderPDF(context.Background(), core.Document{Title: "Fraud Watchlist"})
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if string(data) != "%PDF-fake" {
		t.Errorf("RenderPDF() = %q, want %%PDF-fake", data)
	}
}

func TestRenderPDF_EngineFailure(t *testing.T) {
	bin := fakeEngine(t, "echo 'cannot load page' >&2\nexit 3\n")
	stubLookPath(t, map[string]string{"wkhtmltopdf": bin})

	r, err := New("wkhtmltopdf", Options{}, staticHTML("<html></html>"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = r.RenderPDF(context.Background(), core.Document{})
	if err == nil {
		t.Fatal("RenderPDF() error = nil, want engine failure")
	}
	if !strings.Contains(err.Error(), "cannot load page") {
		t.Errorf("error = %v, want engine output included", err)
	}
	if got := core.MapError(err).Code; got != "PDF001" {
		t.Errorf("MapError code = %q, want PDF001", got)
	}
}

func TestRenderPDF_HTMLError(t *testing.T) {
	stubLookPath(t, map[string]string{"wkhtmltopdf": "/bin/false"})
	boom := errors.New("template broke")

	r, err := New("local", Options{}, func(ctx context.Context, doc core.Document) (string, error) {
		return "", boom
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := r.RenderPDF(context.Background(), core.Document{}); !errors.Is(err, boom) {
		t.Errorf("RenderPDF() error = %v, want %v", err, boom)
	}
}
