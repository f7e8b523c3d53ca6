// Package pdf renders the print view of a report to PDF with a locally
// installed engine: wkhtmltopdf or a headless Chromium.
//
// Each conversion works in its own temp directory. The HTML goes in, the
// engine writes the PDF next to it, the bytes are read back and the
// directory is removed whether or not the conversion succeeded.
package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/fraudwatch/internal/core"
)

// Engine names a local HTML to PDF converter.
type Engine string

const (
	EngineWKHTML   Engine = "wkhtmltopdf"
	EngineChromium Engine = "chromium"
	EngineNone     Engine = "none"
)

var chromiumNames = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// HTMLFunc renders a document to a standalone HTML page.
type HTMLFunc func(ctx context.Context, doc core.Document) (string, error)

// Options controls page layout.
type Options struct {
	PageSize     string // default: A4
	Orientation  string // portrait (default) or landscape
	MarginTop    string
	MarginBottom string
	MarginLeft   string
	MarginRight  string
}

// DefaultOptions returns A4 portrait with the usual report margins.
func DefaultOptions() Options {
	return Options{
		PageSize:     "A4",
		Orientation:  "portrait",
		MarginTop:    "15mm",
		MarginBottom: "15mm",
		MarginLeft:   "10mm",
		MarginRight:  "10mm",
	}
}

// Renderer converts documents to PDF through a local engine.
type Renderer struct {
	engine Engine
	bin    string
	opts   Options
	html   HTMLFunc
}

var _ core.PDFRenderer = (*Renderer)(nil)

// Detect returns the first engine found on PATH and its binary.
// wkhtmltopdf is preferred; EngineNone means nothing is installed.
func Detect() (Engine, string) {
	if path, err := lookPath("wkhtmltopdf"); err == nil {
		return EngineWKHTML, path
	}
	if path := findChromium(); path != "" {
		return EngineChromium, path
	}
	return EngineNone, ""
}

func findChromium() string {
	for _, name := range chromiumNames {
		if path, err := lookPath(name); err == nil {
			return path
		}
	}
	return ""
}

// New creates a Renderer. engine is "local" (auto-detect), "wkhtmltopdf" or
// "chromium". It fails with core.ErrPDFUnavailable when the engine is not
// installed.
func New(engine string, opts Options, html HTMLFunc) (*Renderer, error) {
	var (
		e   Engine
		bin string
	)
	switch Engine(strings.ToLower(engine)) {
	case "local", "":
		e, bin = Detect()
	case EngineWKHTML:
		if path, err := lookPath("wkhtmltopdf"); err == nil {
			e, bin = EngineWKHTML, path
		}
	case EngineChromium:
		if path := findChromium(); path != "" {
			e, bin = EngineChromium, path
		}
	default:
		return nil, fmt.Errorf("unsupported pdf engine: %s", engine)
	}
	if bin == "" {
		return nil, fmt.Errorf("%w: %s not found in PATH", core.ErrPDFUnavailable, engine)
	}

	def := DefaultOptions()
	if opts.PageSize == "" {
		opts.PageSize = def.PageSize
	}
	if opts.Orientation == "" {
		opts.Orientation = def.Orientation
	}
	if opts.MarginTop == "" {
		opts.MarginTop, opts.MarginBottom = def.MarginTop, def.MarginBottom
		opts.MarginLeft, opts.MarginRight = def.MarginLeft, def.MarginRight
	}

	return &Renderer{engine: e, bin: bin, opts: opts, html: html}, nil
}

// Engine returns the engine in use.
func (r *Renderer) Engine() Engine {
	return r.engine
}

// RenderPDF renders doc to HTML and converts it.
func (r *Renderer) RenderPDF(ctx context.Context, doc core.Document) ([]byte, error) {
	page, err := r.html(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("local pdf: render html: %w", err)
	}
	return r.Convert(ctx, page)
}

// Convert turns an HTML page into PDF bytes.
func (r *Renderer) Convert(ctx context.Context, html string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "fraudwatch-pdf-")
	if err != nil {
		return nil, fmt.Errorf("local pdf: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "report.html")
	out := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(in, []byte(html), 0o600); err != nil {
		return nil, fmt.Errorf("local pdf: write html: %w", err)
	}

	var args []string
	switch r.engine {
	case EngineWKHTML:
		args = wkhtmlArgs(r.opts, in, out)
	case EngineChromium:
		args = chromiumArgs(r.opts, in, out)
	default:
		return nil, core.ErrPDFUnavailable
	}

	cmd := exec.CommandContext(ctx, r.bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("local pdf: %s: %w", r.engine, ctxErr)
		}
		return nil, fmt.Errorf("local pdf: %s failed: %w: %s", r.engine, err, strings.TrimSpace(string(output)))
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("local pdf: read output: %w", err)
	}
	return data, nil
}

func wkhtmlArgs(opts Options, in, out string) []string {
	return []string{
		"--page-size", opts.PageSize,
		"--orientation", opts.Orientation,
		"--margin-top", opts.MarginTop,
		"--margin-bottom", opts.MarginBottom,
		"--margin-left", opts.MarginLeft,
		"--margin-right", opts.MarginRight,
		"--encoding", "UTF-8",
		"--print-media-type",
		"--enable-local-file-access",
		"--quiet",
		in,
		out,
	}
}

func chromiumArgs(opts Options, in, out string) []string {
	args := []string{
		"--headless",
		"--disable-gpu",
		"--no-sandbox",
		"--print-to-pdf=" + out,
		"--no-pdf-header-footer",
	}
	if strings.EqualFold(opts.Orientation, "landscape") {
		args = append(args, "--landscape")
	}
	return append(args, "file://"+in)
}
