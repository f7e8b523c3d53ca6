package templates

import (
	"context"
	_ "embed"
	"strings"

	"github.com/JonMunkholm/fraudwatch/internal/core"
)

// ReportCSS styles the report for screen and print. The editor page links it;
// the print page inlines it so the page renders from a file:// URL too.
//
//go:embed report.css
var ReportCSS string

func pageTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "Report Editor"
	}
	return title + " - Report Editor"
}

func fieldLabel(col core.Column) string {
	name := string(col)
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// PrintHTML renders doc as a standalone, non-interactive page for the PDF
// engines.
func PrintHTML(ctx context.Context, doc core.Document, contact string) (string, error) {
	var b strings.Builder
	if err := PrintPage(NewPreview(doc, nil, false, contact), false).Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
