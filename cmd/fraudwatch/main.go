// Command fraudwatch runs the fraud watch report editor and offers offline
// commands that build a report from a YAML bundle.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fraudwatch/internal/config"
	"github.com/JonMunkholm/fraudwatch/internal/core"
	"github.com/JonMunkholm/fraudwatch/internal/delivery"
	"github.com/JonMunkholm/fraudwatch/internal/logging"
	"github.com/JonMunkholm/fraudwatch/internal/pdf"
	"github.com/JonMunkholm/fraudwatch/internal/web/templates"
)

var envFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fraudwatch",
		Short:         "Fraud watch report editor",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Show help when no subcommand is provided
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")

	root.AddCommand(newServeCmd(), newRenderCmd(), newSendCmd(), newPDFCmd())
	return root
}

// loadConfig loads the dotenv file, if any, then the environment.
// Values in the file overwrite existing environment variables.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Overload(envFile); err == nil {
			slog.Debug("loaded env file", "path", envFile)
		}
	}
	return config.Load()
}

// newService wires the delivery client and the configured PDF engine into
// the core service.
func newService(cfg *config.Config) (*core.Service, error) {
	client := delivery.NewClient(cfg.Delivery)

	renderer, err := newRenderer(cfg, client)
	if err != nil {
		return nil, err
	}
	return core.NewService(client, renderer, cfg), nil
}

// newRenderer picks the PDF engine: the delivery service, or a local
// wkhtmltopdf/chromium binary fed the print view.
func newRenderer(cfg *config.Config, remote core.PDFRenderer) (core.PDFRenderer, error) {
	if cfg.PDF.Engine == "" || cfg.PDF.Engine == "remote" {
		return remote, nil
	}

	contact := cfg.Report.Contact
	r, err := pdf.New(cfg.PDF.Engine, pdf.Options{
		PageSize:    cfg.PDF.PageSize,
		Orientation: cfg.PDF.Orientation,
	}, func(ctx context.Context, doc core.Document) (string, error) {
		return templates.PrintHTML(ctx, doc, contact)
	})
	if err != nil {
		return nil, fmt.Errorf("pdf engine %q: %w", cfg.PDF.Engine, err)
	}

	slog.Info("local pdf engine selected", "engine", r.Engine())
	return r, nil
}

// cliLogger sends logs to stderr so command output on stdout stays clean.
func cliLogger(cfg *config.Config) {
	slog.SetDefault(logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format))
}
