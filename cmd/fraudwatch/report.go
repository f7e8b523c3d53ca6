package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fraudwatch/internal/bundle"
	"github.com/JonMunkholm/fraudwatch/internal/config"
	"github.com/JonMunkholm/fraudwatch/internal/core"
	"github.com/JonMunkholm/fraudwatch/internal/web/templates"
)

// loadBundle reads a bundle and builds its document on the service's
// header defaults.
func loadBundle(service *core.Service, path string) (core.Document, error) {
	b, err := bundle.FromFile(path)
	if err != nil {
		return core.Document{}, err
	}
	doc, err := b.Document(service.Defaults())
	if err != nil {
		return core.Document{}, err
	}

	slog.Debug("bundle loaded", "path", path, "records", doc.Len(), "sections", len(doc.Groups()))
	return doc, nil
}

// setup loads configuration and the service for an offline command.
func setup() (*config.Config, *core.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cliLogger(cfg)

	service, err := newService(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, service, nil
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <bundle.yaml>",
		Short: "Print the report as a standalone HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, service, err := setup()
			if err != nil {
				return err
			}
			doc, err := loadBundle(service, args[0])
			if err != nil {
				return err
			}

			page, err := templates.PrintHTML(cmd.Context(), doc, cfg.Report.Contact)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), page)
			return err
		},
	}
}

func newSendCmd() *cobra.Command {
	var sendTo string

	cmd := &cobra.Command{
		Use:   "send <bundle.yaml>",
		Short: "Email the report through the delivery service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, service, err := setup()
			if err != nil {
				return err
			}
			doc, err := loadBundle(service, args[0])
			if err != nil {
				return err
			}

			if err := service.SendDocument(cmd.Context(), doc, sendTo); err != nil {
				slog.Error("send failed", "error", err)
				return core.NewUserError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Email sent successfully!")
			return nil
		},
	}
	cmd.Flags().StringVar(&sendTo, "to", "", "comma-separated recipient addresses")
	cmd.MarkFlagRequired("to")
	return cmd
}

func newPDFCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pdf <bundle.yaml>",
		Short: "Render the report to a PDF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, service, err := setup()
			if err != nil {
				return err
			}
			doc, err := loadBundle(service, args[0])
			if err != nil {
				return err
			}

			data, err := service.RenderPDF(cmd.Context(), doc)
			if err != nil {
				slog.Error("pdf failed", "error", err)
				return core.NewUserError(err)
			}

			if output == "" {
				output = cfg.PDF.FileName
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			slog.Info("pdf written", "path", output, "bytes", len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: PDF_FILE_NAME)")
	return cmd
}
