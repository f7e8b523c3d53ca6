// Package delivery talks to the external report service that emails a
// report or renders it to PDF.
//
// The service contract is opaque: both endpoints accept the report document
// as JSON. Any 2xx response is success; every other outcome, including
// transport errors, is reported as core.ErrDeliveryFailed. Calls are never
// retried.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JonMunkholm/fraudwatch/internal/config"
	"github.com/JonMunkholm/fraudwatch/internal/core"
)

// maxErrorBody caps how much of a failed response body is kept for logs.
const maxErrorBody = 512

// maxPDFSize caps the PDF body read from the service.
const maxPDFSize = 50 << 20

// Client is the delivery service client.
type Client struct {
	baseURL  string
	sendPath string
	pdfPath  string
	client   *http.Client
}

var (
	_ core.Mailer      = (*Client)(nil)
	_ core.PDFRenderer = (*Client)(nil)
)

// NewClient creates a client for the configured delivery service.
// The per-call deadline comes from the caller's context.
func NewClient(cfg config.DeliveryConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		sendPath: cfg.SendPath,
		pdfPath:  cfg.PDFPath,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// SendRequest is the email payload: the full document plus the recipients.
type SendRequest struct {
	core.Document
	SendTo string `json:"sendTo"`
}

// SendReport asks the service to email doc to sendTo, a comma-separated
// address list.
func (c *Client) SendReport(ctx context.Context, doc core.Document, sendTo string) error {
	res, err := c.post(ctx, c.sendPath, SendRequest{Document: doc, SendTo: sendTo})
	if err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// RenderPDF asks the service to render doc and returns the PDF bytes.
func (c *Client) RenderPDF(ctx context.Context, doc core.Document) ([]byte, error) {
	res, err := c.post(ctx, c.pdfPath, doc)
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	defer res.Body.Close()

	if err := checkStatus(res); err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxPDFSize))
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w: read body: %v", core.ErrDeliveryFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("generate pdf: %w: empty response", core.ErrDeliveryFailed)
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		// Keep the context error visible to errors.Is callers.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrDeliveryFailed, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrDeliveryFailed, err)
	}
	return res, nil
}

func checkStatus(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	return fmt.Errorf("%w: status %d: %s", core.ErrDeliveryFailed, res.StatusCode, strings.TrimSpace(string(body)))
}
