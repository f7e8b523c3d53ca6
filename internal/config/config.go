// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Delivery DeliveryConfig
	PDF      PDFConfig
	Session  SessionConfig
	Report   ReportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 90s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"90s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 75s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"75s"`

	// MaxBodySize caps form posts, i.e. the largest CSV paste (default: 2MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"2097152"`
}

// DeliveryConfig holds settings for the external mailer / PDF service.
type DeliveryConfig struct {
	// BaseURL is the delivery service root
	BaseURL string `env:"DELIVERY_BASE_URL" default:"https://report-mailer-backend.onrender.com"`

	// SendPath is the email endpoint (default: /send-report)
	SendPath string `env:"DELIVERY_SEND_PATH" default:"/send-report"`

	// PDFPath is the PDF generation endpoint (default: /generate-pdf)
	PDFPath string `env:"DELIVERY_PDF_PATH" default:"/generate-pdf"`

	// Timeout bounds a single outbound call (default: 60s)
	Timeout time.Duration `env:"DELIVERY_TIMEOUT" default:"60s"`

	// MaxConcurrent is the maximum number of parallel deliveries (default: 4)
	MaxConcurrent int `env:"DELIVERY_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a delivery slot (default: 10s)
	MaxWaitTime time.Duration `env:"DELIVERY_MAX_WAIT_TIME" default:"10s"`
}

// PDFConfig selects how PDFs are produced.
type PDFConfig struct {
	// Engine is "remote" (delivery service), "local" (auto-detect),
	// "chromium" or "wkhtmltopdf" (default: remote)
	Engine string `env:"PDF_ENGINE" default:"remote"`

	// PageSize for local engines (default: A4)
	PageSize string `env:"PDF_PAGE_SIZE" default:"A4"`

	// Orientation for local engines: portrait or landscape (default: portrait)
	Orientation string `env:"PDF_ORIENTATION" default:"portrait"`

	// FileName is the download name offered to the browser (default: fraud-report.pdf)
	FileName string `env:"PDF_FILE_NAME" default:"fraud-report.pdf"`
}

// SessionConfig holds editor session settings.
type SessionConfig struct {
	// CookieName is the session cookie (default: fw_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"fw_session"`

	// CookieSecure marks the cookie Secure; enable behind TLS (default: false)
	CookieSecure bool `env:"SESSION_COOKIE_SECURE" default:"false"`

	// MaxIdle is how long an untouched session is kept (default: 12h)
	MaxIdle time.Duration `env:"SESSION_MAX_IDLE" default:"12h"`

	// SweepInterval is how often idle sessions are removed (default: 10m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"10m"`
}

// ReportConfig holds the header values a new report starts with.
type ReportConfig struct {
	Title      string `env:"REPORT_TITLE" default:"Fraud Watchlist"`
	Period     string `env:"REPORT_PERIOD"`
	Categories string `env:"REPORT_CATEGORIES" default:"IPR / Cyber / Employee / Vendor / Theft / Online Fraud"`
	Compiled   string `env:"REPORT_COMPILED" default:"True Buddy Consulting Pvt Ltd"`

	// Contact is shown in the report footer
	Contact string `env:"REPORT_CONTACT" default:"contact@tbcpl.co.in"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// DeliveryLimit is requests per minute per IP for email/PDF endpoints (default: 10)
	DeliveryLimit int `env:"RATE_LIMIT_DELIVERY" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
