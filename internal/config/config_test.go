package config

import (
	"strings"
	"testing"
	"time"
)

// mapLookup returns a LookupFunc backed by a map.
func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Delivery.BaseURL != "https://report-mailer-backend.onrender.com" {
		t.Errorf("Delivery.BaseURL = %q", cfg.Delivery.BaseURL)
	}
	if cfg.Delivery.SendPath != "/send-report" {
		t.Errorf("Delivery.SendPath = %q, want /send-report", cfg.Delivery.SendPath)
	}
	if cfg.Delivery.Timeout != 60*time.Second {
		t.Errorf("Delivery.Timeout = %v, want 60s", cfg.Delivery.Timeout)
	}
	if cfg.PDF.Engine != "remote" {
		t.Errorf("PDF.Engine = %q, want remote", cfg.PDF.Engine)
	}
	if cfg.PDF.FileName != "fraud-report.pdf" {
		t.Errorf("PDF.FileName = %q, want fraud-report.pdf", cfg.PDF.FileName)
	}
	if cfg.Session.MaxIdle != 12*time.Hour {
		t.Errorf("Session.MaxIdle = %v, want 12h", cfg.Session.MaxIdle)
	}
	if cfg.Report.Title != "Fraud Watchlist" {
		t.Errorf("Report.Title = %q, want Fraud Watchlist", cfg.Report.Title)
	}
	if cfg.Report.Period != "" {
		t.Errorf("Report.Period = %q, want empty", cfg.Report.Period)
	}
	if !cfg.Rate.Enabled {
		t.Error("Rate.Enabled = false, want true")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(map[string]string{
		"SERVER_PORT":             "9090",
		"DELIVERY_MAX_CONCURRENT": "8",
		"LOG_LEVEL":               "debug",
		"PDF_ENGINE":              "local",
		"REPORT_PERIOD":           "18 Oct 2025 - 24 Oct 2025",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Delivery.MaxConcurrent != 8 {
		t.Errorf("Delivery.MaxConcurrent = %d, want %d", cfg.Delivery.MaxConcurrent, 8)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.PDF.Engine != "local" {
		t.Errorf("PDF.Engine = %q, want local", cfg.PDF.Engine)
	}
	if cfg.Report.Period != "18 Oct 2025 - 24 Oct 2025" {
		t.Errorf("Report.Period = %q", cfg.Report.Period)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(map[string]string{"PORT": "10000"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != 10000 {
		t.Errorf("Server.Port = %d, want 10000", cfg.Server.Port)
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("SESSION_COOKIE_NAME", "report_sid")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session.CookieName != "report_sid" {
		t.Errorf("Session.CookieName = %q, want report_sid", cfg.Session.CookieName)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "invalid integer",
			env:     map[string]string{"SERVER_PORT": "eighty"},
			wantErr: "SERVER_PORT",
		},
		{
			name:    "invalid duration",
			env:     map[string]string{"DELIVERY_TIMEOUT": "soon"},
			wantErr: "invalid duration",
		},
		{
			name:    "invalid boolean",
			env:     map[string]string{"RATE_LIMIT_ENABLED": "maybe"},
			wantErr: "invalid boolean",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"SERVER_PORT": "70000"},
			wantErr: "must be 1-65535",
		},
		{
			name:    "relative delivery url",
			env:     map[string]string{"DELIVERY_BASE_URL": "mailer.local"},
			wantErr: "DELIVERY_BASE_URL",
		},
		{
			name:    "unknown pdf engine",
			env:     map[string]string{"PDF_ENGINE": "printer"},
			wantErr: "PDF_ENGINE",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: "LOG_LEVEL",
		},
		{
			name:    "bad log format",
			env:     map[string]string{"LOG_FORMAT": "xml"},
			wantErr: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(mapLookup(tt.env))
			if err == nil {
				t.Fatal("LoadFrom() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(nil))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	cfg.Server.Port = 0
	cfg.Delivery.MaxConcurrent = 0
	cfg.Session.CookieName = ""

	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"SERVER_PORT", "DELIVERY_MAX_CONCURRENT", "SESSION_COOKIE_NAME"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q: %v", want, err)
		}
	}
}

func TestTrustedProxiesSplit(t *testing.T) {
	cfg, err := LoadFrom(mapLookup(map[string]string{
		"TRUSTED_PROXIES": " 10.0.0.0/8, ,127.0.0.1 ",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	want := []string{"10.0.0.0/8", "127.0.0.1"}
	if len(cfg.Security.TrustedProxies) != len(want) {
		t.Fatalf("TrustedProxies = %v, want %v", cfg.Security.TrustedProxies, want)
	}
	for i := range want {
		if cfg.Security.TrustedProxies[i] != want[i] {
			t.Errorf("TrustedProxies[%d] = %q, want %q", i, cfg.Security.TrustedProxies[i], want[i])
		}
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 3000, ":3000"},
		{"127.0.0.1", 80, "127.0.0.1:80"},
	}
	for _, tt := range tests {
		c := ServerConfig{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}
