package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func echoRemoteAddr() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.RemoteAddr))
	})
}

func TestTrustedRealIP(t *testing.T) {
	handler := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.5", "not-a-cidr"})(echoRemoteAddr())

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "trusted proxy with X-Real-IP",
			remoteAddr: "10.1.2.3:5555",
			headers:    map[string]string{"X-Real-IP": "203.0.113.7"},
			want:       "203.0.113.7",
		},
		{
			name:       "trusted single address with X-Forwarded-For chain",
			remoteAddr: "192.168.1.5:80",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.1, 10.1.2.3"},
			want:       "198.51.100.1",
		},
		{
			name:       "untrusted client spoofing header",
			remoteAddr: "203.0.113.9:4444",
			headers:    map[string]string{"X-Real-IP": "1.1.1.1"},
			want:       "203.0.113.9:4444",
		},
		{
			name:       "trusted proxy with garbage header",
			remoteAddr: "10.0.0.1:1",
			headers:    map[string]string{"X-Real-IP": "nonsense"},
			want:       "10.0.0.1:1",
		},
		{
			name:       "trusted proxy without headers",
			remoteAddr: "10.0.0.1:1",
			want:       "10.0.0.1:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if got := rec.Body.String(); got != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParsePrefixes(t *testing.T) {
	got := ParsePrefixes([]string{" 10.0.0.0/8 ", "", "::1", "bad", "192.168.1.77/24"})
	want := []string{"10.0.0.0/8", "::1/128", "192.168.1.0/24"}
	if len(got) != len(want) {
		t.Fatalf("ParsePrefixes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Errorf("prefix[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := map[string]string{
		"203.0.113.9:4444": "203.0.113.9",
		"[::1]:8080":       "::1",
		"198.51.100.1":     "198.51.100.1",
		"@unix":            "@unix",
	}
	for remote, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if got := ClientIP(req); got != want {
			t.Errorf("ClientIP(%q) = %q, want %q", remote, got, want)
		}
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 10, 24, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("request %d rejected within burst", i+1)
		}
	}
	if rl.Allow("a") {
		t.Error("fourth request allowed, want rejected")
	}
	if !rl.Allow("b") {
		t.Error("other client shares the bucket")
	}

	now = now.Add(20 * time.Second)
	if !rl.Allow("a") {
		t.Error("token not refilled after one interval")
	}
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2025, 10, 24, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(60)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	rl.Allow("b")
	if rl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", rl.Len())
	}

	now = now.Add(10 * time.Minute)
	rl.Allow("c")
	if rl.Len() != 1 {
		t.Errorf("Len() = %d after idle sweep, want 1", rl.Len())
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(1)
	rejected := 0
	handler := rl.Handler(func(w http.ResponseWriter, r *http.Request) {
		rejected++
		w.WriteHeader(http.StatusTooManyRequests)
	})(echoRemoteAddr())

	codes := make([]int, 2)
	for i := range codes {
		req := httptest.NewRequest(http.MethodPost, "/send", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes[i] = rec.Code
		if i == 1 && rec.Header().Get("Retry-After") != "60" {
			t.Errorf("Retry-After = %q, want 60", rec.Header().Get("Retry-After"))
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 429]", codes)
	}
	if rejected != 1 {
		t.Errorf("reject called %d times, want 1", rejected)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(orig) })

	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/send", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, want := range []string{"level=WARN", "path=/send", "status=502", "bytes=8", "ip=203.0.113.9"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}
