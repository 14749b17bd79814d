package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 kB"},
		{1536, "1.5 kB"},
		{2_500_000, "2.5 MB"},
	}

	for _, tt := range tests {
		if got := humanReadableSize(tt.bytes); got != tt.want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote", "10.0.0.2:5000", nil, "10.0.0.2:5000"},
		{"cloudflare", "10.0.0.2:5000", map[string]string{"CF-Connecting-IP": "203.0.113.7"}, "203.0.113.7:5000"},
		{"real ip", "10.0.0.2:5000", map[string]string{"X-Real-IP": "203.0.113.8"}, "203.0.113.8:5000"},
		{"garbage header", "10.0.0.2:5000", map[string]string{"X-Real-IP": "nope"}, "10.0.0.2:5000"},
		{"ipv6", "[2001:db8::1]:5000", nil, "[2001:db8::1]:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			if got := realIP(r); got != tt.want {
				t.Errorf("realIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScoreboardServerRoutes(t *testing.T) {
	cfg := validConfig()
	cfg.prefix = "/neardle/"
	cfg.profile = true

	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() = %v", err)
	}

	errs := make(chan error, 8)
	srv := httptest.NewServer(newScoreboardServer(cfg, newHub(nil, 0), errs).Handler)
	defer srv.Close()

	tests := []struct {
		path string
		want string
	}{
		{"/neardle/healthz", "Ok\n"},
		{"/neardle/version", "neardle v" + releaseVersion + "\n"},
		{"/neardle/robots.txt", "Disallow: /"},
		{"/neardle/debug/pprof/cmdline", ""},
	}

	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d", tt.path, resp.StatusCode)
		}
		if !strings.Contains(string(body), tt.want) {
			t.Errorf("GET %s = %q, want %q", tt.path, body, tt.want)
		}
	}
}

func TestScoreboardURL(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "http://192.0.2.10:9090/"},
		{"/neardle", "http://192.0.2.10:9090/neardle/"},
		{"/board/", "http://192.0.2.10:9090/board/"},
	}

	for _, tt := range tests {
		cfg := validConfig()
		cfg.bind = "192.0.2.10"
		cfg.port = 9090
		cfg.prefix = tt.prefix

		if err := cfg.validate(); err != nil {
			t.Fatalf("validate() = %v", err)
		}

		if got := scoreboardURL(cfg); got != tt.want {
			t.Errorf("scoreboardURL(%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestScoreboardServerLeavesConfigUntouched(t *testing.T) {
	cfg := validConfig()
	cfg.prefix = "/board"

	_ = newScoreboardServer(cfg, newHub(nil, 0), make(chan error, 1))

	if cfg.prefix != "/board" {
		t.Errorf("prefix = %q after building server", cfg.prefix)
	}
}
