package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)
	defer rl.Close()

	if rl == nil {
		t.Fatal("NewRateLimiter returned nil")
	}
	if rl.rate != 10 {
		t.Errorf("rate = %d, want 10", rl.rate)
	}
	if rl.interval != time.Minute {
		t.Errorf("interval = %v, want %v", rl.interval, time.Minute)
	}
	if rl.stopCh == nil {
		t.Error("stopCh should be initialized")
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)
	defer rl.Close()

	ip := "192.168.1.1"

	// First 3 requests should be allowed
	for i := 0; i < 3; i++ {
		if !rl.Allow(ip) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 4th request should be denied
	if rl.Allow(ip) {
		t.Error("4th request should be denied")
	}
}

func TestRateLimiterMultipleIPs(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	defer rl.Close()

	ip1 := "192.168.1.1"
	ip2 := "192.168.1.2"

	// Each IP should have its own bucket
	for i := 0; i < 2; i++ {
		if !rl.Allow(ip1) {
			t.Errorf("Request %d for ip1 should be allowed", i+1)
		}
		if !rl.Allow(ip2) {
			t.Errorf("Request %d for ip2 should be allowed", i+1)
		}
	}

	// Both should now be rate limited
	if rl.Allow(ip1) {
		t.Error("ip1 should be rate limited")
	}
	if rl.Allow(ip2) {
		t.Error("ip2 should be rate limited")
	}
}

func TestRateLimiterClose(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)

	// Close should not panic
	rl.Close()

	// Multiple closes should be safe
	rl.Close()
	rl.Close()
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)
	defer rl.Close()

	ip := "192.168.1.1"

	// First request allowed
	if !rl.Allow(ip) {
		t.Error("First request should be allowed")
	}

	// Immediate second should be denied
	if rl.Allow(ip) {
		t.Error("Immediate second request should be denied")
	}

	// Wait for refill
	time.Sleep(15 * time.Millisecond)

	// Should be allowed again
	if !rl.Allow(ip) {
		t.Error("Request after refill should be allowed")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Second)
	defer rl.Close()

	rl.Allow("10.0.0.1")
	rl.cleanup(time.Now().Add(2 * rl.idleTTL))

	rl.mu.Lock()
	remaining := len(rl.clients)
	rl.mu.Unlock()
	if remaining != 0 {
		t.Errorf("expected idle clients to be evicted, %d remain", remaining)
	}
}

func TestRecoverPanic(t *testing.T) {
	// This test verifies recoverPanic properly catches panics
	logger := quietLogger()

	// Simulate panic recovery
	func() {
		defer recoverPanic(logger, "test operation")
		panic("test panic")
	}()

	// If we get here, the panic was recovered
}

// Mock handler for testing
type mockHandler struct {
	called bool
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	w.WriteHeader(http.StatusOK)
}

func TestSecurityMiddlewareBasic(t *testing.T) {
	// Test basic middleware functionality
	handler := &mockHandler{}
	logger := quietLogger()
	config := SecurityConfig{
		MaxBodySize: 1000,
	}

	sm := NewSecurityMiddleware(handler, logger, config)

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	sm.ServeHTTP(w, req)

	if !handler.called {
		t.Error("Handler should have been called")
	}
}

func TestSecurityMiddlewareWithRateLimit(t *testing.T) {
	handler := &mockHandler{}
	logger := quietLogger()
	config := SecurityConfig{
		RateLimit:   2, // 2 requests per minute
		MaxBodySize: 1000,
	}

	sm := NewSecurityMiddleware(handler, logger, config)

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"

	// First two requests should succeed
	for i := 0; i < 2; i++ {
		handler.called = false
		w := httptest.NewRecorder()
		sm.ServeHTTP(w, req)
		if !handler.called {
			t.Errorf("Request %d should have been allowed", i+1)
		}
	}

	// Third request should be rate limited
	handler.called = false
	w := httptest.NewRecorder()
	sm.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", w.Code)
	}
}

func TestSecurityMiddlewareHeadersAndBodyLimit(t *testing.T) {
	var readErr error
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{MaxBodySize: 8})
	defer sm.Close()

	req := httptest.NewRequest("POST", "/mcp", strings.NewReader("this body is too long"))
	w := httptest.NewRecorder()
	sm.ServeHTTP(w, req)

	if readErr == nil {
		t.Error("expected body read to fail past MaxBodySize")
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"bearer token", "token", false},
		{"", "", true},
		{"Basic dXNlcg==", "", true},
		{"Bearer", "", true},
	}

	for _, tt := range tests {
		got, err := extractBearerToken(tt.header)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractBearerToken(%q) error = %v, wantErr %v", tt.header, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestJWTAuthenticatorDisabledPassesThrough(t *testing.T) {
	auth, err := NewJWTAuthenticator(config.AuthSettings{Enabled: false}, quietLogger())
	if err != nil {
		t.Fatalf("NewJWTAuthenticator: %v", err)
	}
	defer auth.Close()

	handler := &mockHandler{}
	w := httptest.NewRecorder()
	auth.Middleware(handler).ServeHTTP(w, httptest.NewRequest("POST", "/mcp", nil))

	if !handler.called {
		t.Error("disabled auth should not block requests")
	}
}

func TestJWTAuthenticatorRejectsRequests(t *testing.T) {
	auth := newAuthenticator(config.AuthSettings{Enabled: true, BypassPaths: []string{"/health"}}, quietLogger())

	tests := []struct {
		name       string
		path       string
		header     string
		wantCalled bool
		wantStatus int
	}{
		{"missing token", "/mcp", "", false, http.StatusUnauthorized},
		{"malformed token", "/mcp", "Bearer not-a-jwt", false, http.StatusUnauthorized},
		{"bypass path", "/health", "", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &mockHandler{}
			req := httptest.NewRequest("POST", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			auth.Middleware(handler).ServeHTTP(w, req)

			if handler.called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", handler.called, tt.wantCalled)
			}
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRedisStatsDisabled(t *testing.T) {
	stats, err := NewRedisStats(context.Background(), config.RedisSettings{}, quietLogger())
	if err != nil {
		t.Fatalf("NewRedisStats: %v", err)
	}
	if stats != nil {
		t.Fatal("expected nil stats without an address")
	}

	// A nil store must be usable
	stats.Record(context.Background(), true, "POST", "/mcp", time.Now())
	if err := stats.Close(); err != nil {
		t.Errorf("Close on nil stats: %v", err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(config.NewViper(ServerVersion), "")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestHTTPTransportRoutes(t *testing.T) {
	cfg := testConfig(t)
	logger := quietLogger()

	auth, err := NewJWTAuthenticator(cfg.Auth, logger)
	if err != nil {
		t.Fatalf("NewJWTAuthenticator: %v", err)
	}
	transport := newHTTPTransport(newServer(cfg, logger), cfg, auth, nil, logger)
	defer transport.Close()

	srv := httptest.NewServer(transport.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/health status = %d", resp.StatusCode)
	}
	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["server"] != ServerName {
		t.Errorf("unexpected health body: %v", health)
	}

	metricsResp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(metricsResp.Body)
	metricsResp.Body.Close()
	if !strings.Contains(string(body), "fourdevs_mcp_http_requests_total") {
		t.Error("metrics endpoint should expose HTTP request counters")
	}
}

func TestNewRootCmdFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "endpoint", "timeout", "http", "log-level"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing --%s flag", name)
		}
	}
}

func TestTransportName(t *testing.T) {
	cfg := testConfig(t)
	if transportName(cfg) != "stdio" {
		t.Errorf("default transport should be stdio")
	}
	cfg.HTTP.Addr = ":8080"
	if transportName(cfg) != "http" {
		t.Errorf("transport with an address should be http")
	}
}
