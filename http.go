package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/config"
	"github.com/olgasafonova/fourdevs-mcp-server/metrics"
)

// httpTransport bundles the HTTP handler with the components that must be
// released on shutdown.
type httpTransport struct {
	handler  http.Handler
	security *SecurityMiddleware
	auth     *JWTAuthenticator
}

func (t *httpTransport) Close() {
	t.security.Close()
	t.auth.Close()
}

// newHTTPTransport routes /mcp to the streamable MCP handler behind auth
// and the security middleware. /health and /metrics stay open.
func newHTTPTransport(server *mcp.Server, cfg *config.Config, auth *JWTAuthenticator, stats *RedisStats, logger *slog.Logger) *httpTransport {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	security := NewSecurityMiddleware(auth.Middleware(mcpHandler), logger, SecurityConfig{
		RateLimit:   cfg.HTTP.RateLimit,
		MaxBodySize: cfg.HTTP.MaxBodySize,
		Stats:       stats,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestMetrics)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","server":"` + ServerName + `","version":"` + ServerVersion + `"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/mcp", security)

	return &httpTransport{handler: r, security: security, auth: auth}
}

// requestMetrics records count and latency of every HTTP request.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// serveHTTP runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully within shutdownTimeout.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP transport listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP transport", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
