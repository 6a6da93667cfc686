package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/config"
	"github.com/olgasafonova/fourdevs-mcp-server/metrics"
)

type tokenContextKey struct{}

// JWTAuthenticator validates bearer tokens on the HTTP transport against a
// remote JWKS. When auth is disabled its middleware is a no-op.
type JWTAuthenticator struct {
	cfg        config.AuthSettings
	logger     *slog.Logger
	keyfunc    jwt.Keyfunc
	cancel     context.CancelFunc
	bypassPath map[string]struct{}
}

// NewJWTAuthenticator fetches the JWKS and keeps it refreshed in the
// background until Close.
func NewJWTAuthenticator(cfg config.AuthSettings, logger *slog.Logger) (*JWTAuthenticator, error) {
	auth := newAuthenticator(cfg, logger)
	if !cfg.Enabled {
		return auth, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	override := keyfunc.Override{
		RefreshInterval: 6 * time.Hour,
		RefreshErrorHandlerFunc: func(url string) func(context.Context, error) {
			return func(_ context.Context, err error) {
				logger.Error("Failed to refresh JWKS", "url", url, "error", err)
			}
		},
		HTTPTimeout: 10 * time.Second,
	}

	jwks, err := keyfunc.NewDefaultOverrideCtx(ctx, []string{cfg.JWKSetURI}, override)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("loading JWKS from %s: %w", cfg.JWKSetURI, err)
	}
	auth.keyfunc = jwks.Keyfunc
	auth.cancel = cancel
	return auth, nil
}

func newAuthenticator(cfg config.AuthSettings, logger *slog.Logger) *JWTAuthenticator {
	auth := &JWTAuthenticator{
		cfg:        cfg,
		logger:     logger,
		bypassPath: make(map[string]struct{}),
	}
	for _, path := range cfg.BypassPaths {
		auth.bypassPath[path] = struct{}{}
	}
	return auth
}

// Middleware rejects requests without a valid bearer token.
func (a *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	if !a.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := a.bypassPath[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		tokenString, err := extractBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			metrics.AuthFailures.WithLabelValues("missing_token").Inc()
			writeJSONError(w, http.StatusUnauthorized, err.Error())
			return
		}

		opts := []jwt.ParserOption{
			jwt.WithLeeway(a.cfg.ClockSkew),
			jwt.WithValidMethods([]string{
				jwt.SigningMethodRS256.Alg(),
				jwt.SigningMethodRS384.Alg(),
				jwt.SigningMethodRS512.Alg(),
				jwt.SigningMethodPS256.Alg(),
				jwt.SigningMethodES256.Alg(),
			}),
		}
		if a.cfg.IssuerURI != "" {
			opts = append(opts, jwt.WithIssuer(a.cfg.IssuerURI))
		}

		token, err := jwt.Parse(tokenString, a.keyfunc, opts...)
		if err != nil || !token.Valid {
			metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
			a.logger.Warn("Token validation failed", "error", err, "path", r.URL.Path)
			writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenContextKey{}, token)))
	})
}

// Close stops the background JWKS refresh.
func (a *JWTAuthenticator) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid Authorization header format")
	}
	return parts[1], nil
}
