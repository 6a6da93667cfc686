// Package generators implements the six 4Devs tool adapters: each validates
// its parameters, optionally resolves a city name, makes one provider call
// and reshapes the reply.
package generators

import (
	"log/slog"
	"time"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/fourdevs"
)

// Service holds what the adapters share. It carries no per-call state.
type Service struct {
	sender   fourdevs.Sender
	resolver *fourdevs.Resolver
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Service
type Option func(*Service)

// WithClock overrides the time source used for generated_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the adapter service on top of sender.
func NewService(sender fourdevs.Sender, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		sender:   sender,
		resolver: fourdevs.NewResolver(sender, logger),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
