package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/olgasafonova/fourdevs-mcp-server/internal/config"
)

// RateLimiter is a per-IP token bucket: each client may make rate requests
// per interval, with bursts up to rate.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	rate     int
	interval time.Duration
	idleTTL  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter and starts its idle-client janitor.
func NewRateLimiter(requests int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients:  make(map[string]*clientLimiter),
		rate:     requests,
		interval: interval,
		idleTTL:  max(3*interval, time.Minute),
		stopCh:   make(chan struct{}),
	}
	go rl.janitor(max(interval, time.Second))
	return rl
}

// Allow reports whether ip may make a request now, consuming a token if so.
func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	c, ok := rl.clients[ip]
	if !ok {
		every := rl.interval / time.Duration(max(rl.rate, 1))
		c = &clientLimiter{lim: rate.NewLimiter(rate.Every(every), rl.rate)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	rl.mu.Unlock()

	return c.lim.AllowN(now, 1)
}

// Close stops the janitor. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) janitor(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-t.C:
			rl.cleanup(time.Now())
		}
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-rl.idleTTL)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// RedisStats counts rate-limit decisions in Redis hashes: a cumulative
// prefix:total and per-minute prefix:minute:YYYYMMDDHHMM buckets. A nil
// *RedisStats records nothing.
type RedisStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisStats connects to Redis and verifies the connection. It returns
// nil, nil when no address is configured.
func NewRedisStats(ctx context.Context, cfg config.RedisSettings, logger *slog.Logger) (*RedisStats, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStats{
		rdb:    rdb,
		prefix: strings.Trim(cfg.Prefix, ":"),
		ttl:    24 * time.Hour,
		logger: logger,
	}, nil
}

// Record counts one decision. Errors are logged, never returned to callers.
func (s *RedisStats) Record(ctx context.Context, allowed bool, method, path string, at time.Time) {
	if s == nil || s.rdb == nil {
		return
	}

	field := "denied"
	if allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
	pipe.HIncrBy(ctx, bucketKey, field, 1)
	pipe.Expire(ctx, bucketKey, s.ttl)

	if route := strings.TrimSpace(method + " " + path); route != "" {
		pipe.HIncrBy(ctx, s.prefix+":route", route+":"+field, 1)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn("Failed to record rate limit stats", "error", err)
	}
}

// Close releases the Redis connection pool.
func (s *RedisStats) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
