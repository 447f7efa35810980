// Package redis holds the optional shared Redis client backing the rate limiter.
// Without it every instance limits from its own memory.
package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// ErrNotConfigured is returned by Initialize when no URL is set
var ErrNotConfigured = errors.New("redis: UPSTASH_REDIS_URL not configured")

// Config holds Redis connection configuration
type Config struct {
	URL      string // redis://host:port or rediss://host:port for TLS
	Password string // overrides the password in URL
}

// Client returns the shared client, nil if Initialize failed or was not called
func Client() *redis.Client {
	return client
}

// Initialize connects once; later calls return the first result
func Initialize(cfg Config) error {
	clientOnce.Do(func() {
		opts, err := parseOptions(cfg)
		if err != nil {
			clientErr = err
			return
		}

		c := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			clientErr = fmt.Errorf("redis: connection failed: %w", err)
			return
		}
		client = c
	})

	return clientErr
}

func parseOptions(cfg Config) (*redis.Options, error) {
	if cfg.URL == "" {
		return nil, ErrNotConfigured
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	var useTLS bool
	switch parsed.Scheme {
	case "redis":
	case "rediss":
		useTLS = true
	default:
		return nil, fmt.Errorf("redis: unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return nil, errors.New("redis: URL has no host")
	}

	addr := parsed.Host
	if parsed.Port() == "" {
		addr = parsed.Host + ":6379"
	}

	password := cfg.Password
	if password == "" && parsed.User != nil {
		password, _ = parsed.User.Password()
	}

	opts := &redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

// Close closes the connection if one was opened
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck pings the shared client
func HealthCheck(ctx context.Context) error {
	if client == nil {
		return errors.New("redis: client not initialized")
	}
	return client.Ping(ctx).Err()
}
