package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hostpin/hostpin/pkg/types"
)

// RedisProbe validates a candidate address with a redis PING roundtrip. The
// host is always the candidate under test; password, port and the TLS flag
// come from configuration.
type RedisProbe struct {
	Password string
	Port     uint16
	TLS      bool
	Timeout  time.Duration
}

// NewRedisProbe creates a redis probe with the default timeout
func NewRedisProbe(password string, port uint16, useTLS bool) *RedisProbe {
	return &RedisProbe{
		Password: password,
		Port:     port,
		TLS:      useTLS,
		Timeout:  DefaultProbeTimeout,
	}
}

// Check dials the candidate and performs one PING. The client is closed on
// every exit path.
func (p *RedisProbe) Check(ctx context.Context, address string) Result {
	start := time.Now()
	addr := net.JoinHostPort(address, strconv.Itoa(int(p.Port)))

	opts := &redis.Options{
		Addr:         addr,
		Password:     p.Password,
		DialTimeout:  p.Timeout,
		ReadTimeout:  p.Timeout,
		WriteTimeout: p.Timeout,
		PoolSize:     1,
	}
	if p.TLS {
		// Candidates are raw addresses no certificate names
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	client := redis.NewClient(opts)
	defer func() {
		_ = client.Close()
	}()

	pingCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("ping failed: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("redis PING to %s succeeded", addr),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Kind returns the probe protocol
func (p *RedisProbe) Kind() types.ProbeKind {
	return types.ProbeRedis
}
