package health

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hostpin/hostpin/pkg/types"
)

// DefaultProbeTimeout bounds connection establishment and the liveness
// roundtrip of a single probe
const DefaultProbeTimeout = 2 * time.Second

// PostgresProbe validates a candidate address by opening a postgres
// connection with the configured credentials and performing an empty-query
// roundtrip. The host is always the candidate under test; everything else
// comes from configuration.
type PostgresProbe struct {
	User     string
	Password string
	Database string
	Port     uint16
	Timeout  time.Duration
}

// NewPostgresProbe creates a postgres probe with the default timeout
func NewPostgresProbe(user, password, database string, port uint16) *PostgresProbe {
	return &PostgresProbe{
		User:     user,
		Password: password,
		Database: database,
		Port:     port,
		Timeout:  DefaultProbeTimeout,
	}
}

// Check connects to the candidate and runs one ping roundtrip. The
// connection is closed on every exit path.
func (p *PostgresProbe) Check(ctx context.Context, address string) Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	// Credentials are set on the parsed config rather than interpolated
	// into the DSN, so they never need escaping
	cfg, err := pgx.ParseConfig(fmt.Sprintf("host=%s port=%d", address, p.Port))
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("invalid connection config: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	cfg.User = p.User
	cfg.Password = p.Password
	cfg.Database = p.Database
	cfg.ConnectTimeout = p.Timeout

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("connect failed: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}
	defer func() {
		_ = conn.Close(ctx)
	}()

	if err := conn.Ping(ctx); err != nil {
		return Result{
			Healthy:   false,
			Message:   fmt.Sprintf("ping failed: %v", err),
			CheckedAt: start,
			Duration:  time.Since(start),
		}
	}

	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("postgres roundtrip to %s:%d succeeded", address, p.Port),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

// Kind returns the probe protocol
func (p *PostgresProbe) Kind() types.ProbeKind {
	return types.ProbePostgres
}
