package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/hostpin/hostpin/pkg/hosts"
	"github.com/hostpin/hostpin/pkg/log"
	"github.com/hostpin/hostpin/pkg/resolver"
	"github.com/hostpin/hostpin/pkg/types"
)

const (
	// DefaultMetricsHost is the local push collector address
	DefaultMetricsHost = "127.0.0.1"

	// DefaultMetricsPort is the local push collector port
	DefaultMetricsPort = 8093

	// DefaultPostgresPort is the datastore probe port
	DefaultPostgresPort = 5432

	// DefaultRedisPort is the key-value store probe port
	DefaultRedisPort = 6379
)

// monitoredTable is the fixed set of environment variables the daemon keeps
// pinned. Entries whose variable is unset, empty, or holds a literal IP
// address are skipped at load time; a literal address needs no resolution,
// no probing and no hosts entry.
var monitoredTable = []struct {
	env   string
	probe types.ProbeKind
}{
	{"DATABASE_HOST", types.ProbePostgres},
	{"DATABASE_REPLICA_HOST", types.ProbePostgres},
	{"REDIS_HOST", types.ProbeRedis},
	{"REDIS_REPLICA_HOST", types.ProbeRedis},
}

// Postgres holds datastore probe credentials
type Postgres struct {
	User     string
	Password string
	Database string
	Port     uint16
}

// Redis holds key-value store probe credentials
type Redis struct {
	Password string
	Port     uint16
	TLS      bool
}

// Config is the daemon's complete environment-derived configuration
type Config struct {
	// Variables is the monitored set, already filtered
	Variables []types.VariableSpec

	Postgres Postgres
	Redis    Redis

	HostsFile  string
	ResolvConf string

	MetricsHost string
	MetricsPort int

	// DebugAddr enables the /metrics + /healthz listener when non-empty
	DebugAddr string

	LogLevel log.Level
	LogJSON  bool
}

// Load reads and validates the process environment. Invalid values are
// configuration errors: the daemon refuses to start rather than run with
// settings it cannot honor.
func Load() (*Config, error) {
	cfg := &Config{
		HostsFile:   getenv("HOSTS_FILE", hosts.DefaultPath),
		ResolvConf:  getenv("RESOLV_CONF", resolver.DefaultResolvConf),
		MetricsHost: getenv("METRICS_HOST", DefaultMetricsHost),
		DebugAddr:   os.Getenv("DEBUG_ADDR"),
		LogLevel:    log.Level(getenv("LOG_LEVEL", string(log.InfoLevel))),
		LogJSON:     getenvBool("LOG_JSON", true),
	}

	metricsPort, err := getenvPort("METRICS_PORT", DefaultMetricsPort)
	if err != nil {
		return nil, err
	}
	cfg.MetricsPort = int(metricsPort)

	pgPort, err := getenvPort("DATABASE_PORT", DefaultPostgresPort)
	if err != nil {
		return nil, err
	}
	cfg.Postgres = Postgres{
		User:     os.Getenv("DATABASE_USER"),
		Password: os.Getenv("DATABASE_PASSWORD"),
		Database: os.Getenv("DATABASE_NAME"),
		Port:     pgPort,
	}

	redisPort, err := getenvPort("REDIS_PORT", DefaultRedisPort)
	if err != nil {
		return nil, err
	}
	cfg.Redis = Redis{
		Password: os.Getenv("REDIS_PASSWORD"),
		Port:     redisPort,
		TLS:      getenvBool("REDIS_TLS", false),
	}

	for _, entry := range monitoredTable {
		spec, monitored, err := loadVariable(entry.env, entry.probe)
		if err != nil {
			return nil, err
		}
		if monitored {
			cfg.Variables = append(cfg.Variables, spec)
		}
	}

	return cfg, nil
}

// loadVariable builds the spec for one monitored-table entry. The second
// return value is false when the entry is not monitored at all.
func loadVariable(env string, probe types.ProbeKind) (types.VariableSpec, bool, error) {
	value := os.Getenv(env)
	if value == "" {
		return types.VariableSpec{}, false, nil
	}
	if net.ParseIP(value) != nil {
		log.Logger.Info().
			Str("variable", env).
			Str("value", value).
			Msg("literal address, not monitored")
		return types.VariableSpec{}, false, nil
	}

	spec := types.VariableSpec{
		EnvName:     env,
		Hostname:    value,
		SRVName:     os.Getenv(env + "_SRV"),
		PriorityMin: 0,
		PriorityMax: 65535,
		Probe:       probe,
	}

	if spec.SRVMode() {
		ge, err := getenvInt(env+"_SRV_PRIORITY_GE", 0)
		if err != nil {
			return types.VariableSpec{}, false, err
		}
		le, err := getenvInt(env+"_SRV_PRIORITY_LE", 65535)
		if err != nil {
			return types.VariableSpec{}, false, err
		}

		band, err := resolver.NewPriorityBand(ge, le)
		if err != nil {
			return types.VariableSpec{}, false, fmt.Errorf("invalid SRV priority bounds for %s: %w", env, err)
		}
		spec.PriorityMin = band.Min
		spec.PriorityMax = band.Max
	}

	return spec, true, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, v)
	}
	return i, nil
}

func getenvPort(key string, def int) (uint16, error) {
	p, err := getenvInt(key, def)
	if err != nil {
		return 0, err
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %s = %d outside [1, 65535]", key, p)
	}
	return uint16(p), nil
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
