package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hostpin/hostpin/pkg/config"
	"github.com/hostpin/hostpin/pkg/events"
	"github.com/hostpin/hostpin/pkg/health"
	"github.com/hostpin/hostpin/pkg/hosts"
	"github.com/hostpin/hostpin/pkg/log"
	"github.com/hostpin/hostpin/pkg/metrics"
	"github.com/hostpin/hostpin/pkg/recency"
	"github.com/hostpin/hostpin/pkg/reconciler"
	"github.com/hostpin/hostpin/pkg/resolver"
	"github.com/hostpin/hostpin/pkg/types"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hostpin",
	Short: "hostpin - pins healthy backend addresses into the hosts file",
	Long: `hostpin keeps the system hosts file populated with validated addresses
for critical backend services whose DNS answers are transient.

It resolves the monitored names itself (plain A/AAAA or SRV with priority
filtering), health-checks every candidate with the backend's own protocol,
and pins only a healthy, newest-seen address. Configuration is entirely
environment driven; the process runs forever under an external supervisor.`,
	Version: Version,
	RunE:    run,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"hostpin version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hostpin version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
	},
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log.Init(log.Config{
		Level:      cfg.LogLevel,
		JSONOutput: cfg.LogJSON,
	})
	logger := log.WithComponent("main")

	if len(cfg.Variables) == 0 {
		logger.Warn().Msg("no monitored variables configured, nothing to pin")
	}

	res, err := resolver.NewResolver(cfg.ResolvConf)
	if err != nil {
		return err
	}

	broker := events.NewBroker()
	broker.Start()

	reporter := metrics.NewReporter(cfg.MetricsHost, cfg.MetricsPort)
	reporter.Start(broker)

	var debug *metrics.DebugServer
	if cfg.DebugAddr != "" {
		debug = metrics.NewDebugServer(cfg.DebugAddr)
		debug.Start()
	}

	rec := reconciler.New(buildEntries(cfg, res), hosts.NewFile(cfg.HostsFile), broker)
	rec.Start()

	logger.Info().
		Str("version", Version).
		Int("variables", len(cfg.Variables)).
		Str("hosts_file", cfg.HostsFile).
		Str("collector", fmt.Sprintf("%s:%d", cfg.MetricsHost, cfg.MetricsPort)).
		Msg("hostpin started")

	// Run until the supervisor asks us to stop
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutting down")

	rec.Stop()
	reporter.Stop()
	broker.Stop()
	if debug != nil {
		debug.Stop()
	}
	return nil
}

// buildEntries wires one recency cache and health gate per monitored
// variable, choosing the address source and probe from its spec
func buildEntries(cfg *config.Config, res *resolver.Resolver) []*reconciler.Entry {
	entries := make([]*reconciler.Entry, 0, len(cfg.Variables))
	for _, spec := range cfg.Variables {
		var source recency.Source
		if spec.SRVMode() {
			band := resolver.PriorityBand{Min: spec.PriorityMin, Max: spec.PriorityMax}
			source = res.Service(spec.SRVName, band)
		} else {
			source = res.Host(spec.Hostname)
		}

		var probe health.Probe
		switch spec.Probe {
		case types.ProbeRedis:
			probe = health.NewRedisProbe(cfg.Redis.Password, cfg.Redis.Port, cfg.Redis.TLS)
		default:
			probe = health.NewPostgresProbe(cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.Port)
		}

		entries = append(entries, &reconciler.Entry{
			Spec: spec,
			Gate: health.NewGate(spec.EnvName, recency.NewCache(spec.EnvName, source), probe),
		})
	}
	return entries
}
