package reconciler

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hostpin/hostpin/pkg/events"
	"github.com/hostpin/hostpin/pkg/health"
	"github.com/hostpin/hostpin/pkg/hosts"
	"github.com/hostpin/hostpin/pkg/log"
	"github.com/hostpin/hostpin/pkg/metrics"
	"github.com/hostpin/hostpin/pkg/types"
)

// Interval is the fixed time between reconciliation passes
const Interval = 30 * time.Second

// Entry is one monitored variable together with its owned resolution state.
// Entries are built once at startup and processed strictly in table order on
// every pass.
type Entry struct {
	Spec types.VariableSpec
	Gate *health.Gate
}

// Reconciler drives the daemon. Each pass selects the best address for every
// monitored variable, reconciles the hosts file once, and reports the
// accumulated outcome. Failures are isolated: one variable's total failure
// never keeps another from being resolved, probed and written in the same
// pass, and no pass-level error ever stops the loop.
type Reconciler struct {
	entries []*Entry
	hosts   *hosts.File
	broker  *events.Broker
	stopCh  chan struct{}
	doneCh  chan struct{}
	logger  zerolog.Logger
}

// New creates a reconciler over the monitored entries
func New(entries []*Entry, hostsFile *hosts.File, broker *events.Broker) *Reconciler {
	return &Reconciler{
		entries: entries,
		hosts:   hostsFile,
		broker:  broker,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
		logger:  log.WithComponent("reconciler"),
	}
}

// Start begins the pass loop
func (r *Reconciler) Start() {
	go r.run()
}

// Stop stops the loop and waits for an in-flight pass to finish
func (r *Reconciler) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// run executes passes on the fixed interval. The first pass runs immediately
// so a fresh deployment converges without waiting a full tick.
func (r *Reconciler) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(Interval)
	defer ticker.Stop()

	r.pass(context.Background())

	for {
		select {
		case <-ticker.C:
			r.pass(context.Background())
		case <-r.stopCh:
			return
		}
	}
}

// pass processes every monitored variable in order, reconciles the hosts
// file, and reports success or the accumulated per-name failures
func (r *Reconciler) pass(ctx context.Context) {
	start := time.Now()
	logger := r.logger.With().Str("pass_id", uuid.New().String()).Logger()

	updates := make(map[string][]string)
	failures := make(map[string]int)

	for _, entry := range r.entries {
		outcome, address := r.process(ctx, entry, logger)

		if outcome == types.OutcomeSuccess {
			updates[entry.Spec.Hostname] = []string{address}
			metrics.HealthyAddress.WithLabelValues(entry.Spec.EnvName).Set(1)
			continue
		}

		failures[entry.Spec.EnvName]++
		metrics.HealthyAddress.WithLabelValues(entry.Spec.EnvName).Set(0)
		metrics.VariableFailures.WithLabelValues(entry.Spec.EnvName, string(outcome)).Inc()
	}

	written, err := r.hosts.Reconcile(updates)
	if err != nil {
		// Top-level failure: logged and counted anonymously, never fatal
		logger.Error().Err(err).Msg("hosts reconciliation failed")
		failures[""]++
	}
	if written {
		metrics.HostsRewrites.Inc()
		r.broker.Publish(events.New(events.EventHostsUpdated, "hosts file rewritten", map[string]string{
			"path": r.hosts.Path(),
		}))
	}

	r.report(failures)

	result := "success"
	if len(failures) > 0 {
		result = "failure"
	}
	r.broker.Publish(events.New(events.EventPassCompleted, "pass completed", map[string]string{
		"result": result,
	}))

	duration := time.Since(start)
	metrics.PassesTotal.Inc()
	metrics.PassDuration.Observe(duration.Seconds())

	logger.Info().
		Int("variables", len(r.entries)).
		Int("pinned", len(updates)).
		Int("failed", len(failures)).
		Bool("hosts_written", written).
		Dur("duration", duration).
		Msg("pass completed")
}

// process runs the resolve-and-probe step for one variable
func (r *Reconciler) process(ctx context.Context, entry *Entry, logger zerolog.Logger) (types.Outcome, string) {
	previous := entry.Gate.Last()
	sel := entry.Gate.FirstHealthy(ctx)

	if sel.Address != "" {
		if sel.Fresh && sel.Address != previous {
			r.broker.Publish(events.New(events.EventVariableHealthy, "healthy address selected", map[string]string{
				"variable": entry.Spec.EnvName,
				"address":  sel.Address,
			}))
		}
		return types.OutcomeSuccess, sel.Address
	}

	if sel.ResolveErr != nil {
		logger.Warn().
			Err(sel.ResolveErr).
			Str("variable", entry.Spec.EnvName).
			Msg("resolution failed and no address has ever been healthy")
		return types.OutcomeError, ""
	}

	logger.Warn().
		Str("variable", entry.Spec.EnvName).
		Msg("no healthy address among candidates")
	return types.OutcomeNoHealthyAddress, ""
}

// report publishes one unhealthy event per failed name. An empty name is the
// anonymous pass-level failure and carries no variable label.
func (r *Reconciler) report(failures map[string]int) {
	for name, count := range failures {
		metadata := map[string]string{"count": strconv.Itoa(count)}
		if name != "" {
			metadata["variable"] = name
		}
		r.broker.Publish(events.New(events.EventVariableUnhealthy, "no healthy address this pass", metadata))
	}
}
