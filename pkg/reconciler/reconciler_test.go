package reconciler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hostpin/hostpin/pkg/events"
	"github.com/hostpin/hostpin/pkg/health"
	"github.com/hostpin/hostpin/pkg/hosts"
	"github.com/hostpin/hostpin/pkg/recency"
	"github.com/hostpin/hostpin/pkg/types"
)

// scriptedSource returns whatever its fields currently hold
type scriptedSource struct {
	addrs []string
	err   error
}

func (s *scriptedSource) Addresses(ctx context.Context) ([]string, error) {
	return s.addrs, s.err
}

// scriptedProbe answers from a fixed healthy-set
type scriptedProbe struct {
	healthy map[string]bool
}

func (p *scriptedProbe) Check(ctx context.Context, address string) health.Result {
	return health.Result{
		Healthy:   p.healthy[address],
		Message:   "scripted",
		CheckedAt: time.Now(),
	}
}

func (p *scriptedProbe) Kind() types.ProbeKind {
	return types.ProbePostgres
}

func newEntry(env, hostname string, source recency.Source, probe health.Probe) *Entry {
	return &Entry{
		Spec: types.VariableSpec{EnvName: env, Hostname: hostname, Probe: probe.Kind()},
		Gate: health.NewGate(env, recency.NewCache(env, source), probe),
	}
}

func tempHosts(t *testing.T, content string) *hosts.File {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hosts")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to seed hosts file: %v", err)
	}
	return hosts.NewFile(path)
}

func startBroker(t *testing.T) (*events.Broker, events.Subscriber) {
	t.Helper()

	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)
	return broker, broker.Subscribe()
}

// drainEvents collects every event delivered within a short grace period
func drainEvents(sub events.Subscriber) []*events.Event {
	var got []*events.Event
	for {
		select {
		case e := <-sub:
			got = append(got, e)
		case <-time.After(300 * time.Millisecond):
			return got
		}
	}
}

func findEvent(evts []*events.Event, typ events.EventType) *events.Event {
	for _, e := range evts {
		if e.Type == typ {
			return e
		}
	}
	return nil
}

func TestPass_PinsHealthyAddress(t *testing.T) {
	broker, sub := startBroker(t)

	source := &scriptedSource{addrs: []string{"10.0.0.1"}}
	probe := &scriptedProbe{healthy: map[string]bool{"10.0.0.1": true}}
	entry := newEntry("DATABASE_HOST", "db.internal", source, probe)

	f := tempHosts(t, "127.0.0.1 localhost\n")
	r := New([]*Entry{entry}, f, broker)

	r.pass(context.Background())

	addrs, err := f.AddressesFor("db.internal")
	if err != nil {
		t.Fatalf("AddressesFor() error = %v", err)
	}
	if len(addrs) != 1 || addrs[0] != "10.0.0.1" {
		t.Fatalf("hosts mapping = %v, want [10.0.0.1]", addrs)
	}

	evts := drainEvents(sub)
	if e := findEvent(evts, events.EventPassCompleted); e == nil || e.Metadata["result"] != "success" {
		t.Errorf("pass.completed = %+v, want result success", e)
	}
	if e := findEvent(evts, events.EventVariableHealthy); e == nil || e.Metadata["address"] != "10.0.0.1" {
		t.Errorf("variable.healthy = %+v, want address 10.0.0.1", e)
	}
	if e := findEvent(evts, events.EventHostsUpdated); e == nil {
		t.Error("hosts.updated event missing")
	}
	if e := findEvent(evts, events.EventVariableUnhealthy); e != nil {
		t.Errorf("unexpected variable.unhealthy event: %+v", e)
	}
}

// One variable's total failure must not keep another from being resolved,
// probed and written in the same pass.
func TestPass_FailureIsolatedPerVariable(t *testing.T) {
	broker, sub := startBroker(t)

	broken := newEntry("DATABASE_HOST", "db.internal",
		&scriptedSource{err: errors.New("NXDOMAIN")},
		&scriptedProbe{healthy: map[string]bool{}})
	working := newEntry("REDIS_HOST", "cache.internal",
		&scriptedSource{addrs: []string{"10.1.0.1"}},
		&scriptedProbe{healthy: map[string]bool{"10.1.0.1": true}})

	f := tempHosts(t, "127.0.0.1 localhost\n")
	r := New([]*Entry{broken, working}, f, broker)

	r.pass(context.Background())

	addrs, err := f.AddressesFor("cache.internal")
	if err != nil {
		t.Fatalf("AddressesFor() error = %v", err)
	}
	if len(addrs) != 1 || addrs[0] != "10.1.0.1" {
		t.Fatalf("hosts mapping = %v, want [10.1.0.1] despite the other variable failing", addrs)
	}

	evts := drainEvents(sub)
	unhealthy := findEvent(evts, events.EventVariableUnhealthy)
	if unhealthy == nil || unhealthy.Metadata["variable"] != "DATABASE_HOST" {
		t.Errorf("variable.unhealthy = %+v, want variable DATABASE_HOST", unhealthy)
	}
	if e := findEvent(evts, events.EventPassCompleted); e == nil || e.Metadata["result"] != "failure" {
		t.Errorf("pass.completed = %+v, want result failure", e)
	}
}

// Two consecutive passes resolving {1.1.1.1} then {1.1.1.1, 2.2.2.2} with
// the newer address healthy must leave only 2.2.2.2 in the hosts file.
func TestPass_NewestHealthySupersedes(t *testing.T) {
	broker, _ := startBroker(t)

	source := &scriptedSource{addrs: []string{"1.1.1.1"}}
	probe := &scriptedProbe{healthy: map[string]bool{"1.1.1.1": true, "2.2.2.2": true}}
	entry := newEntry("DATABASE_HOST", "db.internal", source, probe)

	f := tempHosts(t, "127.0.0.1 localhost\n")
	r := New([]*Entry{entry}, f, broker)

	r.pass(context.Background())

	addrs, err := f.AddressesFor("db.internal")
	if err != nil {
		t.Fatalf("AddressesFor() error = %v", err)
	}
	if len(addrs) != 1 || addrs[0] != "1.1.1.1" {
		t.Fatalf("hosts mapping after first pass = %v, want [1.1.1.1]", addrs)
	}

	// The name now also returns a second, newer address
	source.addrs = []string{"1.1.1.1", "2.2.2.2"}

	r.pass(context.Background())

	addrs, err = f.AddressesFor("db.internal")
	if err != nil {
		t.Fatalf("AddressesFor() error = %v", err)
	}
	if len(addrs) != 1 || addrs[0] != "2.2.2.2" {
		t.Errorf("hosts mapping after second pass = %v, want [2.2.2.2]", addrs)
	}
}

// A hosts file that cannot be read is a pass-level problem: one anonymous
// failure, no crash, no per-variable blame.
func TestPass_HostsErrorCountsAnonymousFailure(t *testing.T) {
	broker, sub := startBroker(t)

	source := &scriptedSource{addrs: []string{"10.0.0.1"}}
	probe := &scriptedProbe{healthy: map[string]bool{"10.0.0.1": true}}
	entry := newEntry("DATABASE_HOST", "db.internal", source, probe)

	f := hosts.NewFile(filepath.Join(t.TempDir(), "missing", "hosts"))
	r := New([]*Entry{entry}, f, broker)

	r.pass(context.Background())

	evts := drainEvents(sub)
	unhealthy := findEvent(evts, events.EventVariableUnhealthy)
	if unhealthy == nil {
		t.Fatal("variable.unhealthy event missing for hosts I/O failure")
	}
	if _, ok := unhealthy.Metadata["variable"]; ok {
		t.Errorf("anonymous failure carries a variable label: %+v", unhealthy)
	}
	if e := findEvent(evts, events.EventPassCompleted); e == nil || e.Metadata["result"] != "failure" {
		t.Errorf("pass.completed = %+v, want result failure", e)
	}
}

// Once an address has passed, later passes with failing probes keep serving
// it: the pass still succeeds and the hosts file keeps its mapping.
func TestPass_StickyAddressKeepsServing(t *testing.T) {
	broker, sub := startBroker(t)

	source := &scriptedSource{addrs: []string{"10.0.0.1"}}
	probe := &scriptedProbe{healthy: map[string]bool{"10.0.0.1": true}}
	entry := newEntry("REDIS_HOST", "cache.internal", source, probe)

	f := tempHosts(t, "127.0.0.1 localhost\n")
	r := New([]*Entry{entry}, f, broker)

	r.pass(context.Background())
	drainEvents(sub)

	// The backend stops answering probes but the old address must keep
	// serving; the unchanged set must not rewrite the file
	probe.healthy = map[string]bool{}
	before, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("failed to read hosts file: %v", err)
	}

	r.pass(context.Background())

	after, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("failed to read hosts file: %v", err)
	}
	if string(before) != string(after) {
		t.Error("hosts file rewritten although the address set did not change")
	}

	evts := drainEvents(sub)
	if e := findEvent(evts, events.EventPassCompleted); e == nil || e.Metadata["result"] != "success" {
		t.Errorf("pass.completed = %+v, want result success for sticky pass", e)
	}
	if e := findEvent(evts, events.EventVariableUnhealthy); e != nil {
		t.Errorf("unexpected variable.unhealthy event: %+v", e)
	}
}

// A variable that has never been healthy leaves its hosts entries alone.
func TestPass_NeverHealthyLeavesHostsUntouched(t *testing.T) {
	broker, sub := startBroker(t)

	source := &scriptedSource{addrs: []string{"10.0.0.1"}}
	probe := &scriptedProbe{healthy: map[string]bool{}}
	entry := newEntry("DATABASE_HOST", "db.internal", source, probe)

	const seed = "127.0.0.1 localhost\n10.9.9.9 db.internal # placed by an operator\n"
	f := tempHosts(t, seed)
	r := New([]*Entry{entry}, f, broker)

	r.pass(context.Background())

	content, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("failed to read hosts file: %v", err)
	}
	if string(content) != seed {
		t.Errorf("hosts file changed for a never-healthy variable:\n%s", content)
	}

	evts := drainEvents(sub)
	unhealthy := findEvent(evts, events.EventVariableUnhealthy)
	if unhealthy == nil || unhealthy.Metadata["variable"] != "DATABASE_HOST" {
		t.Errorf("variable.unhealthy = %+v, want variable DATABASE_HOST", unhealthy)
	}
}

func TestProcess_OutcomeClassification(t *testing.T) {
	broker, _ := startBroker(t)
	f := tempHosts(t, "127.0.0.1 localhost\n")

	tests := []struct {
		name    string
		source  *scriptedSource
		probe   *scriptedProbe
		outcome types.Outcome
	}{
		{
			name:    "healthy candidate",
			source:  &scriptedSource{addrs: []string{"10.0.0.1"}},
			probe:   &scriptedProbe{healthy: map[string]bool{"10.0.0.1": true}},
			outcome: types.OutcomeSuccess,
		},
		{
			name:    "resolution error with empty cache",
			source:  &scriptedSource{err: errors.New("SERVFAIL")},
			probe:   &scriptedProbe{healthy: map[string]bool{}},
			outcome: types.OutcomeError,
		},
		{
			name:    "candidates resolve but none healthy",
			source:  &scriptedSource{addrs: []string{"10.0.0.1"}},
			probe:   &scriptedProbe{healthy: map[string]bool{}},
			outcome: types.OutcomeNoHealthyAddress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := newEntry("DATABASE_HOST", "db.internal", tt.source, tt.probe)
			r := New([]*Entry{entry}, f, broker)

			outcome, _ := r.process(context.Background(), entry, r.logger)
			if outcome != tt.outcome {
				t.Errorf("process() outcome = %q, want %q", outcome, tt.outcome)
			}
		})
	}
}

func TestStartStop_RunsImmediatePass(t *testing.T) {
	broker, _ := startBroker(t)

	source := &scriptedSource{addrs: []string{"10.0.0.1"}}
	probe := &scriptedProbe{healthy: map[string]bool{"10.0.0.1": true}}
	entry := newEntry("DATABASE_HOST", "db.internal", source, probe)

	f := tempHosts(t, "127.0.0.1 localhost\n")
	r := New([]*Entry{entry}, f, broker)

	r.Start()

	// The initial pass runs without waiting for the first tick
	deadline := time.Now().Add(5 * time.Second)
	for {
		content, err := os.ReadFile(f.Path())
		if err == nil && strings.Contains(string(content), "10.0.0.1 db.internal") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("initial pass did not write the hosts file")
		}
		time.Sleep(10 * time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return")
	}
}
