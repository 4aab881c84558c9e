package integration

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/hostpin/hostpin/pkg/events"
	"github.com/hostpin/hostpin/pkg/health"
	"github.com/hostpin/hostpin/pkg/hosts"
	"github.com/hostpin/hostpin/pkg/metrics"
	"github.com/hostpin/hostpin/pkg/recency"
	"github.com/hostpin/hostpin/pkg/reconciler"
	"github.com/hostpin/hostpin/pkg/resolver"
	"github.com/hostpin/hostpin/pkg/types"
)

// zone answers A, AAAA and SRV queries from a static record table
type zone struct {
	mu      sync.Mutex
	records map[string][]dns.RR
}

func (z *zone) ServeDNS(w dns.ResponseWriter, req *dns.Msg) {
	z.mu.Lock()
	defer z.mu.Unlock()

	m := new(dns.Msg)
	m.SetReply(req)

	q := req.Question[0]
	key := q.Name + "|" + dns.TypeToString[q.Qtype]
	answers, ok := z.records[key]
	if !ok {
		m.SetRcode(req, dns.RcodeNameError)
	} else {
		m.Answer = answers
	}
	_ = w.WriteMsg(m)
}

func startNameserver(t *testing.T, z *zone) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	server := &dns.Server{PacketConn: pc, Handler: z}
	go func() {
		_ = server.ActivateAndServe()
	}()
	t.Cleanup(func() {
		_ = server.Shutdown()
	})

	return pc.LocalAddr().String()
}

func aRecord(name, ip string) dns.RR {
	return &dns.A{
		Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 30},
		A:   net.ParseIP(ip),
	}
}

func srvRecord(name, target string, priority uint16) dns.RR {
	return &dns.SRV{
		Hdr:      dns.RR_Header{Name: name, Rrtype: dns.TypeSRV, Class: dns.ClassINET, Ttl: 30},
		Priority: priority,
		Weight:   5,
		Port:     5432,
		Target:   target,
	}
}

// stubProbe stands in for the postgres/redis probes so the full loop runs
// without live backends
type stubProbe struct {
	mu      sync.Mutex
	healthy map[string]bool
	kind    types.ProbeKind
}

func (p *stubProbe) Check(ctx context.Context, address string) health.Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return health.Result{
		Healthy:   p.healthy[address],
		Message:   "stub",
		CheckedAt: time.Now(),
	}
}

func (p *stubProbe) Kind() types.ProbeKind {
	return p.kind
}

// collector captures every counter the reporter pushes
func startCollector(t *testing.T) (*metrics.Reporter, chan metrics.Counter) {
	t.Helper()

	received := make(chan metrics.Counter, 16)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var c metrics.Counter
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			t.Errorf("collector failed to decode body: %v", err)
		}
		received <- c
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("failed to parse collector URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("failed to parse collector port: %v", err)
	}
	return metrics.NewReporter(u.Hostname(), port), received
}

func waitForHosts(t *testing.T, path, want string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		content, err := os.ReadFile(path)
		if err == nil && strings.Contains(string(content), want) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("hosts file never contained %q:\n%s", want, content)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// TestDaemon_FullPass wires a local nameserver, stub probes, a temp hosts
// file and a push collector through the real resolver, cache, gate and
// reconciler, and verifies the initial pass pins the healthy address and
// reports success.
func TestDaemon_FullPass(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	z := &zone{records: map[string][]dns.RR{
		"db.internal.|A":       {aRecord("db.internal.", "10.0.0.1")},
		"db.internal.|AAAA":    {},
		"cache.internal.|A":    {aRecord("cache.internal.", "10.1.0.1")},
		"cache.internal.|AAAA": {},
	}}
	ns := startNameserver(t, z)
	res := resolver.NewStaticResolver([]string{ns})

	dbProbe := &stubProbe{healthy: map[string]bool{"10.0.0.1": true}, kind: types.ProbePostgres}
	cacheProbe := &stubProbe{healthy: map[string]bool{"10.1.0.1": true}, kind: types.ProbeRedis}

	entries := []*reconciler.Entry{
		{
			Spec: types.VariableSpec{EnvName: "DATABASE_HOST", Hostname: "db.internal", Probe: types.ProbePostgres},
			Gate: health.NewGate("DATABASE_HOST", recency.NewCache("DATABASE_HOST", res.Host("db.internal")), dbProbe),
		},
		{
			Spec: types.VariableSpec{EnvName: "REDIS_HOST", Hostname: "cache.internal", Probe: types.ProbeRedis},
			Gate: health.NewGate("REDIS_HOST", recency.NewCache("REDIS_HOST", res.Host("cache.internal")), cacheProbe),
		},
	}

	hostsPath := filepath.Join(t.TempDir(), "hosts")
	if err := os.WriteFile(hostsPath, []byte("127.0.0.1 localhost\n"), 0644); err != nil {
		t.Fatalf("failed to seed hosts file: %v", err)
	}

	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)

	reporter, received := startCollector(t)
	reporter.Start(broker)
	t.Cleanup(reporter.Stop)

	r := reconciler.New(entries, hosts.NewFile(hostsPath), broker)
	r.Start()
	t.Cleanup(r.Stop)

	waitForHosts(t, hostsPath, "10.0.0.1 db.internal")
	waitForHosts(t, hostsPath, "10.1.0.1 cache.internal")

	content, err := os.ReadFile(hostsPath)
	if err != nil {
		t.Fatalf("failed to read hosts file: %v", err)
	}
	if !strings.HasPrefix(string(content), "127.0.0.1 localhost\n") {
		t.Errorf("pre-existing line disturbed:\n%s", content)
	}

	select {
	case c := <-received:
		if c.Name != metrics.SuccessCounter {
			t.Errorf("first push = %q, want %q", c.Name, metrics.SuccessCounter)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no counter arrived at the collector")
	}
}

// TestDaemon_SRVPriorityFlow runs a pass over an SRV-mode variable: only
// the in-band target's address may be pinned.
func TestDaemon_SRVPriorityFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	z := &zone{records: map[string][]dns.RR{
		"_postgres._tcp.internal.|SRV": {
			srvRecord("_postgres._tcp.internal.", "a.internal.", 10),
			srvRecord("_postgres._tcp.internal.", "b.internal.", 90),
		},
		"a.internal.|A":    {aRecord("a.internal.", "10.0.0.1")},
		"a.internal.|AAAA": {},
		"b.internal.|A":    {aRecord("b.internal.", "10.0.0.2")},
		"b.internal.|AAAA": {},
	}}
	ns := startNameserver(t, z)
	res := resolver.NewStaticResolver([]string{ns})

	// Both targets' addresses would pass the probe; the band must keep
	// the high-priority one out before probing ever happens
	probe := &stubProbe{healthy: map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, kind: types.ProbePostgres}

	band := resolver.PriorityBand{Min: 0, Max: 50}
	entry := &reconciler.Entry{
		Spec: types.VariableSpec{
			EnvName:     "DATABASE_HOST",
			Hostname:    "db.internal",
			SRVName:     "_postgres._tcp.internal",
			PriorityMin: band.Min,
			PriorityMax: band.Max,
			Probe:       types.ProbePostgres,
		},
		Gate: health.NewGate("DATABASE_HOST",
			recency.NewCache("DATABASE_HOST", res.Service("_postgres._tcp.internal", band)), probe),
	}

	hostsPath := filepath.Join(t.TempDir(), "hosts")
	if err := os.WriteFile(hostsPath, []byte("127.0.0.1 localhost\n"), 0644); err != nil {
		t.Fatalf("failed to seed hosts file: %v", err)
	}

	broker := events.NewBroker()
	broker.Start()
	t.Cleanup(broker.Stop)

	r := reconciler.New([]*reconciler.Entry{entry}, hosts.NewFile(hostsPath), broker)
	r.Start()
	t.Cleanup(r.Stop)

	waitForHosts(t, hostsPath, "10.0.0.1 db.internal")

	content, err := os.ReadFile(hostsPath)
	if err != nil {
		t.Fatalf("failed to read hosts file: %v", err)
	}
	if strings.Contains(string(content), "10.0.0.2") {
		t.Errorf("out-of-band target's address pinned:\n%s", content)
	}
}
