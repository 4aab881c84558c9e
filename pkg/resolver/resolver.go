package resolver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"

	"github.com/hostpin/hostpin/pkg/log"
)

const (
	// QueryTimeout bounds every single DNS exchange
	QueryTimeout = 2 * time.Second

	// DefaultResolvConf is where the nameserver list is read from
	DefaultResolvConf = "/etc/resolv.conf"
)

// Resolver issues A, AAAA and SRV queries against the system's configured
// nameservers. It performs no caching and no retries; transient failures are
// absorbed upstream by the recency cache.
type Resolver struct {
	servers []string // nameserver host:port entries, tried in order
	client  *dns.Client
	logger  zerolog.Logger
}

// NewResolver reads the nameserver list from the resolv.conf at path
func NewResolver(path string) (*Resolver, error) {
	cfg, err := dns.ClientConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resolver config %s: %w", path, err)
	}
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("no nameservers configured in %s", path)
	}

	servers := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		servers = append(servers, net.JoinHostPort(s, cfg.Port))
	}
	return NewStaticResolver(servers), nil
}

// NewStaticResolver uses a fixed nameserver list (host:port entries)
func NewStaticResolver(servers []string) *Resolver {
	return &Resolver{
		servers: servers,
		client: &dns.Client{
			Net:     "udp",
			Timeout: QueryTimeout,
		},
		logger: log.WithComponent("resolver"),
	}
}

// LookupHost resolves a hostname to its A and AAAA addresses. The result is
// an unordered union (v4 then v6); ordering of candidates is decided by the
// recency cache, not here. Any resolver error propagates to the caller.
func (r *Resolver) LookupHost(ctx context.Context, name string) ([]string, error) {
	v4, err := r.lookup(ctx, name, dns.TypeA)
	if err != nil {
		return nil, err
	}
	v6, err := r.lookup(ctx, name, dns.TypeAAAA)
	if err != nil {
		return nil, err
	}

	addrs := make([]string, 0, len(v4)+len(v6))
	addrs = append(addrs, v4...)
	addrs = append(addrs, v6...)

	r.logger.Debug().
		Str("host", name).
		Int("addresses", len(addrs)).
		Msg("resolved host")

	return addrs, nil
}

// LookupService resolves an SRV name, drops targets whose priority falls
// outside the band, and resolves each surviving target via LookupHost. SRV
// weight and port are ignored; only the priority filter applies.
func (r *Resolver) LookupService(ctx context.Context, name string, band PriorityBand) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeSRV)

	resp, err := r.exchange(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("SRV query for %s: %w", name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("SRV query for %s: %s", name, dns.RcodeToString[resp.Rcode])
	}

	var addrs []string
	for _, rr := range resp.Answer {
		srv, ok := rr.(*dns.SRV)
		if !ok {
			continue
		}
		if !band.Contains(srv.Priority) {
			r.logger.Debug().
				Str("service", name).
				Str("target", srv.Target).
				Uint16("priority", srv.Priority).
				Msg("SRV target outside priority band")
			continue
		}

		target := unFqdn(srv.Target)
		targetAddrs, err := r.LookupHost(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve SRV target %s: %w", target, err)
		}
		addrs = append(addrs, targetAddrs...)
	}

	r.logger.Debug().
		Str("service", name).
		Int("addresses", len(addrs)).
		Msg("resolved service")

	return addrs, nil
}

// lookup runs a single-type address query and extracts the answer addresses
func (r *Resolver) lookup(ctx context.Context, name string, qtype uint16) ([]string, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)

	resp, err := r.exchange(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("%s query for %s: %w", dns.TypeToString[qtype], name, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("%s query for %s: %s", dns.TypeToString[qtype], name, dns.RcodeToString[resp.Rcode])
	}

	var addrs []string
	for _, rr := range resp.Answer {
		switch record := rr.(type) {
		case *dns.A:
			addrs = append(addrs, record.A.String())
		case *dns.AAAA:
			addrs = append(addrs, record.AAAA.String())
		}
	}
	return addrs, nil
}

// exchange sends the query to each nameserver in turn until one answers,
// retrying over TCP when a response comes back truncated
func (r *Resolver) exchange(ctx context.Context, m *dns.Msg) (*dns.Msg, error) {
	var lastErr error
	for _, server := range r.servers {
		resp, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.Truncated {
			tcp := &dns.Client{Net: "tcp", Timeout: r.client.Timeout}
			resp, _, err = tcp.ExchangeContext(ctx, m, server)
			if err != nil {
				lastErr = err
				continue
			}
		}
		return resp, nil
	}
	return nil, fmt.Errorf("all nameservers failed: %w", lastErr)
}

// unFqdn trims the trailing dot from an FQDN
func unFqdn(name string) string {
	if dns.IsFqdn(name) {
		return name[:len(name)-1]
	}
	return name
}
