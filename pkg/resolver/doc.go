/*
Package resolver performs DNS resolution for monitored variables.

hostpin never trusts the libc resolver path or the very hosts file it rewrites;
it queries the configured nameservers directly (miekg/dns) so a poisoned or
stale local mapping can never mask a backend move. Two query shapes are
supported: plain hostname resolution (A + AAAA) and DNS-SD style SRV
resolution with priority filtering.

# Architecture

	┌──────────────────── RESOLVER ─────────────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐           │
	│  │               Resolver                     │           │
	│  │  - nameserver list from resolv.conf        │           │
	│  │  - 2s timeout per exchange                 │           │
	│  │  - UDP with TCP retry on truncation        │           │
	│  │  - servers tried in order until one answers│           │
	│  └─────────┬───────────────────┬──────────────┘           │
	│            │                   │                          │
	│  ┌─────────▼─────────┐  ┌──────▼──────────────────┐       │
	│  │    LookupHost     │  │     LookupService       │       │
	│  │  A + AAAA union   │  │  SRV → priority band →  │       │
	│  │                   │  │  LookupHost per target  │       │
	│  └─────────┬─────────┘  └──────┬──────────────────┘       │
	│            │                   │                          │
	│  ┌─────────▼─────────┐  ┌──────▼──────────────────┐       │
	│  │    HostSource     │  │     ServiceSource       │       │
	│  │  bound hostname   │  │  bound SRV name + band  │       │
	│  └───────────────────┘  └─────────────────────────┘       │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Failure Model

Errors propagate: NXDOMAIN, SERVFAIL, timeouts and unreachable nameservers all
surface to the caller as errors. There is no retry here beyond trying each
configured nameserver once per query. Recovery lives one layer up — the
recency cache keeps serving recently seen addresses through transient
resolution outages, and the next pass retries naturally.

# SRV Semantics

SRV answers carry (priority, weight, port, target). Only priority is used, and
only as an inclusive acceptance band: targets outside [Min, Max] are dropped,
survivors are resolved to addresses, and the union is returned. Weight-based
ordering is deliberately not implemented; candidate ordering is recency-based
and decided by the cache. Ports are taken from configuration, not from SRV
records.

# Usage

	res, err := resolver.NewResolver(resolver.DefaultResolvConf)
	if err != nil {
		return err
	}

	// Plain hostname
	addrs, err := res.LookupHost(ctx, "db.internal.example")

	// SRV with priority filter
	band, err := resolver.NewPriorityBand(0, 50)
	addrs, err = res.LookupService(ctx, "_postgres._tcp.example", band)

	// As a cache source
	source := res.Host("db.internal.example")
*/
package resolver
