/*
Package recency implements the time-windowed address cache.

DNS answers for the monitored backends are transient: a name can stop
resolving (NXDOMAIN, SERVFAIL, a flapping nameserver) while the instances it
used to point at are still up, and it can start pointing at a brand-new
instance minutes before the old one is retired. The recency cache absorbs
both: it remembers every address observed in the last 30 minutes, and it
orders them newest-first so the most recently introduced instance is tried
before its predecessors.

# Architecture

	┌──────────────────── RECENCY CACHE ────────────────────────┐
	│                                                           │
	│   Resolve(ctx)                                            │
	│        │                                                  │
	│        ▼                                                  │
	│   ┌─────────────────────────────┐                         │
	│   │ 1. source.Addresses(ctx)    │  may fail — that is ok  │
	│   └──────────────┬──────────────┘                         │
	│                  ▼                                        │
	│   ┌─────────────────────────────┐                         │
	│   │ 2. merge observed addresses │  known: lastSeen = now  │
	│   │                             │  new:   firstSeen = now │
	│   └──────────────┬──────────────┘                         │
	│                  ▼                                        │
	│   ┌─────────────────────────────┐  always runs, even when │
	│   │ 3. evict unseen > 30m       │  step 1 returned an     │
	│   │ 4. order firstSeen desc     │  error (deferred)       │
	│   └──────────────┬──────────────┘                         │
	│                  ▼                                        │
	│        [newest, ..., oldest], source error if any         │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Guarantees

  - An address unseen for more than Window (30 minutes) is absent from the
    next Resolve result.
  - Results are ordered by firstSeen descending; ties (addresses first seen
    in the same batch) keep their insertion order.
  - Eviction and ordering run unconditionally. A failing source degrades the
    cache to its stale-but-recent contents rather than wiping or freezing it.
  - firstSeen <= lastSeen for every tracked address.

The cache holds state for exactly one monitored variable and is owned by that
variable's gate; there is no global address table.
*/
package recency
