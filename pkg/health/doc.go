/*
Package health validates candidate addresses and selects the one to pin.

Resolution alone is not trust: a name can point at an instance that is still
being provisioned, already decommissioned, or simply dead. Every candidate is
therefore probed with the backend's own protocol before it may enter the
hosts file. The gate combines the probe with the recency cache's ordering and
adds the failover policy: prefer the newest healthy candidate, and never
regress to "no address" once any address has been confirmed good.

# Architecture

	┌───────────────────── HEALTH GATE ─────────────────────────┐
	│                                                           │
	│   FirstHealthy(ctx)                                       │
	│        │                                                  │
	│        ▼                                                  │
	│   ┌─────────────────────────────┐                         │
	│   │ cache.Resolve()             │  newest-first           │
	│   └──────────────┬──────────────┘                         │
	│                  ▼                                        │
	│   ┌─────────────────────────────┐                         │
	│   │ probe candidates in order,  │  lazy: stops at the     │
	│   │ stop at first healthy       │  first pass, later      │
	│   └──────────────┬──────────────┘  candidates not probed  │
	│         found?   │   none passed?                         │
	│        ┌─────────┴──────────┐                             │
	│        ▼                    ▼                             │
	│   store + return      return sticky                       │
	│   (Fresh=true)        last-known-healthy                  │
	│                       (may be empty on first run)         │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Probes

Two protocol probes exist, one per backend family:

  - PostgresProbe (jackc/pgx): connect with configured user, password and
    database, host overridden to the candidate, then one ping roundtrip.
  - RedisProbe (redis/go-redis): client with configured password, PoolSize 1,
    optional TLS with verification disabled, then one PING.

Both bound every network step with a 2-second timeout, return a typed Result
{Healthy, Message, CheckedAt, Duration}, and release their connection on
every exit path. An unreachable backend, a timeout, an authentication
failure or a protocol error are all ordinary unhealthy results, never process
errors.

# Stickiness

The gate stores the last address that ever passed. A pass with no healthy
candidate returns that stored address with Fresh=false, so one flapping probe
or a transient DNS wipe never empties the hosts file. The stored address is
replaced only by a newer candidate that also passes, and reset only by
process restart.
*/
package health
