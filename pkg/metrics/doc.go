/*
Package metrics provides the daemon's two metric surfaces.

The required surface is a push reporter: the deployment runs a small local
metrics collector, and the daemon reports pass outcomes to it as individual
counter increments — one HTTP POST per increment, JSON body, fire and
forget. The second surface is ambient: process-local Prometheus collectors
for everything worth graphing, exposed on an opt-in debug listener.

# Architecture

	┌──────────────────── METRICS SYSTEM ───────────────────────┐
	│                                                           │
	│  reconciler ──▶ events.Broker ──▶ Reporter                │
	│      │                               │ one POST per       │
	│      │                               ▼ increment          │
	│      │               http://127.0.0.1:8093/metrics        │
	│      │               {"type":"counter","name":...,        │
	│      │                "description":...,"labels":{...},   │
	│      │                "value":N}                          │
	│      │                                                    │
	│      └──▶ package-level Prometheus collectors             │
	│               │                                           │
	│               ▼ opt-in DEBUG_ADDR listener                │
	│           /metrics (Prometheus)  /healthz (liveness)      │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Push Counters

  - hostpin_resolve_success — one increment per pass in which every
    monitored variable produced an address.
  - hostpin_resolve_failure — one increment per failed variable per pass,
    labeled with the variable name; pass-level failures (hosts file I/O)
    push the same counter without a variable label.

Delivery is strictly best effort: a non-200 response or an unreachable
collector is logged and counted in hostpin_metric_push_failures_total, never
retried, and never affects resolution, caching or the hosts file. The
reporter consumes the event stream on its own goroutine, so a hung collector
cannot stall the pass loop.

# Prometheus Collectors

Package-level collectors registered at init: pass count and duration,
per-variable failure counters by outcome, probe count and duration by
protocol, tracked-candidate and healthy-address gauges, hosts rewrites, and
push failures.
*/
package metrics
