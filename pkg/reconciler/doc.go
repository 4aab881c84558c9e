/*
Package reconciler runs the daemon's pass loop.

Everything else in hostpin is a part the reconciler assembles: a pass walks
the monitored variables in their fixed table order, asks each one's gate for
the best current address, reconciles the hosts file once with every address
it collected, and reports the outcome. The loop repeats every 30 seconds for
the life of the process; the first pass runs immediately at startup so a
fresh deployment converges without waiting a tick.

# Architecture

	┌──────────────────── RECONCILER PASS ──────────────────────┐
	│                                                           │
	│   every 30s (and once at startup)                         │
	│        │                                                  │
	│        ▼  for each monitored variable, in order           │
	│   ┌─────────────────────────────┐                         │
	│   │ gate.FirstHealthy()         │                         │
	│   │   resolve → cache → probe   │                         │
	│   └──────┬───────────┬──────────┘                         │
	│      address      no address                              │
	│          │            │                                   │
	│          ▼            ▼                                   │
	│   record for      count failure                           │
	│   hosts update    (per-name), continue                    │
	│          │                                                │
	│          ▼  after all variables                           │
	│   ┌─────────────────────────────┐  read once, write only  │
	│   │ hosts.Reconcile(updates)    │  when an address set    │
	│   └──────────────┬──────────────┘  changed                │
	│                  ▼                                        │
	│   ┌─────────────────────────────┐  success, or one        │
	│   │ publish outcome events      │  failure per name;      │
	│   └─────────────────────────────┘  hosts I/O errors count │
	│                                    as one anonymous       │
	│                                    failure                │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Per-Variable Outcomes

Each variable's resolve-and-probe step ends in exactly one of three states:

  - Success: the gate produced an address, freshly probed or the sticky
    last-known-healthy one. The address is recorded for the hosts file.
  - Error: the gate produced nothing and resolution itself failed.
  - NoHealthyAddress: the gate produced nothing without a resolution error;
    the candidate set is empty or all-unhealthy and nothing has ever passed.

Error and NoHealthyAddress both increment the variable's failure counter;
they are distinguished in logs and in the Prometheus outcome label only.
Processing always continues to the next variable.

# Failure Reporting

After the hosts write the pass reports through the event broker: a clean
pass publishes pass.completed with result success (which the push reporter
turns into one success counter increment); a pass with failures publishes
one variable.unhealthy event per failed name with its count. A hosts file
that cannot be read or written is logged and reported as a single anonymous
failure, and the next pass simply tries again. The process has no normal
termination path; Stop exists for orderly supervisor restarts.
*/
package reconciler
