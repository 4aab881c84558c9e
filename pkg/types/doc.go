/*
Package types defines the shared domain types for hostpin.

These are the vocabulary types passed between packages: what a monitored
variable is, which probe protocol validates it, and how one pass classified
its result. Keeping them here avoids import cycles between the configuration,
health, and reconciler packages.

# Key Types

VariableSpec — one monitored environment variable:

	spec := types.VariableSpec{
		EnvName:     "DATABASE_HOST",
		Hostname:    "db.internal.example",
		SRVName:     "_postgres._tcp.example",   // optional, SRV mode
		PriorityMin: 0,
		PriorityMax: 50,
		Probe:       types.ProbePostgres,
	}

ProbeKind — the protocol used to validate candidates (postgres or redis).

Outcome — the per-variable result of a pass:

	ResolveAndProbe ──▶ OutcomeSuccess            address recorded for hosts file
	                ──▶ OutcomeNoHealthyAddress   counted as a failure
	                ──▶ OutcomeError              counted as a failure

OutcomeNoHealthyAddress and OutcomeError increment the same per-variable
failure counter; they differ only in logs (the latter carries a resolution
error, the former means the candidate set is genuinely empty or all-unhealthy
with no prior success).

# Lifecycle

VariableSpecs are built once at startup from the fixed monitored-variable
table and the process environment, validated, and never mutated afterwards.
Per-variable runtime state (the recency cache, the sticky healthy address)
lives in the reconciler's owned structures, not here.
*/
package types
