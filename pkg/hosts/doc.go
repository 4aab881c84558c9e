/*
Package hosts rewrites the system hosts file for monitored hostnames.

The hosts file is the daemon's output: the place where a validated address is
pinned so every process on the machine resolves the monitored name to it,
whatever DNS currently claims. The file is shared with humans and other
tooling, so the rewrite discipline is strict: touch only what is owned, keep
everything else byte-identical and in order, and write only when something
actually changed.

# Architecture

	┌──────────────────── HOSTS RECONCILER ─────────────────────┐
	│                                                           │
	│   Reconcile(updates)            updates: hostname →       │
	│        │                        ordered address list      │
	│        ▼                                                  │
	│   ┌─────────────────────────────┐                         │
	│   │ read file, split lines      │                         │
	│   └──────────────┬──────────────┘                         │
	│                  ▼                                        │
	│   ┌─────────────────────────────┐  ownership: second      │
	│   │ per hostname:               │  whitespace field after │
	│   │   set unchanged? → skip     │  stripping '#' comments │
	│   │   else drop owned lines,    │                         │
	│   │   append fresh entries      │                         │
	│   └──────────────┬──────────────┘                         │
	│                  ▼                                        │
	│   ┌─────────────────────────────┐  no set changed →       │
	│   │ write 0644 iff changed      │  disk untouched         │
	│   └─────────────────────────────┘                         │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Line Format

Owned entries are appended at the end of the file as

	<address> <hostname> # AUTO GENERATED: <RFC3339 UTC timestamp>

one line per address, in the given order. A non-comment line is owned when
its second whitespace-delimited token equals a monitored hostname; comment
lines and lines with fewer than two fields are never owned.

# Change Detection

The decision to write compares address sets, not raw lines: a pass that
resolves the same addresses in a different order leaves the file untouched,
and an unchanged hostname keeps its existing lines and timestamps even when
another hostname in the same pass is rewritten.
*/
package hosts
