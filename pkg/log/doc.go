/*
Package log provides structured logging for hostpin using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers and configurable log levels. All logs include
timestamps; besides the hosts file and metrics counters the log stream is the
daemon's only user-visible surface, so every state change (new candidate,
eviction, healthy-address selection, hosts rewrite) is reported through it.

# Architecture

	┌──────────────────── LOGGING SYSTEM ───────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐           │
	│  │            Global Logger                   │           │
	│  │  - Zerolog instance                        │           │
	│  │  - Initialized via log.Init()              │           │
	│  │  - Safe default before Init                │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │           Configuration                    │           │
	│  │  - Level: debug/info/warn/error            │           │
	│  │  - Format: JSON or console (human)         │           │
	│  │  - Output: stdout or custom writer         │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │         Component Loggers                  │           │
	│  │  - WithComponent("reconciler")             │           │
	│  │  - WithVariable("recency", "DATABASE_HOST")│           │
	│  └────────────────────────────────────────────┘           │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

# Usage

Initialization (once, in main):

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
	})

Component logger held by a long-lived struct:

	logger := log.WithComponent("resolver")
	logger.Debug().Str("host", name).Msg("querying nameservers")

Per-variable logger, so every line about one monitored variable carries its
environment-variable name:

	logger := log.WithVariable("recency", "DATABASE_HOST")
	logger.Info().Str("address", addr).Msg("new candidate address")

# Log Levels

  - debug: per-candidate probe results, per-query resolver traffic
  - info: state changes (selection, eviction, hosts rewrite, pass summary)
  - warn: recoverable trouble (resolution failure, metric push failure)
  - error: top-level pass errors (hosts file I/O)

The daemon never calls Fatal after startup; configuration problems surface as
returned errors before the loop starts.
*/
package log
