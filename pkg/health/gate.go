package health

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hostpin/hostpin/pkg/log"
	"github.com/hostpin/hostpin/pkg/metrics"
	"github.com/hostpin/hostpin/pkg/recency"
)

// Selection is the gate's verdict for one pass.
type Selection struct {
	// Address is the selected address, or empty when no address has ever
	// passed the probe
	Address string

	// Fresh is true when Address passed its probe during this selection,
	// false when it is the sticky last-known-healthy fallback
	Fresh bool

	// ResolveErr carries this pass's resolution error, if any, so the
	// caller can account for it
	ResolveErr error
}

// Gate selects the single best current address for one monitored variable:
// the newest candidate that passes the health probe, or failing that, the
// last address that ever passed. Once any address has been confirmed
// healthy the gate never returns empty again for the process lifetime, even
// when the address has since dropped out of DNS or stopped answering.
type Gate struct {
	variable string
	cache    *recency.Cache
	probe    Probe
	last     string
	logger   zerolog.Logger
}

// NewGate ties a recency cache to a health probe
func NewGate(variable string, cache *recency.Cache, probe Probe) *Gate {
	return &Gate{
		variable: variable,
		cache:    cache,
		probe:    probe,
		logger:   log.WithVariable("gate", variable),
	}
}

// FirstHealthy refreshes the candidate list and probes it newest-first,
// stopping at the first candidate that passes. Probing is lazy: candidates
// behind the winner are never probed. With no winner the last known healthy
// address is returned unchanged.
func (g *Gate) FirstHealthy(ctx context.Context) Selection {
	candidates, resolveErr := g.cache.Resolve(ctx)
	metrics.CandidatesTracked.WithLabelValues(g.variable).Set(float64(len(candidates)))
	if resolveErr != nil {
		g.logger.Warn().
			Err(resolveErr).
			Int("cached", len(candidates)).
			Msg("resolution failed, probing cached candidates")
	}

	for _, addr := range candidates {
		result := g.probe.Check(ctx, addr)
		metrics.ProbeDuration.WithLabelValues(string(g.probe.Kind())).Observe(result.Duration.Seconds())
		metrics.ProbesTotal.WithLabelValues(string(g.probe.Kind()), resultLabel(result)).Inc()

		if result.Healthy {
			if addr != g.last {
				g.logger.Info().
					Str("address", addr).
					Str("previous", g.last).
					Dur("probe_duration", result.Duration).
					Msg("healthy address selected")
			}
			g.last = addr
			return Selection{Address: addr, Fresh: true, ResolveErr: resolveErr}
		}

		g.logger.Debug().
			Str("address", addr).
			Str("reason", result.Message).
			Msg("candidate failed probe")
	}

	if g.last != "" {
		g.logger.Warn().
			Str("address", g.last).
			Int("candidates", len(candidates)).
			Msg("no candidate healthy, keeping last known healthy address")
	}
	return Selection{Address: g.last, Fresh: false, ResolveErr: resolveErr}
}

// Last returns the sticky last-known-healthy address, empty if no address
// has ever passed
func (g *Gate) Last() string {
	return g.last
}

func resultLabel(r Result) string {
	if r.Healthy {
		return "healthy"
	}
	return "unhealthy"
}
