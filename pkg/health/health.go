package health

import (
	"context"
	"time"

	"github.com/hostpin/hostpin/pkg/types"
)

// Result represents the outcome of one probe attempt against one candidate
// address. A failed probe is an expected, frequent outcome and is carried in
// the result, never raised as an error.
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Probe is the interface all protocol probes implement. A probe opens a
// fresh connection to the candidate, performs one minimal roundtrip and
// releases the connection on every exit path; connections are never pooled
// or reused across checks.
type Probe interface {
	// Check probes the candidate address and reports the outcome
	Check(ctx context.Context, address string) Result

	// Kind returns the protocol this probe speaks
	Kind() types.ProbeKind
}
