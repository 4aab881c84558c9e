package types

// ProbeKind identifies the protocol used to validate a candidate address
type ProbeKind string

const (
	ProbePostgres ProbeKind = "postgres"
	ProbeRedis    ProbeKind = "redis"
)

// Outcome classifies the result of one variable's resolve-and-probe step
type Outcome string

const (
	// OutcomeSuccess means an address is available for the hosts file,
	// either freshly probed or the sticky last known healthy one
	OutcomeSuccess Outcome = "success"

	// OutcomeNoHealthyAddress means no candidate passed and no address has
	// ever been healthy for this variable
	OutcomeNoHealthyAddress Outcome = "no_healthy_address"

	// OutcomeError means resolution itself failed and left nothing to offer
	OutcomeError Outcome = "error"
)

// VariableSpec describes one monitored environment variable. The monitored
// set is fixed at startup; entries whose value is a literal IP address or
// empty never become a VariableSpec.
type VariableSpec struct {
	// EnvName is the environment variable being monitored (e.g. "DATABASE_HOST")
	EnvName string

	// Hostname is the variable's value, the name pinned in the hosts file
	Hostname string

	// SRVName switches resolution to SRV mode when non-empty; the SRV
	// record's targets are resolved instead of Hostname
	SRVName string

	// PriorityMin and PriorityMax bound accepted SRV target priorities
	// (inclusive). Only meaningful in SRV mode.
	PriorityMin uint16
	PriorityMax uint16

	// Probe selects the protocol check used to validate candidates
	Probe ProbeKind
}

// SRVMode reports whether the variable resolves through an SRV record
func (v VariableSpec) SRVMode() bool {
	return v.SRVName != ""
}
