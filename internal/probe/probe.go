package probe

import "context"

// Status classifies the outcome of a single reachability probe.
type Status string

const (
	// StatusReachable means the remote answered with an acceptable HTTP status.
	StatusReachable Status = "reachable"
	// StatusUnreachable covers connection, DNS and TLS failures as well as
	// HTTP error statuses (the code lands in Detail).
	StatusUnreachable Status = "unreachable"
	// StatusMalformed means the location failed URL validation; no network
	// attempt was made.
	StatusMalformed Status = "malformed"
	// StatusTimedOut means the probe window elapsed with no response.
	StatusTimedOut Status = "timed_out"
)

// Outcome is the result of probing one location. Exactly one Outcome is
// produced per probe; Detail is advisory and never drives control flow.
type Outcome struct {
	Location  string  `json:"location"`
	Status    Status  `json:"status"`
	Detail    string  `json:"detail,omitempty"`
	LatencyMS float64 `json:"latency_ms,omitempty"`
}

// Prober performs a single reachability check against one location.
// Implementations must never fail: every error mode maps to a Status.
type Prober interface {
	Probe(ctx context.Context, location string) Outcome
}
