package scan

import "sourcecheck/internal/probe"

// OwnerResult holds the outcomes for one owner's sources, in the order those
// sources were supplied to the Runner.
type OwnerResult struct {
	OwnerID  string          `json:"owner_id"`
	Outcomes []probe.Outcome `json:"outcomes"`
}

// Report maps every owner seen in the input to its ordered outcomes. Owners
// appear in first-seen input order. An owner whose sources all failed is
// still present; the engine never drops records.
type Report struct {
	Owners []OwnerResult `json:"owners"`
}

// buildReport regroups outcomes under their owners. outcomes[i] must
// correspond to records[i]; per-owner ordering falls out of walking the
// records in input order, regardless of probe completion order.
func buildReport(records []SourceRecord, outcomes []probe.Outcome) *Report {
	rep := &Report{}
	byOwner := make(map[string]int, len(records))
	for i, rec := range records {
		j, ok := byOwner[rec.OwnerID]
		if !ok {
			j = len(rep.Owners)
			byOwner[rec.OwnerID] = j
			rep.Owners = append(rep.Owners, OwnerResult{OwnerID: rec.OwnerID})
		}
		rep.Owners[j].Outcomes = append(rep.Owners[j].Outcomes, outcomes[i])
	}
	return rep
}

// Get returns the outcomes for one owner, or nil if the owner was not in the
// input.
func (r *Report) Get(ownerID string) []probe.Outcome {
	for _, o := range r.Owners {
		if o.OwnerID == ownerID {
			return o.Outcomes
		}
	}
	return nil
}

// Summary holds per-status counts derived from a report. The engine itself
// computes no aggregates; this is a convenience for formatters.
type Summary struct {
	Total       int `json:"total"`
	Reachable   int `json:"reachable"`
	Unreachable int `json:"unreachable"`
	Malformed   int `json:"malformed"`
	TimedOut    int `json:"timed_out"`
}

func (r *Report) Summary() Summary {
	var s Summary
	for _, o := range r.Owners {
		for _, out := range o.Outcomes {
			s.Total++
			switch out.Status {
			case probe.StatusReachable:
				s.Reachable++
			case probe.StatusUnreachable:
				s.Unreachable++
			case probe.StatusMalformed:
				s.Malformed++
			case probe.StatusTimedOut:
				s.TimedOut++
			}
		}
	}
	return s
}

// Dead reports how many sources were anything other than reachable.
func (s Summary) Dead() int {
	return s.Unreachable + s.Malformed + s.TimedOut
}
