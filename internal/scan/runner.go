package scan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"sourcecheck/internal/probe"
)

// SourceRecord is one checkable (owner, URL) pair from the catalog. The
// location is raw and unvalidated; validation happens in the prober.
type SourceRecord struct {
	OwnerID  string `json:"owner_id"`
	Location string `json:"location"`
}

// Options tunes a Runner. Both fields must be set to positive values; invalid
// options are rejected by NewRunner, never clamped.
type Options struct {
	MaxConcurrency int           // probes in flight at once
	Timeout        time.Duration // deadline for a single probe
}

// DefaultOptions are used by the CLI and API when nothing is configured.
func DefaultOptions() Options {
	return Options{MaxConcurrency: 8, Timeout: 10 * time.Second}
}

// Runner fans probes out across source records with bounded parallelism and
// folds the outcomes into a Report. One probe failing, hanging or timing out
// never affects its siblings; every record yields exactly one outcome.
type Runner struct {
	prober probe.Prober
	logger *zap.Logger
	opts   Options
}

func NewRunner(p probe.Prober, logger *zap.Logger, opts Options) (*Runner, error) {
	var errs error
	if opts.MaxConcurrency < 1 {
		errs = multierr.Append(errs, fmt.Errorf("max concurrency must be positive, got %d", opts.MaxConcurrency))
	}
	if opts.Timeout <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("probe timeout must be positive, got %v", opts.Timeout))
	}
	if errs != nil {
		return nil, errs
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{prober: p, logger: logger, opts: opts}, nil
}

type indexedOutcome struct {
	idx int
	out probe.Outcome
}

// Run probes every record and blocks until all outcomes are in. At most
// Options.MaxConcurrency probes are in flight at any instant; as one
// completes the next pending record is admitted. If ctx is cancelled,
// records that have not finished resolve to StatusTimedOut rather than
// being dropped.
func (r *Runner) Run(ctx context.Context, records []SourceRecord) *Report {
	outcomes := make([]probe.Outcome, len(records))
	results := make(chan indexedOutcome)
	sem := make(chan struct{}, r.opts.MaxConcurrency)

	go func() {
		for i, rec := range records {
			if ctx.Err() != nil {
				results <- indexedOutcome{i, probe.Outcome{
					Location: rec.Location,
					Status:   probe.StatusTimedOut,
					Detail:   "run cancelled before probe started",
				}}
				continue
			}
			sem <- struct{}{}
			go func(i int, rec SourceRecord) {
				defer func() { <-sem }()
				pctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
				defer cancel()
				results <- indexedOutcome{i, r.prober.Probe(pctx, rec.Location)}
			}(i, rec)
		}
	}()

	// Sole consumer of the results channel; arrival order is irrelevant
	// because each outcome carries its input index.
	for range records {
		m := <-results
		outcomes[m.idx] = m.out
		r.logger.Debug("probe_done",
			zap.String("owner_id", records[m.idx].OwnerID),
			zap.String("location", m.out.Location),
			zap.String("status", string(m.out.Status)),
			zap.Float64("latency_ms", m.out.LatencyMS),
		)
	}

	return buildReport(records, outcomes)
}
