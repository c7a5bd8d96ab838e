package compare

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"
	"golang.org/x/sync/errgroup"

	"github.com/buildwithgrove/versus/provider"
)

// Runner wires the fan-out pipeline for one run: the broadcaster reads the
// input stream and feeds every provider's worker; workers execute
// concurrently against their provider handles; once all of them join, the
// aggregator diffs the result sets against the baseline.
type Runner struct {
	Logger polylog.Logger

	// Pool holds the providers that survived the consistency pre-check.
	// The first provider is the comparison baseline.
	Pool *provider.Pool

	// MaxCount caps how many parsed envelopes are broadcast.
	MaxCount int

	// CallTimeout bounds each individual RPC call.
	CallTimeout time.Duration
}

// Run executes the full fan-out/fan-in pass and returns the comparison report.
//
// The aggregation step waits for all workers: each worker hands back its
// ResultSet (partial on catastrophic failure) before the report is computed.
// With a single surviving provider the run degenerates to echo mode: timings
// and frequency tables are still reported, but there is nothing to diff.
func (r *Runner) Run(ctx context.Context, input io.Reader) (*Report, error) {
	providers := r.Pool.Providers
	broadcaster := NewBroadcaster(r.Logger, len(providers), r.MaxCount)

	results := make([]*ResultSet, len(providers))

	var group errgroup.Group
	group.Go(func() error {
		return broadcaster.Run(input)
	})
	for i, p := range providers {
		worker := NewWorker(r.Logger, p, broadcaster.Queue(i), r.CallTimeout)
		group.Go(func() error {
			results[i] = worker.Run(ctx)
			return nil
		})
	}

	// Only the broadcaster can fail here: a worker always returns a
	// (possibly partial) result set. A broadcaster read error still closes
	// the queues, so the workers have drained by the time Wait returns.
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed reading input stream: %w", err)
	}

	if len(providers) == 1 {
		r.Logger.Warn().Msg("single provider: reporting timings only, no comparison")
	}

	report, err := Compare(results[0], results[1:])
	if err != nil {
		return nil, err
	}

	r.logSummary(report)
	return report, nil
}

func (r *Runner) logSummary(report *Report) {
	for _, timing := range report.Timings {
		r.Logger.Info().
			Str("provider", timing.Provider.String()).
			Int("entries", timing.Entries).
			Str("elapsed", timing.Elapsed.String()).
			Msgf("%s completed in %d ms", timing.Provider, timing.Elapsed.Milliseconds())
	}

	r.Logger.Info().
		Int("distinct_success_bodies", len(report.SuccessCounts)).
		Int("distinct_error_messages", len(report.ErrorCounts)).
		Int("mismatches", len(report.Mismatches)).
		Msg("comparison pass complete")
}
