package compare

import (
	"context"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/versus/metrics"
	"github.com/buildwithgrove/versus/provider"
)

// Worker drains one provider's queue in delivery order, executes each
// envelope against its provider handle, and accumulates the provider's
// ResultSet. One worker runs per provider, concurrently with every other
// worker and with the broadcaster; the worker owns its provider and its
// ResultSet exclusively until Run returns.
type Worker struct {
	logger polylog.Logger

	provider *provider.Provider
	queue    <-chan broadcastItem

	// callTimeout bounds each individual RPC call so one unresponsive
	// provider cannot stall the aggregation step indefinitely.
	callTimeout time.Duration
}

func NewWorker(logger polylog.Logger, p *provider.Provider, queue <-chan broadcastItem, callTimeout time.Duration) *Worker {
	return &Worker{
		logger:      logger.With("component", "worker", "provider", p.Addr().String()),
		provider:    p,
		queue:       queue,
		callTimeout: callTimeout,
	}
}

// Run receives numbered envelopes until the queue is closed and drained,
// then returns ownership of the completed ResultSet.
//
// A panic while executing is caught so the partial ResultSet still reaches
// the aggregator rather than losing all prior results.
func (w *Worker) Run(ctx context.Context) (results *ResultSet) {
	results = NewResultSet(w.provider.Addr())

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error().
				Int("recorded_entries", results.Len()).
				Msgf("worker failed catastrophically, returning partial results: %v", r)
		}
	}()

	var lastSeq SequenceID
	for item := range w.queue {
		// Sequence ids arrive strictly increasing; a jump means the
		// broadcaster dropped entries for this lagging provider.
		if skipped := item.seq - lastSeq - 1; skipped > 0 {
			w.logger.Warn().
				Uint64("sequence_id", uint64(item.seq)).
				Uint64("skipped", uint64(skipped)).
				Msg("gap in broadcast stream: provider lagged and missed entries")
		}
		lastSeq = item.seq

		entry := w.execute(ctx, item)
		if err := results.Record(item.seq, entry); err != nil {
			// Unreachable given strictly increasing ids; surfaced loudly
			// because it would mean a broadcaster defect.
			w.logger.Error().Err(err).Msg("dropping duplicate entry")
		}
	}

	return results
}

// execute runs every call of the envelope in order. All sub-call outcomes of
// a batch are recorded as an ordered list under the batch's single sequence
// id. Per-call failures are recorded and execution continues.
func (w *Worker) execute(ctx context.Context, item broadcastItem) Entry {
	outcomes := make([]provider.Outcome, 0, item.envelope.Len())

	var elapsed time.Duration
	for _, req := range item.envelope.Calls() {
		callCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
		outcome, callElapsed := w.provider.Call(callCtx, req)
		cancel()

		var failureKind string
		if !outcome.IsSuccess() {
			failureKind = outcome.FailureKind().String()
		}
		metrics.ObserveCall(w.provider.Addr().String(), callElapsed, failureKind)

		outcomes = append(outcomes, outcome)
		elapsed += callElapsed
	}

	return Entry{
		Envelope: item.envelope,
		Outcomes: outcomes,
		Elapsed:  elapsed,
	}
}
