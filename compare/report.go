package compare

import (
	"errors"
	"fmt"
	"time"

	"github.com/buildwithgrove/versus/provider"
)

// ErrSequenceCorrupted signals that the same sequence id mapped to different
// request envelopes across providers. That is a broadcaster defect, not a
// provider disagreement, and aborts the run.
var ErrSequenceCorrupted = errors.New("internal consistency violation: sequence id maps to different requests across providers")

// MismatchKind distinguishes why a provider's outcome diverged from the baseline's.
type MismatchKind int

const (
	// MismatchMissingEntry: the compared provider has no entry for a
	// sequence id the baseline recorded. Surfaces broadcaster/worker bugs
	// and lag drops, distinct from a value disagreement.
	MismatchMissingEntry MismatchKind = iota
	// MismatchValue: both succeeded with structurally different bodies.
	MismatchValue
	// MismatchSuccessVsFailure: one side succeeded, the other failed.
	MismatchSuccessVsFailure
	// MismatchFailureMessage: both failed with differing messages.
	MismatchFailureMessage
)

func (k MismatchKind) String() string {
	switch k {
	case MismatchMissingEntry:
		return "missing_entry"
	case MismatchValue:
		return "value"
	case MismatchSuccessVsFailure:
		return "success_vs_failure"
	case MismatchFailureMessage:
		return "failure_message"
	default:
		return "unknown"
	}
}

// Mismatch records one baseline-relative disagreement.
type Mismatch struct {
	Seq      SequenceID
	Provider provider.EndpointAddr
	Kind     MismatchKind
	// Baseline and Compared hold the rendered outcome of each side:
	// the canonical body for successes, the classified message for failures.
	Baseline string
	Compared string
}

// ProviderTiming is the per-provider line of the run summary.
type ProviderTiming struct {
	Provider provider.EndpointAddr
	Entries  int
	Elapsed  time.Duration
}

// Report is the read-only product of one comparison pass: the per-id
// mismatch list plus frequency tables computed over all providers' outcomes.
// The two signals are independent and can disagree in edge cases, so both
// are exposed.
type Report struct {
	Baseline provider.EndpointAddr
	Timings  []ProviderTiming

	Mismatches []Mismatch

	// SuccessCounts maps each distinct canonical success body to how many
	// times it was observed, across all providers.
	SuccessCounts map[string]int
	// ErrorCounts maps each distinct classified failure message to how many
	// times it was observed, across all providers.
	ErrorCounts map[string]int
}

// FullyConsistent reports the quick "do they all agree" signal: exactly one
// distinct successful body and zero distinct failure categories across all
// providers.
func (r *Report) FullyConsistent() bool {
	return len(r.SuccessCounts) == 1 && len(r.ErrorCounts) == 0
}

// Compare diffs every other ResultSet against the baseline and builds the
// comparison report. The baseline is fixed for the lifetime of the pass.
//
// Returns ErrSequenceCorrupted if any provider recorded a different request
// envelope than the baseline under the same sequence id.
func Compare(baseline *ResultSet, others []*ResultSet) (*Report, error) {
	all := append([]*ResultSet{baseline}, others...)

	report := &Report{
		Baseline:      baseline.ProviderAddr(),
		SuccessCounts: make(map[string]int),
		ErrorCounts:   make(map[string]int),
	}

	for _, rs := range all {
		report.Timings = append(report.Timings, ProviderTiming{
			Provider: rs.ProviderAddr(),
			Entries:  rs.Len(),
			Elapsed:  rs.TotalElapsed(),
		})
		tallyOutcomes(report, rs)
	}

	for _, seq := range baseline.SequenceIDs() {
		baseEntry, _ := baseline.Get(seq)

		for _, other := range others {
			otherEntry, ok := other.Get(seq)
			if !ok {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Seq:      seq,
					Provider: other.ProviderAddr(),
					Kind:     MismatchMissingEntry,
					Baseline: renderOutcomes(baseEntry.Outcomes),
				})
				continue
			}

			if !baseEntry.Envelope.Equal(otherEntry.Envelope) {
				return nil, fmt.Errorf("%w: sequence id %d, providers %s and %s",
					ErrSequenceCorrupted, seq, baseline.ProviderAddr(), other.ProviderAddr())
			}

			if mismatch, found := diffEntries(seq, other.ProviderAddr(), baseEntry, otherEntry); found {
				report.Mismatches = append(report.Mismatches, mismatch)
			}
		}
	}

	return report, nil
}

// diffEntries compares two entries for the same sequence id as one unit:
// a batch's ordered outcome list either matches in full or yields a single
// mismatch for the whole batch.
func diffEntries(seq SequenceID, addr provider.EndpointAddr, baseEntry, otherEntry Entry) (Mismatch, bool) {
	mismatch := Mismatch{
		Seq:      seq,
		Provider: addr,
		Baseline: renderOutcomes(baseEntry.Outcomes),
		Compared: renderOutcomes(otherEntry.Outcomes),
	}

	if len(baseEntry.Outcomes) != len(otherEntry.Outcomes) {
		mismatch.Kind = MismatchValue
		return mismatch, true
	}

	for i := range baseEntry.Outcomes {
		baseOutcome, otherOutcome := baseEntry.Outcomes[i], otherEntry.Outcomes[i]
		if baseOutcome.Equal(otherOutcome) {
			continue
		}

		mismatch.Kind = classifyMismatch(baseOutcome, otherOutcome)
		return mismatch, true
	}

	return Mismatch{}, false
}

func classifyMismatch(baseOutcome, otherOutcome provider.Outcome) MismatchKind {
	switch {
	case baseOutcome.IsSuccess() && otherOutcome.IsSuccess():
		return MismatchValue
	case !baseOutcome.IsSuccess() && !otherOutcome.IsSuccess():
		return MismatchFailureMessage
	default:
		return MismatchSuccessVsFailure
	}
}

// tallyOutcomes folds one provider's outcomes into the frequency tables.
func tallyOutcomes(report *Report, rs *ResultSet) {
	for _, seq := range rs.SequenceIDs() {
		entry, _ := rs.Get(seq)
		for _, outcome := range entry.Outcomes {
			if outcome.IsSuccess() {
				report.SuccessCounts[outcome.Body()]++
			} else {
				report.ErrorCounts[outcome.FailureMessage()]++
			}
		}
	}
}

// renderOutcomes joins an entry's outcomes for display in mismatch records.
func renderOutcomes(outcomes []provider.Outcome) string {
	if len(outcomes) == 1 {
		return outcomes[0].String()
	}

	rendered := "["
	for i, outcome := range outcomes {
		if i > 0 {
			rendered += ", "
		}
		rendered += outcome.String()
	}
	return rendered + "]"
}
