package compare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/versus/provider"
)

const (
	lineChainID = `{"jsonrpc":"2.0","method":"eth_chainId","id":1}`
	lineBlock   = `{"jsonrpc":"2.0","method":"eth_blockNumber","id":2}`
	lineGas     = `{"jsonrpc":"2.0","method":"eth_gasPrice","id":3}`
)

func TestCompareFullyConsistent(t *testing.T) {
	entries := func() map[SequenceID]Entry {
		return map[SequenceID]Entry{
			1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
			2: successEntry(t, lineBlock, `{"id":2,"result":"0x10"}`),
			3: successEntry(t, lineGas, `{"id":3,"result":"0x3b9aca00"}`),
		}
	}

	baseline := newResultSet(t, "provider-a", entries())
	others := []*ResultSet{
		newResultSet(t, "provider-b", entries()),
		newResultSet(t, "provider-c", entries()),
	}

	report, err := Compare(baseline, others)
	require.NoError(t, err)
	require.Empty(t, report.Mismatches)

	// Three distinct bodies were each seen once per provider.
	require.Len(t, report.SuccessCounts, 3)
	for _, count := range report.SuccessCounts {
		require.Equal(t, 3, count)
	}
	require.Empty(t, report.ErrorCounts)

	// The quick signal requires exactly one distinct success body, so three
	// distinct (but per-id identical) bodies do not raise it: the two
	// signals are independent by design.
	require.False(t, report.FullyConsistent())
}

func TestCompareSingleDistinctBodySignal(t *testing.T) {
	entries := func() map[SequenceID]Entry {
		return map[SequenceID]Entry{
			1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
		}
	}

	report, err := Compare(
		newResultSet(t, "provider-a", entries()),
		[]*ResultSet{newResultSet(t, "provider-b", entries())},
	)
	require.NoError(t, err)
	require.Empty(t, report.Mismatches)
	require.True(t, report.FullyConsistent())
}

func TestCompareValueMismatchNamesProvider(t *testing.T) {
	entries := func(gasResult string) map[SequenceID]Entry {
		return map[SequenceID]Entry{
			1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
			2: successEntry(t, lineBlock, `{"id":2,"result":"0x10"}`),
			3: successEntry(t, lineGas, gasResult),
		}
	}

	baseline := newResultSet(t, "provider-a", entries(`{"id":3,"result":"0x1"}`))
	agreeing := newResultSet(t, "provider-b", entries(`{"id":3,"result":"0x1"}`))
	divergent := newResultSet(t, "provider-c", entries(`{"id":3,"result":"0xdead"}`))

	report, err := Compare(baseline, []*ResultSet{agreeing, divergent})
	require.NoError(t, err)

	// Exactly one mismatch, at id 3, naming the divergent provider.
	require.Len(t, report.Mismatches, 1)
	mismatch := report.Mismatches[0]
	require.Equal(t, SequenceID(3), mismatch.Seq)
	require.Equal(t, provider.EndpointAddr("provider-c"), mismatch.Provider)
	require.Equal(t, MismatchValue, mismatch.Kind)
	require.Contains(t, mismatch.Baseline, "0x1")
	require.Contains(t, mismatch.Compared, "0xdead")
}

func TestCompareMissingEntry(t *testing.T) {
	baseline := newResultSet(t, "provider-a", map[SequenceID]Entry{
		1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
		2: successEntry(t, lineBlock, `{"id":2,"result":"0x10"}`),
	})
	// provider-b never recorded id 2.
	incomplete := newResultSet(t, "provider-b", map[SequenceID]Entry{
		1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
	})

	report, err := Compare(baseline, []*ResultSet{incomplete})
	require.NoError(t, err)

	require.Len(t, report.Mismatches, 1)
	require.Equal(t, MismatchMissingEntry, report.Mismatches[0].Kind)
	require.Equal(t, SequenceID(2), report.Mismatches[0].Seq)
}

func TestCompareSuccessVsFailure(t *testing.T) {
	baseline := newResultSet(t, "provider-a", map[SequenceID]Entry{
		1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
	})
	failing := newResultSet(t, "provider-b", map[SequenceID]Entry{
		1: {
			Envelope: mustEnvelope(t, lineChainID),
			Outcomes: []provider.Outcome{provider.FailureOutcome(provider.FailureTransport, "connection refused")},
		},
	})

	report, err := Compare(baseline, []*ResultSet{failing})
	require.NoError(t, err)

	require.Len(t, report.Mismatches, 1)
	require.Equal(t, MismatchSuccessVsFailure, report.Mismatches[0].Kind)
	require.Contains(t, report.Mismatches[0].Compared, "connection refused")

	require.Len(t, report.SuccessCounts, 1)
	require.Len(t, report.ErrorCounts, 1)
	require.False(t, report.FullyConsistent())
}

func TestCompareFailureMessagesDiffer(t *testing.T) {
	failureEntry := func(msg string) map[SequenceID]Entry {
		return map[SequenceID]Entry{
			1: {
				Envelope: mustEnvelope(t, lineChainID),
				Outcomes: []provider.Outcome{provider.FailureOutcome(provider.FailureRPCError, msg)},
			},
		}
	}

	report, err := Compare(
		newResultSet(t, "provider-a", failureEntry("-32601: method not found")),
		[]*ResultSet{newResultSet(t, "provider-b", failureEntry("-32000: execution reverted"))},
	)
	require.NoError(t, err)

	// Both failed, but provider-specific error text divergence still counts.
	require.Len(t, report.Mismatches, 1)
	require.Equal(t, MismatchFailureMessage, report.Mismatches[0].Kind)
	require.Len(t, report.ErrorCounts, 2)
}

func TestCompareEnvelopeMismatchIsFatal(t *testing.T) {
	baseline := newResultSet(t, "provider-a", map[SequenceID]Entry{
		1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
	})
	// Same id, different request: a broadcaster defect, not a provider
	// disagreement.
	corrupted := newResultSet(t, "provider-b", map[SequenceID]Entry{
		1: successEntry(t, lineBlock, `{"id":1,"result":"0x1"}`),
	})

	_, err := Compare(baseline, []*ResultSet{corrupted})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSequenceCorrupted)
}

func TestCompareBatchAsOneUnit(t *testing.T) {
	batchLine := `[{"jsonrpc":"2.0","method":"first","id":1},{"jsonrpc":"2.0","method":"second","id":2},{"jsonrpc":"2.0","method":"third","id":3}]`

	batchEntry := func(thirdBody string) map[SequenceID]Entry {
		return map[SequenceID]Entry{
			1: {
				Envelope: mustEnvelope(t, batchLine),
				Outcomes: []provider.Outcome{
					provider.SuccessOutcome(`{"id":1,"result":"a"}`),
					provider.SuccessOutcome(`{"id":2,"result":"b"}`),
					provider.SuccessOutcome(thirdBody),
				},
			},
		}
	}

	report, err := Compare(
		newResultSet(t, "provider-a", batchEntry(`{"id":3,"result":"c"}`)),
		[]*ResultSet{newResultSet(t, "provider-b", batchEntry(`{"id":3,"result":"DIFFERENT"}`))},
	)
	require.NoError(t, err)

	// The whole batch diffs as one comparable unit: one mismatch for the
	// batch's sequence id, not one per sub-request.
	require.Len(t, report.Mismatches, 1)
	require.Equal(t, SequenceID(1), report.Mismatches[0].Seq)
	require.Equal(t, MismatchValue, report.Mismatches[0].Kind)

	matching, err := Compare(
		newResultSet(t, "provider-a", batchEntry(`{"id":3,"result":"c"}`)),
		[]*ResultSet{newResultSet(t, "provider-b", batchEntry(`{"id":3,"result":"c"}`))},
	)
	require.NoError(t, err)
	require.Empty(t, matching.Mismatches)
}

func TestCompareIsIdempotent(t *testing.T) {
	build := func() (*ResultSet, []*ResultSet) {
		baseline := newResultSet(t, "provider-a", map[SequenceID]Entry{
			1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
			2: successEntry(t, lineBlock, `{"id":2,"result":"0x10"}`),
		})
		other := newResultSet(t, "provider-b", map[SequenceID]Entry{
			1: successEntry(t, lineChainID, `{"id":1,"result":"0x1"}`),
			2: successEntry(t, lineBlock, `{"id":2,"result":"0xffff"}`),
		})
		return baseline, []*ResultSet{other}
	}

	baseline1, others1 := build()
	first, err := Compare(baseline1, others1)
	require.NoError(t, err)

	baseline2, others2 := build()
	second, err := Compare(baseline2, others2)
	require.NoError(t, err)

	// No hidden global state: identical inputs give identical reports.
	require.Equal(t, first.Mismatches, second.Mismatches)
	require.Equal(t, first.SuccessCounts, second.SuccessCounts)
	require.Equal(t, first.ErrorCounts, second.ErrorCounts)
}
