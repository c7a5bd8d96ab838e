package compare

import (
	"fmt"
	"sort"
	"time"

	"github.com/buildwithgrove/versus/provider"
	"github.com/buildwithgrove/versus/qos/jsonrpc"
)

// SequenceID is the correlation key linking one input line to every
// provider's recorded outcome for it. Minted only by the Broadcaster,
// strictly increasing, starting at 1.
type SequenceID uint64

// Entry records one executed envelope: the original request(s), the ordered
// per-call outcomes, and the total elapsed time. A batch envelope's sub-call
// outcomes all live under the batch's single sequence id, in input order.
type Entry struct {
	Envelope jsonrpc.Envelope
	Outcomes []provider.Outcome
	Elapsed  time.Duration
}

// ResultSet maps sequence ids to executed entries for one provider.
// It is owned exclusively by that provider's worker while running, and
// handed off to the aggregator when the worker finishes.
type ResultSet struct {
	providerAddr provider.EndpointAddr

	entries map[SequenceID]Entry

	// totalElapsed accumulates call time across all entries, for the
	// per-provider timing line in the report.
	totalElapsed time.Duration
}

func NewResultSet(addr provider.EndpointAddr) *ResultSet {
	return &ResultSet{
		providerAddr: addr,
		entries:      make(map[SequenceID]Entry),
	}
}

func (rs *ResultSet) ProviderAddr() provider.EndpointAddr {
	return rs.providerAddr
}

// Record stores the entry for seq. Each sequence id is executed at most once
// per provider, so a duplicate is an internal defect, not provider behavior.
func (rs *ResultSet) Record(seq SequenceID, entry Entry) error {
	if _, exists := rs.entries[seq]; exists {
		return fmt.Errorf("duplicate entry for sequence id %d on provider %s", seq, rs.providerAddr)
	}

	rs.entries[seq] = entry
	rs.totalElapsed += entry.Elapsed
	return nil
}

// Get returns the entry recorded for seq, if any.
func (rs *ResultSet) Get(seq SequenceID) (Entry, bool) {
	entry, ok := rs.entries[seq]
	return entry, ok
}

func (rs *ResultSet) Len() int {
	return len(rs.entries)
}

func (rs *ResultSet) TotalElapsed() time.Duration {
	return rs.totalElapsed
}

// SequenceIDs returns the recorded ids in increasing order, giving the
// aggregator a deterministic scan order over the map.
func (rs *ResultSet) SequenceIDs() []SequenceID {
	ids := make([]SequenceID, 0, len(rs.entries))
	for id := range rs.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
