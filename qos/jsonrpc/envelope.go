package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EnvelopeKind tags an Envelope as a single request or a batch.
// The kind is decided once, during parsing, from the top-level JSON shape
// of the input line. It is never re-inferred downstream: a batch whose
// elements happen to look like a single object's parameter list stays a batch.
type EnvelopeKind int

const (
	EnvelopeSingle EnvelopeKind = iota
	EnvelopeBatch
)

func (k EnvelopeKind) String() string {
	if k == EnvelopeBatch {
		return "batch"
	}
	return "single"
}

// Envelope is one logical unit of work read from the input stream:
// either a single JSON-RPC request or an ordered batch of them.
// All calls in a batch share the one sequence id the broadcaster assigns
// to the envelope.
//
// Envelopes are immutable once parsed.
//
// Reference: https://www.jsonrpc.org/specification#batch
type Envelope struct {
	kind  EnvelopeKind
	calls []Request
}

// ParseEnvelope parses one input line into an Envelope.
// The first non-whitespace byte decides the shape: '[' is a batch,
// anything else must decode as a single request object.
func ParseEnvelope(line []byte) (Envelope, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return Envelope{}, fmt.Errorf("empty request line")
	}

	if trimmed[0] == '[' {
		return parseBatchEnvelope(trimmed)
	}
	return parseSingleEnvelope(trimmed)
}

func parseSingleEnvelope(line []byte) (Envelope, error) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal single request: %w", err)
	}
	if req.Method == "" {
		return Envelope{}, fmt.Errorf("request is missing the method field")
	}

	return Envelope{kind: EnvelopeSingle, calls: []Request{req}}, nil
}

func parseBatchEnvelope(line []byte) (Envelope, error) {
	var reqs []Request
	if err := json.Unmarshal(line, &reqs); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal batch request: %w", err)
	}
	// Empty batches are invalid per the JSON-RPC spec.
	if len(reqs) == 0 {
		return Envelope{}, fmt.Errorf("empty batch request not allowed")
	}
	for i, req := range reqs {
		if req.Method == "" {
			return Envelope{}, fmt.Errorf("batch entry %d is missing the method field", i)
		}
	}

	return Envelope{kind: EnvelopeBatch, calls: reqs}, nil
}

func (e Envelope) Kind() EnvelopeKind {
	return e.kind
}

// Calls returns the envelope's requests in input order.
// A single envelope returns a one-element slice.
func (e Envelope) Calls() []Request {
	return e.calls
}

func (e Envelope) Len() int {
	return len(e.calls)
}

// Equal reports structural equality: same kind and the same ordered requests.
// Used by the differ's internal-consistency check, where an inequality for
// the same sequence id signals a broadcaster defect rather than a provider
// disagreement.
func (e Envelope) Equal(other Envelope) bool {
	if e.kind != other.kind || len(e.calls) != len(other.calls) {
		return false
	}
	for i := range e.calls {
		if !e.calls[i].Equal(other.calls[i]) {
			return false
		}
	}
	return true
}
