package provider

import (
	"encoding/json"
	"fmt"
)

// FailureKind classifies how a single RPC call against a provider failed.
// The classes are deliberately coarse: they separate "could not talk to the
// provider" from "provider replied with something unusable" from "provider
// replied with a well-formed JSON-RPC error". The differ compares failure
// messages across providers, so each kind carries a human-readable message.
type FailureKind int

const (
	// FailureTransport: the request never produced an HTTP/websocket response
	// (dial error, connection reset, timeout).
	FailureTransport FailureKind = iota
	// FailureHTTPStatus: the provider replied with a non-2xx status code.
	FailureHTTPStatus
	// FailureMalformedResponse: the provider's reply could not be parsed as a
	// JSON-RPC response.
	FailureMalformedResponse
	// FailureRPCError: a well-formed response carrying a JSON-RPC error object.
	FailureRPCError
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureHTTPStatus:
		return "http_status"
	case FailureMalformedResponse:
		return "malformed_response"
	case FailureRPCError:
		return "rpc_error"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of executing one RPC call against one provider:
// either a success carrying the canonicalized response body, or a classified
// failure carrying a message. Immutable after creation.
type Outcome struct {
	success     bool
	body        string
	failureKind FailureKind
	failureMsg  string
}

// SuccessOutcome wraps a canonicalized response body.
func SuccessOutcome(canonicalBody string) Outcome {
	return Outcome{success: true, body: canonicalBody}
}

// FailureOutcome wraps a classified failure.
func FailureOutcome(kind FailureKind, msg string) Outcome {
	return Outcome{failureKind: kind, failureMsg: msg}
}

func (o Outcome) IsSuccess() bool {
	return o.success
}

// Body returns the canonicalized response body of a successful outcome.
func (o Outcome) Body() string {
	return o.body
}

func (o Outcome) FailureKind() FailureKind {
	return o.failureKind
}

// FailureMessage returns the classified failure message, prefixed with the
// failure kind so that e.g. a transport timeout and an RPC error with the
// same text never collapse into one frequency-table bucket.
func (o Outcome) FailureMessage() string {
	return fmt.Sprintf("%s: %s", o.failureKind, o.failureMsg)
}

// Equal reports whether two outcomes agree: both successes with structurally
// equal bodies, or both failures with identical messages.
func (o Outcome) Equal(other Outcome) bool {
	if o.success != other.success {
		return false
	}
	if o.success {
		return o.body == other.body
	}
	return o.FailureMessage() == other.FailureMessage()
}

func (o Outcome) String() string {
	if o.success {
		return o.body
	}
	return o.FailureMessage()
}

// CanonicalJSON re-encodes raw JSON into a canonical form: object keys sorted,
// insignificant whitespace removed. Two structurally equal values canonicalize
// to the same string, which makes the canonical form serve both as the
// structural-equality check and as the frequency-table key.
func CanonicalJSON(raw []byte) (string, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(canonical), nil
}
