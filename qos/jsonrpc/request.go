package jsonrpc

import (
	"bytes"
	"encoding/json"
)

// Method is the method specified by a JSONRPC request.
// See the following link for more details:
// https://www.jsonrpc.org/specification
type Method string
type Version string

const Version2 = Version("2.0")

// Request represents a JSON-RPC 2.0 request.
//
// Specification requirements:
//   - jsonrpc: must be "2.0"
//   - method: string containing the method name
//   - params: structured values (array or object), optional
//   - id: identifier for correlation, always included (null if unset)
//
// Reference: https://www.jsonrpc.org/specification#request_object
type Request struct {
	ID      ID      `json:"id"` // Always include in JSON
	JSONRPC Version `json:"jsonrpc"`
	Method  Method  `json:"method"`
	Params  Params  `json:"params,omitempty"`
}

// NewRequest builds a request with the supplied id, method and params.
// Used for the identity pre-check call; user requests come off the input
// stream fully formed.
func NewRequest(id ID, method Method, params Params) Request {
	return Request{
		ID:      id,
		JSONRPC: Version2,
		Method:  method,
		Params:  params,
	}
}

// MarshalJSON implements json.Marshaler.
// Always includes the ID field for JSON-RPC 2.0 compliance;
// unset IDs serialize as null.
func (r Request) MarshalJSON() ([]byte, error) {
	type requestAlias struct {
		JSONRPC Version `json:"jsonrpc"`
		Method  Method  `json:"method"`
		Params  *Params `json:"params,omitempty"`
		ID      ID      `json:"id"`
	}

	out := requestAlias{
		JSONRPC: r.JSONRPC,
		Method:  r.Method,
		ID:      r.ID, // ID.MarshalJSON() handles the null case
	}

	if !r.Params.IsEmpty() {
		out.Params = &r.Params
	}

	return json.Marshal(out)
}

// Equal reports whether two requests are structurally equal:
// same method, same id, and byte-equal params.
func (r Request) Equal(other Request) bool {
	return r.Method == other.Method &&
		r.ID == other.ID &&
		bytes.Equal(r.Params.rawMessage, other.Params.rawMessage)
}
