package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Params represents the 'params' field in a JSON-RPC request. It accepts any
// valid structured JSON value, i.e. an array or an object.
//
// Params only validates JSON formatting. Method-specific validation is the
// concern of the provider under test, not of this tool: a provider rejecting
// bad params is itself a comparable outcome.
//
// See the below link on JSONRPC spec for more details:
// https://www.jsonrpc.org/specification#parameter_structures
type Params struct {
	// rawMessage stores the value of the params field exactly as read from
	// the input line, e.g. ["0x1b4", true].
	// It is kept private so every value passes through JSON validation
	// during unmarshaling.
	rawMessage json.RawMessage
}

func NewParams(rawMessage json.RawMessage) Params {
	return Params{rawMessage: rawMessage}
}

// Custom marshaler allows Params to be serialized while keeping rawMessage private.
func (p Params) MarshalJSON() ([]byte, error) {
	return p.rawMessage, nil
}

// Custom unmarshaler ensures incoming data complies with the JSON-RPC 2.0 spec:
// params must be a structured value (array or object).
func (p *Params) UnmarshalJSON(data []byte) error {
	var rawMessage json.RawMessage
	if err := json.Unmarshal(data, &rawMessage); err != nil {
		return fmt.Errorf("failed to unmarshal params field: %v", err)
	}

	// json.Unmarshal into interface{} is used to reject primitive values:
	//   Valid:   [1, "test"] or {"foo": "bar"}
	//   Invalid: "test" or 42 or true
	var checkType interface{}
	if err := json.Unmarshal(data, &checkType); err != nil {
		return err
	}

	switch checkType.(type) {
	case []interface{}, map[string]interface{}:
		p.rawMessage = rawMessage
		return nil
	default:
		return fmt.Errorf("params must be either array or object, got %T", checkType)
	}
}

// IsEmpty returns true when params contains no data.
// The request marshaler uses this to omit the params field entirely.
func (p Params) IsEmpty() bool {
	return len(p.rawMessage) == 0
}
