package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is the id field of a JSON-RPC request or response.
//
// Per the JSON-RPC 2.0 spec it may be a String, a Number or null.
// The server must echo the same value back in the response, which is
// what makes response bodies comparable across providers: the id of
// the original input line is forwarded unchanged to every provider.
//
// See the following link for more details:
// https://www.jsonrpc.org/specification
type ID struct {
	intID  int
	strID  string
	numSet bool
}

// String returns ID as a string.
// The string form takes precedence if both fields are set.
func (id ID) String() string {
	if id.strID != "" {
		return id.strID
	}
	return strconv.Itoa(id.intID)
}

func (id ID) IsEmpty() bool {
	return !id.numSet && id.strID == ""
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numSet {
		return []byte(strconv.Itoa(id.intID)), nil
	}
	if id.strID != "" {
		return []byte(fmt.Sprintf("%q", id.strID)), nil
	}
	// Unset IDs serialize as null per the spec.
	return []byte("null"), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ID{}
		return nil
	}

	var intID int
	if err := json.Unmarshal(data, &intID); err == nil {
		id.intID = intID
		id.numSet = true
		return nil
	}

	var strID string
	if err := json.Unmarshal(data, &strID); err != nil {
		return fmt.Errorf("invalid JSON-RPC id: %s", string(data))
	}

	id.strID = strID
	return nil
}

func IDFromInt(id int) ID {
	return ID{intID: id, numSet: true}
}

func IDFromStr(id string) ID {
	return ID{strID: id}
}
