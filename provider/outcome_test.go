package provider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalJSON(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  string
		expectErr bool
	}{
		{
			name:     "object keys are sorted",
			raw:      `{"b":2,"a":1}`,
			expected: `{"a":1,"b":2}`,
		},
		{
			name:     "whitespace is removed",
			raw:      `{ "result" : "0x1" , "id" : 1 }`,
			expected: `{"id":1,"result":"0x1"}`,
		},
		{
			name:     "nested objects canonicalize recursively",
			raw:      `{"z":{"y":2,"x":1},"a":[3,2,1]}`,
			expected: `{"a":[3,2,1],"z":{"x":1,"y":2}}`,
		},
		{
			name:     "array order is preserved",
			raw:      `[{"b":1,"a":2},"x"]`,
			expected: `[{"a":2,"b":1},"x"]`,
		},
		{
			name:      "invalid JSON is rejected",
			raw:       `{"a":`,
			expectErr: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			canonical, err := CanonicalJSON([]byte(testCase.raw))
			if testCase.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, canonical)
		})
	}
}

func TestCanonicalJSONStructuralEquality(t *testing.T) {
	// Two structurally equal values must canonicalize to the same string,
	// regardless of key order and formatting in the provider's reply.
	a, err := CanonicalJSON([]byte(`{"jsonrpc":"2.0","id":1,"result":{"number":"0x1","hash":"0xaa"}}`))
	require.NoError(t, err)
	b, err := CanonicalJSON([]byte(`{ "result": {"hash":"0xaa","number":"0x1"}, "id": 1, "jsonrpc": "2.0" }`))
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestOutcomeEqual(t *testing.T) {
	testCases := []struct {
		name  string
		a     Outcome
		b     Outcome
		equal bool
	}{
		{
			name:  "equal success bodies",
			a:     SuccessOutcome(`{"result":"0x1"}`),
			b:     SuccessOutcome(`{"result":"0x1"}`),
			equal: true,
		},
		{
			name:  "different success bodies",
			a:     SuccessOutcome(`{"result":"0x1"}`),
			b:     SuccessOutcome(`{"result":"0x2"}`),
			equal: false,
		},
		{
			name:  "success never equals failure",
			a:     SuccessOutcome(`{"result":"0x1"}`),
			b:     FailureOutcome(FailureTransport, "connection refused"),
			equal: false,
		},
		{
			name:  "equal failure messages of the same kind",
			a:     FailureOutcome(FailureRPCError, "-32601: method not found"),
			b:     FailureOutcome(FailureRPCError, "-32601: method not found"),
			equal: true,
		},
		{
			name:  "same message under different kinds stays distinct",
			a:     FailureOutcome(FailureTransport, "timeout"),
			b:     FailureOutcome(FailureRPCError, "timeout"),
			equal: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.equal, testCase.a.Equal(testCase.b))
		})
	}
}

func TestFailureMessageCarriesKind(t *testing.T) {
	outcome := FailureOutcome(FailureHTTPStatus, "provider returned non 2xx HTTP status code: 503")
	require.Equal(t, "http_status: provider returned non 2xx HTTP status code: 503", outcome.FailureMessage())
}
