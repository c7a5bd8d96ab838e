package compare

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog/polyzero"
	"github.com/stretchr/testify/require"

	"github.com/buildwithgrove/versus/provider"
	"github.com/buildwithgrove/versus/qos/jsonrpc"
)

const testCallTimeout = 5 * time.Second

// mustEnvelope parses a request line or fails the test.
func mustEnvelope(t *testing.T, line string) jsonrpc.Envelope {
	t.Helper()
	envelope, err := jsonrpc.ParseEnvelope([]byte(line))
	require.NoError(t, err)
	return envelope
}

// rpcHandler answers JSON-RPC POSTs with per-method results, echoing the
// request id so response bodies are comparable across identical servers.
// Methods without an override get "ok-<method>".
func rpcHandler(t *testing.T, overrides map[string]string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		var req jsonrpc.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := overrides[string(req.Method)]
		if !ok {
			result = fmt.Sprintf("%q", "ok-"+req.Method)
		}

		idBz, err := json.Marshal(req.ID)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, idBz, result)
	}
}

// newTestProvider builds a provider handle against an httptest server.
func newTestProvider(t *testing.T, handler http.HandlerFunc) *provider.Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := provider.NewProvider(polyzero.NewLogger(), server.URL, nil)
	require.NoError(t, err)
	return p
}

// newResultSet builds a ResultSet from rendered entries keyed by sequence id.
func newResultSet(t *testing.T, addr string, entries map[SequenceID]Entry) *ResultSet {
	t.Helper()

	rs := NewResultSet(provider.EndpointAddr(addr))
	for seq, entry := range entries {
		require.NoError(t, rs.Record(seq, entry))
	}
	return rs
}

// successEntry wraps a single successful outcome under the given request line.
func successEntry(t *testing.T, line, body string) Entry {
	t.Helper()
	return Entry{
		Envelope: mustEnvelope(t, line),
		Outcomes: []provider.Outcome{provider.SuccessOutcome(body)},
	}
}
