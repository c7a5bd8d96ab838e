package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	netHTTP "github.com/buildwithgrove/versus/network/http"
)

// httpTransport POSTs JSON-RPC payloads to an http(s) endpoint.
// The underlying http.Client is shared across providers for connection reuse;
// per-call deadlines come from the caller's context.
type httpTransport struct {
	url    *url.URL
	client *http.Client
}

func newHTTPTransport(u *url.URL, client *http.Client) *httpTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpTransport{url: u, client: client}
}

func (t *httpTransport) roundTrip(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := netHTTP.EnsureHTTPSuccess(resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func (t *httpTransport) close() {
	// Shared client: connections are reclaimed at process end.
}
