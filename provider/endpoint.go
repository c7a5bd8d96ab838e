package provider

import (
	"fmt"
	"net/url"
)

// EndpointAddr is used as the unique identifier for a provider endpoint.
// It is the raw address string supplied on the command line, and doubles
// as the provider's label in reports and log entries.
type EndpointAddr string

func (e EndpointAddr) String() string {
	return string(e)
}

// endpoint is a validated connection target: the raw address plus its parsed URL.
type endpoint struct {
	addr      EndpointAddr
	parsedURL *url.URL
}

// parseEndpoint validates that addr is a well-formed network location with a
// scheme one of the transports understands. Rejected addresses never make it
// into the pool.
func parseEndpoint(addr string) (endpoint, error) {
	parsedURL, err := url.Parse(addr)
	if err != nil {
		return endpoint{}, fmt.Errorf("failed to parse endpoint address %q: %w", addr, err)
	}

	switch parsedURL.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return endpoint{}, fmt.Errorf("endpoint address %q has unsupported scheme %q", addr, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return endpoint{}, fmt.Errorf("endpoint address %q has no host", addr)
	}

	return endpoint{addr: EndpointAddr(addr), parsedURL: parsedURL}, nil
}

// isWebsocket reports whether the endpoint uses the websocket transport.
func (e endpoint) isWebsocket() bool {
	return e.parsedURL.Scheme == "ws" || e.parsedURL.Scheme == "wss"
}
