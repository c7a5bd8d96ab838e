package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	netHTTP "github.com/buildwithgrove/versus/network/http"
	"github.com/buildwithgrove/versus/qos/jsonrpc"
)

// transport performs one raw JSON-RPC exchange: send payload, get reply bytes.
// Implementations classify their own failures via the sentinel errors below.
type transport interface {
	roundTrip(ctx context.Context, payload []byte) ([]byte, error)
	close()
}

// Provider wraps one endpoint's connection and exposes a single capability:
// execute one JSON-RPC request, returning a classified Outcome and the
// elapsed time. A Provider is owned exclusively by one worker for the
// duration of a run; it is not safe for concurrent use.
type Provider struct {
	logger polylog.Logger

	endpoint endpoint
	// identity is the canonicalized result of the identity method call,
	// fetched once at pool-build time.
	identity string

	transport transport
}

// NewProvider builds a provider for the given address, choosing the transport
// from the URL scheme. httpClient is shared across HTTP providers; websocket
// providers dial their own connection lazily on first call.
func NewProvider(logger polylog.Logger, addr string, httpClient *http.Client) (*Provider, error) {
	ep, err := parseEndpoint(addr)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		logger:   logger.With("provider", addr),
		endpoint: ep,
	}

	if ep.isWebsocket() {
		p.transport = newWebsocketTransport(ep.parsedURL)
	} else {
		p.transport = newHTTPTransport(ep.parsedURL, httpClient)
	}

	return p, nil
}

func (p *Provider) Addr() EndpointAddr {
	return p.endpoint.addr
}

// Identity returns the provider's network/chain identity as fetched at
// pool-build time.
func (p *Provider) Identity() string {
	return p.identity
}

// Call runs one JSON-RPC request against the provider and classifies the
// result into an Outcome, also reporting the elapsed wall-clock time.
// Per-call failures are returned as data, never as errors: they are the
// subject of comparison, not run failures.
func (p *Provider) Call(ctx context.Context, req jsonrpc.Request) (Outcome, time.Duration) {
	start := time.Now()
	outcome := p.call(ctx, req)
	elapsed := time.Since(start)

	p.logger.Debug().
		Str("method", string(req.Method)).
		Str("duration", elapsed.String()).
		Bool("success", outcome.IsSuccess()).
		Msg("completed RPC call")

	return outcome, elapsed
}

func (p *Provider) call(ctx context.Context, req jsonrpc.Request) Outcome {
	payload, err := json.Marshal(req)
	if err != nil {
		// Requests come from already-validated envelopes; a marshal failure
		// here is unexpected but still recorded rather than thrown.
		return FailureOutcome(FailureMalformedResponse, fmt.Sprintf("failed to marshal request: %v", err))
	}

	replyBz, err := p.transport.roundTrip(ctx, payload)
	if err != nil {
		if errors.Is(err, netHTTP.ErrProviderHTTPStatus) {
			return FailureOutcome(FailureHTTPStatus, err.Error())
		}
		return FailureOutcome(FailureTransport, err.Error())
	}

	// Validate the reply parses as a JSON-RPC response before accepting it.
	var resp jsonrpc.Response
	if err := json.Unmarshal(replyBz, &resp); err != nil {
		return FailureOutcome(FailureMalformedResponse, fmt.Sprintf("failed to parse provider reply: %v", err))
	}
	if err := resp.Validate(); err != nil {
		return FailureOutcome(FailureMalformedResponse, err.Error())
	}

	if resp.HasError() {
		return FailureOutcome(FailureRPCError, resp.Error.String())
	}

	canonical, err := CanonicalJSON(replyBz)
	if err != nil {
		return FailureOutcome(FailureMalformedResponse, fmt.Sprintf("failed to canonicalize provider reply: %v", err))
	}

	return SuccessOutcome(canonical)
}

// fetchIdentity performs the identity method call (e.g. eth_chainId) and
// returns the canonicalized result field. Unlike Call, failures are returned
// as errors: an unidentifiable provider is excluded at pool-build time.
func (p *Provider) fetchIdentity(ctx context.Context, method jsonrpc.Method) (string, error) {
	req := jsonrpc.NewRequest(jsonrpc.IDFromStr("versus-identity"), method, jsonrpc.Params{})

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal identity request: %w", err)
	}

	replyBz, err := p.transport.roundTrip(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("identity call failed: %w", err)
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(replyBz, &resp); err != nil {
		return "", fmt.Errorf("failed to parse identity response: %w", err)
	}
	if err := resp.Validate(); err != nil {
		return "", err
	}
	if resp.HasError() {
		return "", fmt.Errorf("identity call returned JSON-RPC error: %s", resp.Error.String())
	}

	resultBz, err := resp.GetResultAsBytes()
	if err != nil {
		return "", fmt.Errorf("failed to serialize identity result: %w", err)
	}

	identity, err := CanonicalJSON(resultBz)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize identity result: %w", err)
	}

	return identity, nil
}

// Close releases the provider's transport resources.
func (p *Provider) Close() {
	p.transport.close()
}
