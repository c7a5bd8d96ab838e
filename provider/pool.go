package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pokt-network/poktroll/pkg/polylog"

	"github.com/buildwithgrove/versus/qos/jsonrpc"
)

const (
	// defaultIdentityMethod is the JSON-RPC method used to fetch each
	// provider's network/chain identity during the pool pre-check.
	defaultIdentityMethod = jsonrpc.Method("eth_chainId")

	// defaultIdentityTimeout bounds the identity pre-check call per endpoint,
	// so one unreachable endpoint cannot stall pool construction.
	defaultIdentityTimeout = 10 * time.Second
)

// PoolConfig carries the knobs for pool construction.
type PoolConfig struct {
	// IdentityMethod is the RPC method whose result establishes a provider's
	// network identity. Defaults to eth_chainId.
	IdentityMethod jsonrpc.Method

	// IdentityTimeout bounds each identity pre-check call.
	IdentityTimeout time.Duration

	// HTTPClient is shared across all http(s) providers. Optional.
	HTTPClient *http.Client
}

func (c *PoolConfig) hydrateDefaults() {
	if c.IdentityMethod == "" {
		c.IdentityMethod = defaultIdentityMethod
	}
	if c.IdentityTimeout == 0 {
		c.IdentityTimeout = defaultIdentityTimeout
	}
}

// Pool holds the providers that survived the consistency pre-check.
// Order matches the order of the supplied addresses: the first surviving
// provider is the baseline for the comparison pass.
type Pool struct {
	Providers []*Provider

	// Identity is the shared network identity all pooled providers reported.
	Identity string

	// Warnings records every endpoint dropped during construction and why.
	Warnings []string
}

// BuildPool attempts each supplied address in order: parse it, connect, and
// fetch the provider's network identity. Failures are recorded as warnings
// and the endpoint is skipped; pool construction never fails because of a
// single bad endpoint. Providers whose identity differs from the first
// successfully-identified provider's are dropped as invalid comparison
// targets.
//
// Fewer than 2 survivors is a soft condition left to the caller (single
// provider: echo mode with no comparison). Zero survivors is an error.
func BuildPool(ctx context.Context, logger polylog.Logger, addrs []string, cfg PoolConfig) (*Pool, error) {
	cfg.hydrateDefaults()
	logger = logger.With("component", "pool")

	pool := &Pool{}

	for _, addr := range addrs {
		p, err := NewProvider(logger, addr, cfg.HTTPClient)
		if err != nil {
			pool.warn(logger, fmt.Sprintf("skipping endpoint %s: %v", addr, err))
			continue
		}

		identityCtx, cancel := context.WithTimeout(ctx, cfg.IdentityTimeout)
		identity, err := p.fetchIdentity(identityCtx, cfg.IdentityMethod)
		cancel()
		if err != nil {
			pool.warn(logger, fmt.Sprintf("skipping endpoint %s: %v", addr, err))
			p.Close()
			continue
		}
		p.identity = identity

		// The first successfully-identified provider establishes the
		// reference identity for the run.
		if len(pool.Providers) == 0 {
			pool.Identity = identity
		} else if identity != pool.Identity {
			pool.warn(logger, fmt.Sprintf(
				"dropping endpoint %s: network identity %s does not match reference identity %s",
				addr, identity, pool.Identity,
			))
			p.Close()
			continue
		}

		pool.Providers = append(pool.Providers, p)
	}

	if len(pool.Providers) == 0 {
		return nil, fmt.Errorf("no usable providers: all %d endpoint(s) were rejected", len(addrs))
	}

	if len(pool.Providers) == 1 {
		logger.Warn().Msg("only one provider survived the pre-check: proceeding without comparison")
	}

	return pool, nil
}

// Baseline returns the reference provider for the comparison pass.
func (pool *Pool) Baseline() *Provider {
	return pool.Providers[0]
}

// Close releases all pooled providers' transports.
func (pool *Pool) Close() {
	for _, p := range pool.Providers {
		p.Close()
	}
}

func (pool *Pool) warn(logger polylog.Logger, msg string) {
	logger.Warn().Msg(msg)
	pool.Warnings = append(pool.Warnings, msg)
}
