package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/buildwithgrove/versus/qos/jsonrpc"
)

/* --------------------------------- Versus Config Defaults -------------------------------- */

const (
	// defaultMaxCount caps a run at a sane ceiling when no limit is given.
	defaultMaxCount = 1_000

	// defaultCallTimeout is deliberately generous: the point of the per-call
	// timeout is to stop one unresponsive provider from stalling the whole
	// aggregation step, not to police latency.
	defaultCallTimeout = 30 * time.Second

	// defaultIdentityMethod establishes each provider's chain identity
	// during the pool pre-check.
	defaultIdentityMethod = "eth_chainId"
)

/* --------------------------------- Versus Config Struct -------------------------------- */

// VersusConfig is the top level struct holding all the configuration details
// needed to run one comparison pass. It is parsed from an optional YAML
// config file; CLI flags override any field set here.
type VersusConfig struct {
	// Providers lists the endpoint addresses under test. Order matters:
	// the first address that passes pool validation becomes the baseline.
	Providers []string `yaml:"providers"`

	// MaxCount caps how many request lines are broadcast.
	MaxCount int `yaml:"max_count"`

	// CallTimeout bounds each individual RPC call.
	CallTimeout time.Duration `yaml:"call_timeout"`

	// IdentityMethod is the RPC method used for the chain-identity pre-check.
	IdentityMethod string `yaml:"identity_method"`

	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string `yaml:"metrics_addr"`

	Logger LoggerConfig `yaml:"logger_config"`
}

// LoadVersusConfigFromYAML reads a YAML configuration file from the specified
// path and unmarshals its content into a VersusConfig instance.
func LoadVersusConfigFromYAML(path string) (VersusConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return VersusConfig{}, err
	}

	var config VersusConfig
	if err = yaml.Unmarshal(data, &config); err != nil {
		return VersusConfig{}, err
	}

	config.HydrateDefaults()

	return config, config.Validate()
}

// DefaultVersusConfig returns the configuration used when no YAML file is supplied.
func DefaultVersusConfig() VersusConfig {
	var config VersusConfig
	config.HydrateDefaults()
	return config
}

/* --------------------------------- Versus Config Methods -------------------------------- */

// HydrateDefaults assigns default values to unset optional fields.
func (c *VersusConfig) HydrateDefaults() {
	if c.MaxCount == 0 {
		c.MaxCount = defaultMaxCount
	}
	if c.CallTimeout == 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.IdentityMethod == "" {
		c.IdentityMethod = defaultIdentityMethod
	}
	c.Logger.hydrateLoggerDefaults()
}

// Validate ensures the configuration can drive a run.
// The provider list may still be empty here: positional CLI args are
// appended after the config file is loaded, and the pool build performs
// per-endpoint validation.
func (c VersusConfig) Validate() error {
	if c.MaxCount < 0 {
		return fmt.Errorf("max_count must be positive, got %d", c.MaxCount)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("call_timeout must be positive, got %s", c.CallTimeout)
	}
	if err := c.Logger.Validate(); err != nil {
		return err
	}
	return nil
}

// GetIdentityMethod returns the identity method as a typed JSON-RPC method.
func (c VersusConfig) GetIdentityMethod() jsonrpc.Method {
	return jsonrpc.Method(c.IdentityMethod)
}
