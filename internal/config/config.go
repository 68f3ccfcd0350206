// Package config holds the harness configuration.
package config

import (
	"slices"
	"time"

	"github.com/b-harvest/node-harness/internal/client"
	"github.com/b-harvest/node-harness/internal/height"
	"github.com/b-harvest/node-harness/internal/lifecycle"
	"github.com/b-harvest/node-harness/internal/peers"
)

// Acceptance rules for the block-height wait loop.
const (
	// AcceptExact only accepts a polled height of exactly start+1.
	AcceptExact = height.ExactIncrementName
	// AcceptAtLeast accepts any polled height above start.
	AcceptAtLeast = height.AtLeastName
)

// DefaultSeedPeer is the peer a forger process reports to.
const DefaultSeedPeer = lifecycle.DefaultSeedPeer

// Config is the single source of truth for harness configuration.
// Priority: defaults < config file < environment variables < CLI flags
type Config struct {
	Harness  HarnessConfig `toml:"harness"`
	Polling  PollingConfig `toml:"polling"`
	Peers    PeersConfig   `toml:"peers"`
	Forger   ForgerConfig  `toml:"forger"`
	Timeouts TimeoutConfig `toml:"timeouts"`
}

// HarnessConfig selects the node under test and how the harness talks to it.
type HarnessConfig struct {
	Network     string `toml:"network"`      // embedded fixture set name
	FixturesDir string `toml:"fixtures_dir"` // overrides the embedded set when set
	BaseURL     string `toml:"base_url"`     // empty = http://localhost:<server.port>
	LogLevel    string `toml:"log_level"`    // node process log level override
	SoftFail    bool   `toml:"soft_fail"`    // log request failures instead of returning them
}

// PollingConfig controls the block-height wait loop.
type PollingConfig struct {
	Interval   time.Duration `toml:"interval"`
	Acceptance string        `toml:"acceptance"`
}

// PeersConfig controls synthetic peer handshakes.
type PeersConfig struct {
	OperatingSystems []string `toml:"operating_systems"`
	Ports            []int    `toml:"ports"`
	Host             string   `toml:"host"`
}

// ForgerConfig holds forger process settings.
type ForgerConfig struct {
	SeedPeer string `toml:"seed_peer"`
}

// TimeoutConfig holds various timeout settings.
type TimeoutConfig struct {
	Request  time.Duration `toml:"request"`
	Shutdown time.Duration `toml:"shutdown"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Harness: HarnessConfig{
			Network: "testnet",
		},
		Polling: PollingConfig{
			Interval:   height.DefaultPollInterval,
			Acceptance: AcceptExact,
		},
		Peers: PeersConfig{
			OperatingSystems: slices.Clone(peers.DefaultOperatingSystems),
			Ports:            slices.Clone(peers.DefaultPorts),
			Host:             "localhost",
		},
		Forger: ForgerConfig{
			SeedPeer: DefaultSeedPeer,
		},
		Timeouts: TimeoutConfig{
			Request:  client.DefaultTimeout,
			Shutdown: 10 * time.Second,
		},
	}
}
