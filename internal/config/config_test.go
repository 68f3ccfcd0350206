package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-harvest/node-harness/internal/height"
	"github.com/b-harvest/node-harness/internal/lifecycle"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "testnet", cfg.Harness.Network)
	assert.False(t, cfg.Harness.SoftFail)
	assert.Equal(t, time.Second, cfg.Polling.Interval)
	assert.Equal(t, AcceptExact, cfg.Polling.Acceptance)
	assert.Equal(t, []string{"win32", "win64", "ubuntu", "debian", "centos"}, cfg.Peers.OperatingSystems)
	assert.Equal(t, []int{4003}, cfg.Peers.Ports)
	assert.Equal(t, "http://127.0.0.1:4000", cfg.Forger.SeedPeer)
	require.NoError(t, Validate(cfg))
}

func TestFileConfigIsEmpty(t *testing.T) {
	fc := &FileConfig{}
	assert.True(t, fc.IsEmpty())

	host := "127.0.0.1"
	fc.Peers.Host = &host
	assert.False(t, fc.IsEmpty())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
[harness]
network = "devnet"
soft_fail = true

[polling]
interval = "250ms"
acceptance = "at-least"

[peers]
ports = [4003, 4004]
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "devnet", cfg.Harness.Network)
	assert.True(t, cfg.Harness.SoftFail)
	assert.Equal(t, 250*time.Millisecond, cfg.Polling.Interval)
	assert.Equal(t, AcceptAtLeast, cfg.Polling.Acceptance)
	assert.Equal(t, []int{4003, 4004}, cfg.Peers.Ports)

	// unset values keep their defaults
	assert.Equal(t, "localhost", cfg.Peers.Host)
	assert.Len(t, cfg.Peers.OperatingSystems, 5)
}

func TestLoaderEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[harness]
network = "devnet"

[polling]
interval = "2s"
`)
	t.Setenv(EnvNetwork, "mainnet")
	t.Setenv(EnvPollInterval, "500")
	t.Setenv(EnvSoftFail, "1")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.Harness.Network)
	assert.Equal(t, 500*time.Millisecond, cfg.Polling.Interval)
	assert.True(t, cfg.Harness.SoftFail)
}

func TestLoaderMissingFiles(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = NewLoader(filepath.Join(t.TempDir(), "missing.toml")).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoaderInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad toml", "[harness\nnetwork=", "invalid TOML"},
		{"bad interval", "[polling]\ninterval = \"soon\"", "invalid polling.interval"},
		{"bad request timeout", "[timeouts]\nrequest = \"x\"", "invalid timeouts.request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(writeConfig(t, tt.content)).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"no network", func(c *Config) { c.Harness.Network = "" }, "either network or fixtures_dir"},
		{"bad base url", func(c *Config) { c.Harness.BaseURL = "localhost" }, "invalid base_url"},
		{"zero interval", func(c *Config) { c.Polling.Interval = 0 }, "polling interval must be positive"},
		{"bad acceptance", func(c *Config) { c.Polling.Acceptance = "any" }, "invalid acceptance"},
		{"no os", func(c *Config) { c.Peers.OperatingSystems = nil }, "operating_systems must not be empty"},
		{"bad port", func(c *Config) { c.Peers.Ports = []int{70000} }, "peer port 70000"},
		{"no seed", func(c *Config) { c.Forger.SeedPeer = "" }, "seed_peer is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultsMatchComponents(t *testing.T) {
	for _, name := range ValidAcceptanceRules {
		rule, err := height.ParseAcceptanceRule(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, rule.String())
	}
	assert.Equal(t, lifecycle.DefaultSeedPeer, DefaultConfig().Forger.SeedPeer)
}

// chdir changes the working directory for the duration of the test,
// restoring the previous one on cleanup (equivalent to t.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("chdir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("chdir restore: %v", err)
		}
	})
}
