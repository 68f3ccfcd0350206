package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the default config file name, looked up in the working
// directory.
const ConfigFileName = "node-harness.toml"

// Environment variable names
const (
	EnvNetwork        = "NODE_HARNESS_NETWORK"
	EnvFixturesDir    = "NODE_HARNESS_FIXTURES"
	EnvBaseURL        = "NODE_HARNESS_BASE_URL"
	EnvLogLevel       = "NODE_HARNESS_LOG_LEVEL"
	EnvSoftFail       = "NODE_HARNESS_SOFT_FAIL"
	EnvPollInterval   = "NODE_HARNESS_POLL_INTERVAL"
	EnvAcceptance     = "NODE_HARNESS_ACCEPTANCE"
	EnvSeedPeer       = "NODE_HARNESS_SEED_PEER"
	EnvRequestTimeout = "NODE_HARNESS_REQUEST_TIMEOUT"
)

// Loader loads configuration from file, environment, and applies defaults.
type Loader struct {
	configPath string // explicit config path (empty = use default)
}

// NewLoader creates a new config loader.
// configPath is an explicit config file path (empty = ./node-harness.toml).
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load loads configuration with priority: defaults < file < env.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	fileCfg, err := l.loadFile()
	if err != nil {
		return nil, err
	}

	if fileCfg != nil {
		if err := mergeFileConfig(cfg, fileCfg); err != nil {
			return nil, err
		}
	}

	applyEnvVars(cfg)

	return cfg, nil
}

// loadFile loads and parses the config file.
// A missing default file is not an error; a missing explicit file is.
func (l *Loader) loadFile() (*FileConfig, error) {
	configPath := l.configPath
	if configPath == "" {
		configPath = ConfigFileName
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && l.configPath == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg FileConfig
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("invalid TOML in %s: %w", configPath, err)
	}

	return &fileCfg, nil
}

// mergeFileConfig merges non-nil FileConfig values into Config.
func mergeFileConfig(cfg *Config, file *FileConfig) error {
	// Harness
	if file.Harness.Network != nil {
		cfg.Harness.Network = *file.Harness.Network
	}
	if file.Harness.FixturesDir != nil {
		cfg.Harness.FixturesDir = *file.Harness.FixturesDir
	}
	if file.Harness.BaseURL != nil {
		cfg.Harness.BaseURL = *file.Harness.BaseURL
	}
	if file.Harness.LogLevel != nil {
		cfg.Harness.LogLevel = *file.Harness.LogLevel
	}
	if file.Harness.SoftFail != nil {
		cfg.Harness.SoftFail = *file.Harness.SoftFail
	}

	// Polling
	if file.Polling.Interval != nil {
		d, err := time.ParseDuration(*file.Polling.Interval)
		if err != nil {
			return fmt.Errorf("invalid polling.interval %q: %w", *file.Polling.Interval, err)
		}
		cfg.Polling.Interval = d
	}
	if file.Polling.Acceptance != nil {
		cfg.Polling.Acceptance = *file.Polling.Acceptance
	}

	// Peers
	if file.Peers.OperatingSystems != nil {
		cfg.Peers.OperatingSystems = file.Peers.OperatingSystems
	}
	if file.Peers.Ports != nil {
		cfg.Peers.Ports = file.Peers.Ports
	}
	if file.Peers.Host != nil {
		cfg.Peers.Host = *file.Peers.Host
	}

	// Forger
	if file.Forger.SeedPeer != nil {
		cfg.Forger.SeedPeer = *file.Forger.SeedPeer
	}

	// Timeouts
	if file.Timeouts.Request != nil {
		d, err := time.ParseDuration(*file.Timeouts.Request)
		if err != nil {
			return fmt.Errorf("invalid timeouts.request %q: %w", *file.Timeouts.Request, err)
		}
		cfg.Timeouts.Request = d
	}
	if file.Timeouts.Shutdown != nil {
		d, err := time.ParseDuration(*file.Timeouts.Shutdown)
		if err != nil {
			return fmt.Errorf("invalid timeouts.shutdown %q: %w", *file.Timeouts.Shutdown, err)
		}
		cfg.Timeouts.Shutdown = d
	}

	return nil
}

// applyEnvVars applies environment variable overrides to config.
func applyEnvVars(cfg *Config) {
	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.Harness.Network = v
	}
	if v := os.Getenv(EnvFixturesDir); v != "" {
		cfg.Harness.FixturesDir = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.Harness.BaseURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Harness.LogLevel = v
	}
	if v := os.Getenv(EnvSoftFail); v != "" {
		cfg.Harness.SoftFail = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Polling.Interval = d
		} else if ms, err := strconv.Atoi(v); err == nil {
			cfg.Polling.Interval = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv(EnvAcceptance); v != "" {
		cfg.Polling.Acceptance = v
	}
	if v := os.Getenv(EnvSeedPeer); v != "" {
		cfg.Forger.SeedPeer = v
	}
	if v := os.Getenv(EnvRequestTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeouts.Request = d
		}
	}
}
