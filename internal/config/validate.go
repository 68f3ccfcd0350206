package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidAcceptanceRules are the allowed polling.acceptance values.
var ValidAcceptanceRules = []string{AcceptExact, AcceptAtLeast}

// Validate validates the configuration and returns an error if invalid.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Harness.Network == "" && cfg.Harness.FixturesDir == "" {
		errs = append(errs, "either network or fixtures_dir must be set")
	}

	if cfg.Harness.BaseURL != "" {
		u, err := url.Parse(cfg.Harness.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid base_url %q", cfg.Harness.BaseURL))
		}
	}

	if cfg.Polling.Interval <= 0 {
		errs = append(errs, "polling interval must be positive")
	}
	validRule := false
	for _, rule := range ValidAcceptanceRules {
		if cfg.Polling.Acceptance == rule {
			validRule = true
			break
		}
	}
	if !validRule {
		errs = append(errs, fmt.Sprintf("invalid acceptance %q (must be one of: %s)",
			cfg.Polling.Acceptance, strings.Join(ValidAcceptanceRules, ", ")))
	}

	if len(cfg.Peers.OperatingSystems) == 0 {
		errs = append(errs, "peers.operating_systems must not be empty")
	}
	if len(cfg.Peers.Ports) == 0 {
		errs = append(errs, "peers.ports must not be empty")
	}
	for _, p := range cfg.Peers.Ports {
		if p < 1 || p > 65535 {
			errs = append(errs, fmt.Sprintf("peer port %d must be between 1 and 65535", p))
		}
	}
	if cfg.Peers.Host == "" {
		errs = append(errs, "peers.host is required")
	}

	if cfg.Forger.SeedPeer == "" {
		errs = append(errs, "forger.seed_peer is required")
	}

	if cfg.Timeouts.Request < 0 {
		errs = append(errs, "request timeout must be non-negative")
	}
	if cfg.Timeouts.Shutdown < 0 {
		errs = append(errs, "shutdown timeout must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
