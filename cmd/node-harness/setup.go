package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/b-harvest/node-harness/internal/config"
	"github.com/b-harvest/node-harness/internal/harness"
	"github.com/b-harvest/node-harness/internal/output"
)

// loadConfig merges defaults, the config file, the environment and the
// command line flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader(flagConfigPath).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	applyFlagOverrides(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlagOverrides applies CLI flags to config (highest priority).
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("fixtures") {
		cfg.Harness.FixturesDir = flagFixtures
	}
	if flags.Changed("network") {
		cfg.Harness.Network = flagNetwork
	}
	if flags.Changed("base-url") {
		cfg.Harness.BaseURL = flagBaseURL
	}
}

// newLogger returns the console logger configured from the global flags.
func newLogger() *output.Logger {
	l := output.NewLogger()
	l.SetVerbose(flagVerbose)
	if flagNoColor {
		l.SetNoColor(true)
	}
	return l
}

// newHarness builds a harness from the effective configuration.
func newHarness(cmd *cobra.Command) (*harness.Harness, *output.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger()
	nodeLogger := output.NewNodeLogger(cmd.ErrOrStderr())
	nodeLogger.SetColor(!flagNoColor)

	h, err := harness.New(harness.Options{
		Config:     cfg,
		Logger:     logger,
		NodeLogger: nodeLogger,
	})
	if err != nil {
		return nil, nil, err
	}
	return h, logger, nil
}
