package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/b-harvest/node-harness/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect harness configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Displays the effective configuration after merging defaults, file, environment variables and flags.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Effective node-harness configuration:")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[harness]")
	fmt.Fprintf(w, "  network      = %q\n", cfg.Harness.Network)
	fmt.Fprintf(w, "  fixtures_dir = %q\n", cfg.Harness.FixturesDir)
	fmt.Fprintf(w, "  base_url     = %q\n", cfg.Harness.BaseURL)
	fmt.Fprintf(w, "  log_level    = %q\n", cfg.Harness.LogLevel)
	fmt.Fprintf(w, "  soft_fail    = %v\n", cfg.Harness.SoftFail)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[polling]")
	fmt.Fprintf(w, "  interval   = %s\n", cfg.Polling.Interval)
	fmt.Fprintf(w, "  acceptance = %q\n", cfg.Polling.Acceptance)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[peers]")
	fmt.Fprintf(w, "  operating_systems = %q\n", cfg.Peers.OperatingSystems)
	fmt.Fprintf(w, "  ports             = %v\n", cfg.Peers.Ports)
	fmt.Fprintf(w, "  host              = %q\n", cfg.Peers.Host)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[forger]")
	fmt.Fprintf(w, "  seed_peer = %q\n", cfg.Forger.SeedPeer)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[timeouts]")
	fmt.Fprintf(w, "  request  = %s\n", cfg.Timeouts.Request)
	fmt.Fprintf(w, "  shutdown = %s\n", cfg.Timeouts.Shutdown)
}
