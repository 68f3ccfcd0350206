// node-harness drives a relay or forger node for integration testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/b-harvest/node-harness/internal/version"
)

// Flag variables for CLI overrides
var (
	flagConfigPath string
	flagFixtures   string
	flagNetwork    string
	flagBaseURL    string
	flagVerbose    bool
	flagNoColor    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "node-harness",
		Short: "Integration test driver for relay and forger nodes",
		Long: `node-harness starts nodes from a fixture set, waits for blocks,
announces synthetic peers and generates random accounts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfigPath, "config", "", "Config file path (default: ./node-harness.toml)")
	pf.StringVar(&flagFixtures, "fixtures", "", "Fixture directory (overrides the embedded set)")
	pf.StringVar(&flagNetwork, "network", "", "Embedded fixture network (default: testnet)")
	pf.StringVar(&flagBaseURL, "base-url", "", "Node base URL (default: http://localhost:<server port>)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Show debug output")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newRelayCmd(),
		newForgerCmd(),
		newHeightCmd(),
		newWaitBlockCmd(),
		newAddPeersCmd(),
		newAccountCmd(),
		newConfigCmd(),
		newFixturesCmd(),
		version.NewCmd(),
	)
	return rootCmd
}
