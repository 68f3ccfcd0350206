package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/b-harvest/node-harness/internal/harness"
	"github.com/b-harvest/node-harness/internal/output"
)

func newRelayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Run a simulated relay until interrupted",
		Long: `Starts an in-process relay from the fixture set, serves its public API and
peer endpoints, and stops it on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, false)
		},
	}
}

func newForgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forger",
		Short: "Run a simulated relay and a forger until interrupted",
		Long: `Starts an in-process relay, then a forger that submits one block per block
time to the configured seed peer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd, true)
		},
	}
}

func runNode(cmd *cobra.Command, forge bool) error {
	h, logger, err := newHarness(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := h.Setup(ctx); err != nil {
		_ = h.Node().Close()
		return fmt.Errorf("relay failed to start: %w", err)
	}
	relay := h.Orchestrator.Relay()
	logger.Success("Relay %s running on %s", relay.Label(), h.BaseURL)

	if forge {
		s, err := h.StartForger(ctx)
		if err == nil && s.Err() != nil {
			err = s.Err()
		}
		if err != nil {
			_ = h.Teardown(context.Background())
			return fmt.Errorf("forger failed to start: %w", err)
		}
		logger.Success("Forger %s started with %d delegates", s.Label(), s.Forgers())
	}

	printNodeSummary(logger, h)

	<-ctx.Done()
	logger.Info("Shutting down...")
	return h.Teardown(context.Background())
}

func printNodeSummary(logger output.LoggerInterface, h *harness.Harness) {
	logger.Println(output.Separator())
	logger.Println("  network:   %s", h.Network)
	logger.Println("  nethash:   %s", h.Fixtures.Network.Nethash)
	logger.Println("  base url:  %s", h.BaseURL)
	if n := h.Node(); n != nil {
		logger.Println("  height:    %d", n.Height())
	}
	logger.Println(output.Separator())
}
