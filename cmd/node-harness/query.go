package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/b-harvest/node-harness/internal/output"
)

func newHeightCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "height",
		Short: "Print the current block height of the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, _, err := newHarness(cmd)
			if err != nil {
				return err
			}
			height, err := h.GetHeight(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), height)
			return nil
		},
	}
}

func newWaitBlockCmd() *cobra.Command {
	var fromHeight int64

	cmd := &cobra.Command{
		Use:   "wait-block",
		Short: "Wait for the next block and print its height",
		Long: `Polls the node until the block after --height appears. Without --height the
current height is queried first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, _, err := newHarness(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			start := fromHeight
			if !cmd.Flags().Changed("height") {
				if start, err = h.GetHeight(ctx); err != nil {
					return err
				}
			}

			spinner := output.NewStatusSpinnerTo(cmd.ErrOrStderr())
			spinner.Start(fmt.Sprintf("Waiting for block after height %d", start))
			next, err := h.WaitForNewBlock(ctx, start)
			spinner.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}

	cmd.Flags().Int64Var(&fromHeight, "height", 0, "Height to wait past (default: current height)")
	return cmd
}

func newAddPeersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-peers N",
		Short: "Announce N synthetic peers to the node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid peer count %q", args[0])
			}

			h, logger, err := newHarness(cmd)
			if err != nil {
				return err
			}

			peer, err := h.AddPeers(cmd.Context(), n)
			if err != nil {
				return err
			}
			logger.Success("Announced %d peers", n)
			if n > 0 {
				logger.Println("  last: os=%s version=%s port=%d", peer.OperatingSystem, peer.ClientVersion, peer.Port)
			}
			return nil
		},
	}
}
