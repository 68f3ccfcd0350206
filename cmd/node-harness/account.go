package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	var tx bool

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Generate a random account for the configured network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, _, err := newHarness(cmd)
			if err != nil {
				return err
			}

			var acc any
			if tx {
				acc, err = h.RandomTxAccount()
			} else {
				acc, err = h.RandomAccount()
			}
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(acc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tx, "tx", false, "Include transaction bookkeeping fields")
	return cmd
}
