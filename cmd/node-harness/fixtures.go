package main

import (
	"github.com/spf13/cobra"

	"github.com/b-harvest/node-harness/internal/fixtures"
)

func newFixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Manage fixture sets",
	}
	cmd.AddCommand(newFixturesExportCmd())
	return cmd
}

func newFixturesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export DIR",
		Short: "Write the configured fixture set to DIR",
		Long: `Writes the fixture set selected by --network or --fixtures to DIR, in the
layout --fixtures reads. Use it to start a custom set from the embedded one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			set, err := fixtures.Resolve(cfg.Harness.FixturesDir, cfg.Harness.Network)
			if err != nil {
				return err
			}
			if err := fixtures.Export(set, args[0]); err != nil {
				return err
			}
			newLogger().Success("Exported %s fixtures to %s", set.Network.Name, args[0])
			return nil
		},
	}
}
