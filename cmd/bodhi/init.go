package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bodhi/internal/config"
)

// initCmd bootstraps $BODHI_HOME's directory layout: the aliases
// catalog and the SQLite conversation store live under it.
func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "initialize the configs folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Home.BodhiHome, 0o755); err != nil {
				return fmt.Errorf("create bodhi home: %w", err)
			}
			if err := os.MkdirAll(cfg.Home.BodhiHome+"/aliases", 0o755); err != nil {
				return fmt.Errorf("create aliases folder: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", cfg.Home.BodhiHome)
			return nil
		},
	}
}
