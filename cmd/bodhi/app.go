package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// appCmd launches the native desktop shell. The shell itself is a
// platform/UI concern outside this module; the subcommand exists so
// `bodhi --help` matches the full CLI surface.
func appCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "app",
		Short: "launch as native app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "native app shell is not built into this binary; use `bodhi serve` instead")
			return nil
		},
	}
}
