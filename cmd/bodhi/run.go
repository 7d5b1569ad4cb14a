package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bodhi/internal/chatcompletion"
	"bodhi/internal/config"
	"bodhi/internal/engine"
	"bodhi/internal/hub"
	"bodhi/internal/interactive"
	"bodhi/internal/store"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <alias>",
		Short: "Run the given model alias in interactive mode.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias := args[0]

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			hubAdapter, err := hub.New(cfg.Home.BodhiHome, cfg.Home.HFHome)
			if err != nil {
				return err
			}
			conversations, err := store.Open(filepath.Join(cfg.Home.BodhiHome, "bodhi.db"))
			if err != nil {
				return err
			}
			defer conversations.Close()

			pipeline := chatcompletion.New(hubAdapter, engine.New())

			repl := interactive.New(pipeline, conversations, alias, cmd.InOrStdin(), cmd.OutOrStdout(), int(os.Stdin.Fd()))
			return repl.Run(context.Background())
		},
	}
}
