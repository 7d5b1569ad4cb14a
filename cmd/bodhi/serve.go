package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bodhi/internal/chatcompletion"
	"bodhi/internal/config"
	"bodhi/internal/engine"
	"bodhi/internal/hub"
	"bodhi/internal/store"
	bodhihttp "bodhi/internal/transport/http"
)

func serveCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the OpenAI compatible REST API server and Web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port < 1 || port > 65535 {
				return fmt.Errorf("invalid value '%d' for '-p <PORT>': %d is not in 1..=65535", port, port)
			}
			return runServe(host, port)
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "127.0.0.1", "Start with the given host, e.g. '0.0.0.0' to allow traffic from any ip on network")
	cmd.Flags().IntVarP(&port, "port", "p", 1135, "Start on the given port")
	return cmd
}

func runServe(host string, port int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Server.Host = host
	cfg.Server.Port = port

	hubAdapter, err := hub.New(cfg.Home.BodhiHome, cfg.Home.HFHome)
	if err != nil {
		return fmt.Errorf("init hub adapter: %w", err)
	}
	conversations, err := store.Open(filepath.Join(cfg.Home.BodhiHome, "bodhi.db"))
	if err != nil {
		return fmt.Errorf("open conversation store: %w", err)
	}
	defer conversations.Close()

	smc := engine.New()
	pipeline := chatcompletion.New(hubAdapter, smc)

	logger := logrus.New()
	server := bodhihttp.NewServer(cfg, logger, pipeline, hubAdapter, conversations)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(server.Start)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		select {
		case <-quit:
		case <-ctx.Done():
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout())
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
