package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/michaelbrown/playbot/internal/bus"
	"github.com/michaelbrown/playbot/internal/config"
	"github.com/michaelbrown/playbot/internal/server"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the playbot HTTP server",
	Long: `Start the playbot HTTP server with REST API and WebSocket support.
When nats.url is configured the commands are also served as a NATS micro
service.

Examples:
  playbot serve
  playbot serve --port 9090
  PLAYBOT_NATS_URL=nats://localhost:4222 playbot serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	d := newDispatcher(cfg)

	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("playbot"))
		if err != nil {
			return fmt.Errorf("connecting to nats: %w", err)
		}
		defer nc.Drain()

		svc, err := bus.Start(nc, d, cfg.NATS.SubjectPrefix, cfg.Playground.Timeout, logger.Named("bus"))
		if err != nil {
			return err
		}
		defer svc.Stop()
	}

	port := cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	srv := server.New(d, logger.Named("server"))

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Warn("shutdown failed", zap.Error(err))
		}
	}()

	return srv.Start(port)
}
