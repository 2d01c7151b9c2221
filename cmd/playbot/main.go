package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/michaelbrown/playbot/internal/chat"
	"github.com/michaelbrown/playbot/internal/commands"
	"github.com/michaelbrown/playbot/internal/config"
	"github.com/michaelbrown/playbot/internal/playground"
)

var (
	configFlag  string
	verboseFlag bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "playbot",
	Short: "playbot - run rust snippets from chat",
	Long: `playbot answers chat commands by running rust code on the rust playground.

Commands:
  ?play  compile and run code
  ?eval  evaluate an expression and print its Debug form
  ?miri  run code under Miri to detect undefined behavior

It can be driven from a terminal, over HTTP/WebSocket, or through NATS.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verboseFlag {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: ./playbot.yaml or ~/.playbot/playbot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
}

// newDispatcher wires the playground client, commands and dispatcher from cfg.
func newDispatcher(cfg *config.Config) *chat.Dispatcher {
	client := playground.NewClient(cfg.Endpoints(), cfg.Playground.Timeout, logger.Named("playground"))
	runner := commands.NewRunner(client, commands.RunnerConfig{
		ShareURL:         cfg.Playground.ShareURL,
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		Prefix:           cfg.Chat.Prefix,
	}, logger.Named("runner"))

	registry := commands.NewRegistry(cfg.Chat.Prefix)
	registry.Register(commands.PlaygroundCommands(runner)...)
	registry.Register(commands.NewHelpCommand(registry))

	return chat.NewDispatcher(registry, logger.Named("chat"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
