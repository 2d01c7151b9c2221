package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/playbot/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run <message>",
	Short: "Answer a single chat message and exit",
	Long: `Run one chat message through the bot and print the reply. Pass "-" to
read the message from stdin.

Examples:
  playbot run '?eval ` + "`1 + 1`" + `'
  cat snippet.md | playbot run -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	message := strings.Join(args, " ")
	if message == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		message = string(data)
	}

	reply, handled, err := newDispatcher(cfg).Handle(context.Background(), message)
	if err != nil {
		return err
	}
	if !handled {
		return fmt.Errorf("message does not start with the command prefix %q", cfg.Chat.Prefix)
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
