package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/playbot/internal/chat"
	"github.com/michaelbrown/playbot/internal/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session with the bot",
	Long: `Type chat messages as you would in a channel; messages starting with the
command prefix are answered by the bot. Code blocks may span several lines:
input continues until the closing fence.

Examples:
  playbot chat
  playbot chat --config ./playbot.yaml`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	d := newDispatcher(cfg)

	fmt.Printf("playbot - interactive chat\n")
	fmt.Printf("Playground: %s | Prefix: %s\n", cfg.Playground.ExecuteURL, cfg.Chat.Prefix)
	fmt.Printf("Type %shelp for bot commands, /quit to exit\n\n", cfg.Chat.Prefix)

	home, _ := os.UserHomeDir()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36myou>\033[0m ",
		HistoryFile:     filepath.Join(home, ".playbot_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// Ctrl+C while a request is in flight cancels only that request.
	var inflight cancelSlot
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			inflight.cancel()
		}
	}()

	for {
		input, err := readMessage(rl)
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleLocalCommand(input) {
				continue
			}
		}

		reqCtx, cancel := context.WithCancel(context.Background())
		inflight.set(cancel)
		printReply(reqCtx, d, input)
		inflight.set(nil)
		cancel()
	}
}

// cancelSlot holds the cancel func of the request in flight, if any.
type cancelSlot struct {
	mu sync.Mutex
	fn context.CancelFunc
}

func (s *cancelSlot) set(fn context.CancelFunc) {
	s.mu.Lock()
	s.fn = fn
	s.mu.Unlock()
}

func (s *cancelSlot) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fn != nil {
		s.fn()
	}
}

// readMessage reads one message, continuing over lines while a ``` fence is open.
func readMessage(rl *readline.Instance) (string, error) {
	var lines []string
	prompt := rl.Config.Prompt
	defer rl.SetPrompt(prompt)

	for {
		line, err := rl.Readline()
		if err != nil {
			return "", err
		}
		lines = append(lines, line)

		msg := strings.Join(lines, "\n")
		if strings.Count(msg, "```")%2 == 0 {
			return msg, nil
		}
		rl.SetPrompt("\033[90m...\033[0m  ")
	}
}

func printReply(ctx context.Context, d *chat.Dispatcher, input string) {
	reply, handled, err := d.Handle(ctx, input)
	switch {
	case err != nil && ctx.Err() != nil:
		fmt.Println("(interrupted)")
	case err != nil:
		fmt.Printf("\033[31merror: %s\033[0m\n\n", err)
	case !handled:
		fmt.Printf("\033[90m(not a command)\033[0m\n\n")
	default:
		fmt.Printf("\n\033[32mplaybot>\033[0m %s\n\n", reply)
	}
}

func handleLocalCommand(input string) bool {
	switch strings.ToLower(strings.Fields(input)[0]) {
	case "/quit", "/exit", "/q":
		fmt.Println("Goodbye!")
		os.Exit(0)
	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /help     - Show this help")
		fmt.Println("  /quit     - Exit")
		fmt.Println()
	default:
		fmt.Printf("Unknown command: %s (try /help)\n\n", input)
	}
	return true
}
