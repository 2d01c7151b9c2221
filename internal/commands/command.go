// Package commands implements the bot's chat commands and the registry that
// routes parsed invocations to them.
package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand is returned by Dispatch for names nobody registered.
var ErrUnknownCommand = errors.New("unknown command")

// ErrMissingCodeBlock means the command body held no fenced code.
var ErrMissingCodeBlock = errors.New("missing code block")

// Invocation is one parsed command message.
type Invocation struct {
	ID     string            `json:"id,omitempty"`
	Name   string            `json:"name"`
	Params map[string]string `json:"params,omitempty"`
	Args   []string          `json:"args,omitempty"`
	Body   string            `json:"body,omitempty"`
}

// Command handles one named chat command and produces a single reply.
type Command interface {
	Name() string
	Description() string
	Usage() string
	Handle(ctx context.Context, inv *Invocation) (string, error)
}

type funcCommand struct {
	name        string
	description string
	usage       string
	handle      func(ctx context.Context, inv *Invocation) (string, error)
}

func (c *funcCommand) Name() string        { return c.name }
func (c *funcCommand) Description() string { return c.description }
func (c *funcCommand) Usage() string       { return c.usage }

func (c *funcCommand) Handle(ctx context.Context, inv *Invocation) (string, error) {
	return c.handle(ctx, inv)
}

// Registry maps command names to handlers.
type Registry struct {
	prefix   string
	commands map[string]Command
	order    []string
}

// NewRegistry creates an empty registry whose help output uses prefix.
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:   prefix,
		commands: make(map[string]Command),
	}
}

// Prefix returns the command prefix used in help output.
func (r *Registry) Prefix() string {
	return r.prefix
}

// Register adds commands, replacing any with the same name.
func (r *Registry) Register(cmds ...Command) {
	for _, cmd := range cmds {
		if _, exists := r.commands[cmd.Name()]; !exists {
			r.order = append(r.order, cmd.Name())
		}
		r.commands[cmd.Name()] = cmd
	}
}

// Get looks up a command by name.
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Dispatch runs the command named by inv. A first positional argument of
// "help" returns the command's usage instead.
func (r *Registry) Dispatch(ctx context.Context, inv *Invocation) (string, error) {
	cmd, ok := r.Get(inv.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, inv.Name)
	}
	if len(inv.Args) > 0 && inv.Args[0] == "help" {
		return cmd.Usage(), nil
	}
	return cmd.Handle(ctx, inv)
}

// NewHelpCommand lists the registry's commands, or shows one command's usage
// when given its name.
func NewHelpCommand(r *Registry) Command {
	return &funcCommand{
		name:        "help",
		description: "List commands or show usage for one",
		usage:       fmt.Sprintf("```%shelp [command]```\nShow the available commands, or usage for one of them.", r.prefix),
		handle: func(ctx context.Context, inv *Invocation) (string, error) {
			if len(inv.Args) > 0 {
				name := strings.TrimPrefix(inv.Args[0], r.prefix)
				if cmd, ok := r.Get(name); ok {
					return cmd.Usage(), nil
				}
				return fmt.Sprintf("Unknown command `%s%s`.", r.prefix, name), nil
			}

			var b strings.Builder
			b.WriteString("Commands:\n")
			for _, cmd := range r.Commands() {
				fmt.Fprintf(&b, "    %s%s - %s\n", r.prefix, cmd.Name(), cmd.Description())
			}
			fmt.Fprintf(&b, "Use `%shelp <command>` for details.", r.prefix)
			return b.String(), nil
		},
	}
}
