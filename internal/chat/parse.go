// Package chat turns raw chat messages into command invocations.
package chat

import (
	"fmt"
	"strings"

	"github.com/google/shlex"

	"github.com/michaelbrown/playbot/internal/commands"
)

// Parse splits a message of the form
//
//	<prefix><name> [key=value ...] [arg ...] <body>
//
// into an invocation. The header runs up to the first backtick and is
// tokenized with shell quoting; the body is everything from that backtick on.
// ok is false when message is not addressed to the bot.
func Parse(prefix, message string) (inv *commands.Invocation, ok bool, err error) {
	message = strings.TrimLeft(message, " \t\r\n")
	if !strings.HasPrefix(message, prefix) {
		return nil, false, nil
	}
	rest := message[len(prefix):]

	header, body := rest, ""
	if i := strings.IndexByte(rest, '`'); i >= 0 {
		header, body = rest[:i], rest[i:]
	}

	tokens, err := shlex.Split(header)
	if err != nil {
		return nil, true, fmt.Errorf("parsing command arguments: %w", err)
	}
	if len(tokens) == 0 {
		return nil, false, nil
	}

	inv = &commands.Invocation{
		Name:   tokens[0],
		Params: make(map[string]string),
		Body:   body,
	}
	for _, tok := range tokens[1:] {
		if key, value, found := strings.Cut(tok, "="); found && key != "" {
			inv.Params[key] = value
			continue
		}
		inv.Args = append(inv.Args, tok)
	}

	return inv, true, nil
}
