package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/michaelbrown/playbot/internal/commands"
)

// Dispatcher routes chat messages to registered commands.
type Dispatcher struct {
	registry *commands.Registry
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher for the registry's prefix.
func NewDispatcher(registry *commands.Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Registry returns the command registry.
func (d *Dispatcher) Registry() *commands.Registry {
	return d.registry
}

// Handle parses message and runs the command it names. handled is false
// for messages not addressed to the bot. Malformed headers and unknown
// commands produce a reply rather than an error; errors are remote failures.
func (d *Dispatcher) Handle(ctx context.Context, message string) (reply string, handled bool, err error) {
	prefix := d.registry.Prefix()

	inv, ok, err := Parse(prefix, message)
	if !ok {
		return "", false, nil
	}
	if err != nil {
		return err.Error(), true, nil
	}

	reply, err = d.Invoke(ctx, inv)
	if errors.Is(err, commands.ErrUnknownCommand) {
		return fmt.Sprintf("Unknown command `%s%s`. Try `%shelp`.", prefix, inv.Name, prefix), true, nil
	}
	return reply, true, err
}

// Invoke runs an already parsed invocation, assigning it an ID for logging.
func (d *Dispatcher) Invoke(ctx context.Context, inv *commands.Invocation) (string, error) {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	log := d.logger.With(zap.String("invocation", inv.ID), zap.String("command", inv.Name))
	log.Debug("dispatching", zap.Any("params", inv.Params), zap.Strings("args", inv.Args))

	start := time.Now()
	reply, err := d.registry.Dispatch(ctx, inv)
	if err != nil {
		log.Warn("command failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return "", err
	}
	log.Info("command done", zap.Int("reply_len", len(reply)), zap.Duration("took", time.Since(start)))
	return reply, nil
}
