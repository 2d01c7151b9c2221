package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/michaelbrown/playbot/internal/playground"
)

// Playground is the remote service the commands run code on.
// *playground.Client implements it.
type Playground interface {
	Execute(ctx context.Context, req playground.ExecuteRequest) (*playground.Result, error)
	Miri(ctx context.Context, req playground.MiriRequest) (*playground.Result, error)
	CreateGist(ctx context.Context, code string) (string, error)
}

// Op selects the remote operation.
type Op int

const (
	OpExecute Op = iota
	OpMiri
)

func (op Op) String() string {
	if op == OpMiri {
		return "miri"
	}
	return "execute"
}

// DefaultMaxMessageLength is Discord's message limit.
const DefaultMaxMessageLength = 2000

// RunnerConfig holds the reply settings of a Runner.
type RunnerConfig struct {
	// ShareURL is the playground page gist links point to.
	ShareURL         string
	MaxMessageLength int
	Prefix           string
}

// Runner turns code plus flag parameters into a chat reply.
type Runner struct {
	client Playground
	cfg    RunnerConfig
	logger *zap.Logger
}

// NewRunner creates a Runner. Zero config fields fall back to defaults.
func NewRunner(client Playground, cfg RunnerConfig, logger *zap.Logger) *Runner {
	if cfg.ShareURL == "" {
		cfg.ShareURL = playground.DefaultEndpoints().ShareURL
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = DefaultMaxMessageLength
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "?"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{client: client, cfg: cfg, logger: logger}
}

// Run sends code to the playground and renders the reply. Malformed flags are
// listed at the top of the reply and their defaults used.
func (r *Runner) Run(ctx context.Context, op Op, code string, params map[string]string) (string, error) {
	flags, warn, errs := playground.ParseFlags(params)

	var (
		res *playground.Result
		err error
	)
	switch op {
	case OpMiri:
		res, err = r.client.Miri(ctx, playground.NewMiriRequest(code, flags))
	default:
		res, err = r.client.Execute(ctx, playground.NewExecuteRequest(code, flags))
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	r.logger.Debug("playground result",
		zap.Stringer("op", op),
		zap.Bool("success", res.Success),
		zap.Int("flag_errors", len(errs)))

	return r.reply(ctx, *res, code, flags, warn, flagErrorText(errs))
}

// Eval wraps an expression so its Debug form is printed, then runs it.
func (r *Runner) Eval(ctx context.Context, code string, params map[string]string) (string, error) {
	if strings.Contains(code, playground.EntryPoint) {
		return r.EvalMainReply(), nil
	}
	return r.Run(ctx, OpExecute, playground.WrapEval(code), params)
}

// EvalMainReply is the usage error for eval input containing a main function.
func (r *Runner) EvalMainReply() string {
	return fmt.Sprintf("code passed to %seval should not contain `%s`", r.cfg.Prefix, playground.EntryPoint)
}

func (r *Runner) reply(ctx context.Context, res playground.Result, code string, flags playground.Flags, warn bool, flagErrors string) (string, error) {
	rendered := playground.Render(res, warn)
	if rendered == "" {
		return flagErrors + "``` ```", nil
	}

	text := flagErrors + "```\n" + rendered + "```"
	if utf8.RuneCountInString(text) <= r.cfg.MaxMessageLength {
		return text, nil
	}

	id, err := r.client.CreateGist(ctx, code)
	if err != nil {
		return "", fmt.Errorf("uploading gist: %w", err)
	}
	link, err := playground.ShareURL(r.cfg.ShareURL, flags, id)
	if err != nil {
		return "", err
	}
	r.logger.Info("output too large, replied with gist link", zap.String("gist", id))

	return flagErrors + "Output too large. Playground link: " + link, nil
}

func flagErrorText(errs []error) string {
	var b strings.Builder
	for _, err := range errs {
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// NewPlayCommand runs code as-is.
func NewPlayCommand(r *Runner) Command {
	return &funcCommand{
		name:        "play",
		description: "Compile and run rust code",
		usage:       playUsage(r.cfg.Prefix, "play"),
		handle: func(ctx context.Context, inv *Invocation) (string, error) {
			return r.withCode(inv, func(code string) (string, error) {
				return r.Run(ctx, OpExecute, code, inv.Params)
			})
		},
	}
}

// NewEvalCommand prints the Debug form of an expression.
func NewEvalCommand(r *Runner) Command {
	return &funcCommand{
		name:        "eval",
		description: "Evaluate a rust expression and print its Debug form",
		usage:       playUsage(r.cfg.Prefix, "eval"),
		handle: func(ctx context.Context, inv *Invocation) (string, error) {
			return r.withCode(inv, func(code string) (string, error) {
				return r.Eval(ctx, code, inv.Params)
			})
		},
	}
}

// NewMiriCommand runs code under Miri.
func NewMiriCommand(r *Runner) Command {
	return &funcCommand{
		name:        "miri",
		description: "Run rust code in Miri to detect undefined behavior",
		usage:       miriUsage(r.cfg.Prefix),
		handle: func(ctx context.Context, inv *Invocation) (string, error) {
			return r.withCode(inv, func(code string) (string, error) {
				return r.Run(ctx, OpMiri, code, inv.Params)
			})
		},
	}
}

func (r *Runner) withCode(inv *Invocation, fn func(code string) (string, error)) (string, error) {
	code, err := ExtractCode(inv.Body)
	if errors.Is(err, ErrMissingCodeBlock) {
		return MissingCodeBlockReply, nil
	}
	if err != nil {
		return "", err
	}
	return fn(code)
}

// PlaygroundCommands returns play, eval and miri backed by r.
func PlaygroundCommands(r *Runner) []Command {
	return []Command{NewPlayCommand(r), NewEvalCommand(r), NewMiriCommand(r)}
}

func playUsage(prefix, name string) string {
	return fmt.Sprintf("Compile and run rust code. All code is executed on https://play.rust-lang.org.\n"+
		"```%s%s mode={} channel={} edition={} warn={} ``\u200B`code``\u200B` ```\n"+
		"Optional arguments:\n"+
		"    \tmode: debug, release (default: debug)\n"+
		"    \tchannel: stable, beta, nightly (default: nightly)\n"+
		"    \tedition: 2015, 2018 (default: 2018)\n"+
		"    \twarn: boolean flag to enable compilation warnings", prefix, name)
}

func miriUsage(prefix string) string {
	return fmt.Sprintf("Execute this program in the Miri interpreter to detect certain cases of undefined behavior\n"+
		"(like out-of-bounds memory access). All code is executed on https://play.rust-lang.org.\n"+
		"```%smiri edition={} warn={} ``\u200B`code``\u200B` ```\n"+
		"Optional arguments:\n"+
		"    \tedition: 2015, 2018 (default: 2018)\n"+
		"    \twarn: boolean flag to enable compilation warnings", prefix)
}
