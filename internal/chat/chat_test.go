package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/michaelbrown/playbot/internal/commands"
	"github.com/michaelbrown/playbot/internal/playground"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		message string
		ok      bool
		want    *commands.Invocation
	}{
		{
			name:    "not a command",
			message: "hello there",
		},
		{
			name:    "bare prefix",
			message: "?",
		},
		{
			name:    "play with flags",
			message: "?play mode=release channel=beta\n```rust\nfn main() {}\n```",
			ok:      true,
			want: &commands.Invocation{
				Name:   "play",
				Params: map[string]string{"mode": "release", "channel": "beta"},
				Body:   "```rust\nfn main() {}\n```",
			},
		},
		{
			name:    "quoted value",
			message: `?eval warn="true" ` + "`1 + 1`",
			ok:      true,
			want: &commands.Invocation{
				Name:   "eval",
				Params: map[string]string{"warn": "true"},
				Body:   "`1 + 1`",
			},
		},
		{
			name:    "help argument",
			message: "  ?miri help",
			ok:      true,
			want: &commands.Invocation{
				Name:   "miri",
				Params: map[string]string{},
				Args:   []string{"help"},
			},
		},
		{
			name:    "equals inside body is not a param",
			message: "?play ```let a = 1;```",
			ok:      true,
			want: &commands.Invocation{
				Name:   "play",
				Params: map[string]string{},
				Body:   "```let a = 1;```",
			},
		},
		{
			name:    "later key wins",
			message: "?play edition=2015 edition=2018",
			ok:      true,
			want: &commands.Invocation{
				Name:   "play",
				Params: map[string]string{"edition": "2018"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok, err := Parse("?", test.message)
			require.NoError(t, err)
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.want, got)
		})
	}
}

func TestParseBadQuoting(t *testing.T) {
	_, ok, err := Parse("?", `?play channel="stable`)
	require.True(t, ok)
	require.Error(t, err)
}

type stubPlayground struct {
	calls int
}

func (s *stubPlayground) Execute(ctx context.Context, req playground.ExecuteRequest) (*playground.Result, error) {
	s.calls++
	return &playground.Result{Success: true, Stdout: string(req.Channel)}, nil
}

func (s *stubPlayground) Miri(ctx context.Context, req playground.MiriRequest) (*playground.Result, error) {
	s.calls++
	return nil, &playground.TransportError{Op: "miri", Err: errors.New("down")}
}

func (s *stubPlayground) CreateGist(ctx context.Context, code string) (string, error) {
	s.calls++
	return "id", nil
}

func newTestDispatcher(pg commands.Playground) *Dispatcher {
	reg := commands.NewRegistry("?")
	reg.Register(commands.PlaygroundCommands(commands.NewRunner(pg, commands.RunnerConfig{Prefix: "?"}, nil))...)
	reg.Register(commands.NewHelpCommand(reg))
	return NewDispatcher(reg, nil)
}

func TestDispatcherHandle(t *testing.T) {
	pg := &stubPlayground{}
	d := newTestDispatcher(pg)
	ctx := context.Background()

	reply, handled, err := d.Handle(ctx, "just chatting")
	require.NoError(t, err)
	require.False(t, handled)
	require.Empty(t, reply)

	reply, handled, err = d.Handle(ctx, "?play channel=stable ```rust\nfn main() {}\n```")
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, "```\nstable```", reply)
	require.Equal(t, 1, pg.calls)

	reply, handled, err = d.Handle(ctx, "?frobnicate")
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, "Unknown command `?frobnicate`. Try `?help`.", reply)

	reply, handled, err = d.Handle(ctx, `?play mode="release`)
	require.NoError(t, err)
	require.True(t, handled)
	require.Contains(t, reply, "parsing command arguments")

	reply, _, err = d.Handle(ctx, "?play")
	require.NoError(t, err)
	require.Equal(t, commands.MissingCodeBlockReply, reply)
	require.Equal(t, 1, pg.calls)
}

func TestDispatcherRemoteFailure(t *testing.T) {
	d := newTestDispatcher(&stubPlayground{})

	_, handled, err := d.Handle(context.Background(), "?miri `fn main() {}`")
	require.True(t, handled)
	var te *playground.TransportError
	require.ErrorAs(t, err, &te)
}

func TestInvokeAssignsID(t *testing.T) {
	d := newTestDispatcher(&stubPlayground{})
	inv := &commands.Invocation{Name: "help"}

	_, err := d.Invoke(context.Background(), inv)
	require.NoError(t, err)
	require.NotEmpty(t, inv.ID)
}
