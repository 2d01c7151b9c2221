package main

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/michaelbrown/playbot/internal/playground"
)

func call(t *testing.T, run runFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(run)(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandlerPassesFlags(t *testing.T) {
	var gotCode string
	var gotParams map[string]string
	run := func(ctx context.Context, code string, params map[string]string) (string, error) {
		gotCode, gotParams = code, params
		return "```\nok```", nil
	}

	res := call(t, run, map[string]any{
		"code":    "fn main() {}",
		"mode":    "release",
		"warn":    true,
		"ignored": "x",
	})

	require.False(t, res.IsError)
	require.Equal(t, "```\nok```", text(t, res))
	require.Equal(t, "fn main() {}", gotCode)
	require.Equal(t, map[string]string{"mode": "release", "warn": "true"}, gotParams)
}

func TestHandlerRequiresCode(t *testing.T) {
	run := func(ctx context.Context, code string, params map[string]string) (string, error) {
		t.Fatal("run should not be called")
		return "", nil
	}

	res := call(t, run, map[string]any{"mode": "debug"})
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "'code' is required")
}

func TestHandlerTransportError(t *testing.T) {
	run := func(ctx context.Context, code string, params map[string]string) (string, error) {
		return "", &playground.TransportError{Op: "execute", Err: errors.New("connection refused")}
	}

	res := call(t, run, map[string]any{"code": "1"})
	require.True(t, res.IsError)
	require.Contains(t, text(t, res), "playground unreachable")
}
