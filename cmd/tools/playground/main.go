package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/michaelbrown/playbot/internal/commands"
	"github.com/michaelbrown/playbot/internal/config"
	"github.com/michaelbrown/playbot/internal/playground"
)

var flagProperties = map[string]any{
	"code": map[string]any{
		"type":        "string",
		"description": "Rust source code",
	},
	"channel": map[string]any{
		"type":        "string",
		"description": "Release channel: stable, beta or nightly (default nightly)",
	},
	"mode": map[string]any{
		"type":        "string",
		"description": "Compilation mode: debug or release (default debug)",
	},
	"edition": map[string]any{
		"type":        "string",
		"description": "Rust edition: 2015 or 2018 (default 2018)",
	},
	"warn": map[string]any{
		"type":        "string",
		"description": "Show compiler warnings when the run succeeds: true or false",
	},
}

func main() {
	// stdout carries the MCP protocol, so logs go to stderr.
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{"stderr"}
	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("PLAYBOT_CONFIG"))
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}

	client := playground.NewClient(cfg.Endpoints(), cfg.Playground.Timeout, logger.Named("playground"))
	runner := commands.NewRunner(client, commands.RunnerConfig{
		ShareURL:         cfg.Playground.ShareURL,
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		Prefix:           cfg.Chat.Prefix,
	}, logger.Named("runner"))

	s := server.NewMCPServer("playbot-playground", "0.1.0")

	s.AddTool(tool("rust_play", "Compile and run Rust code on the Rust playground."), handler(func(ctx context.Context, code string, params map[string]string) (string, error) {
		return runner.Run(ctx, commands.OpExecute, code, params)
	}))
	s.AddTool(tool("rust_eval", "Evaluate a Rust expression on the Rust playground and print its Debug form. The code must not contain fn main."), handler(runner.Eval))
	s.AddTool(tool("rust_miri", "Run Rust code under Miri on the Rust playground to detect undefined behavior."), handler(func(ctx context.Context, code string, params map[string]string) (string, error) {
		return runner.Run(ctx, commands.OpMiri, code, params)
	}))

	if err := server.ServeStdio(s); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

func tool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: flagProperties,
			Required:   []string{"code"},
		},
	}
}

type runFunc func(ctx context.Context, code string, params map[string]string) (string, error)

func handler(run runFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		if args == nil {
			return errResult("error: invalid arguments"), nil
		}

		code, _ := args["code"].(string)
		if code == "" {
			return errResult("error: 'code' is required"), nil
		}

		params := make(map[string]string)
		for _, key := range []string{"channel", "mode", "edition", "warn"} {
			switch v := args[key].(type) {
			case string:
				params[key] = v
			case bool:
				params[key] = fmt.Sprint(v)
			}
		}

		reply, err := run(ctx, code, params)
		if err != nil {
			var te *playground.TransportError
			if errors.As(err, &te) {
				return errResult(fmt.Sprintf("playground unreachable: %v", err)), nil
			}
			return errResult(fmt.Sprintf("error: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: reply}},
		}, nil
	}
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
