// Package bus serves the bot's commands as a NATS micro service so chat
// gateways can publish invocations instead of calling HTTP.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"go.uber.org/zap"

	"github.com/michaelbrown/playbot/internal/chat"
	"github.com/michaelbrown/playbot/internal/commands"
)

const (
	Name    = "PlaygroundBot"
	Version = "0.1.0"

	codeBadRequest = "100"
	codeFailed     = "500"

	// An invocation makes at most two playground calls: the run, then a gist
	// upload when the output overflows.
	callsPerInvocation = 2
)

// MessageRequest carries a raw chat message.
type MessageRequest struct {
	Content string `json:"content"`
}

// CommandRequest carries an already split invocation.
type CommandRequest struct {
	Params map[string]string `json:"params"`
	Args   []string          `json:"args"`
	Body   string            `json:"body"`
}

// Response is the JSON answer of every endpoint.
type Response struct {
	Reply   string `json:"reply"`
	Handled bool   `json:"handled"`
}

// requestError is returned by the endpoint functions when the request itself
// is unusable.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

// Start registers the service on nc. The MESSAGE endpoint takes raw chat
// text; every registered command also gets its own upper-cased endpoint.
// timeout bounds a single playground call.
func Start(nc *nats.Conn, dispatcher *chat.Dispatcher, subjectPrefix string, timeout time.Duration, logger *zap.Logger) (micro.Service, error) {
	h := newHandler(dispatcher, timeout, logger)

	svc, err := micro.AddService(nc, micro.Config{
		Name:        Name,
		Description: "Runs rust code on the playground for chat commands.",
		Version:     Version,
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats micro service: %w", err)
	}

	err = svc.AddEndpoint(
		"MESSAGE",
		h.wrap(h.message),
		micro.WithEndpointSubject(subjectPrefix+".MESSAGE"),
		micro.WithEndpointMetadata(map[string]string{
			"request": `{"content": "string"}`,
		}),
	)
	if err != nil {
		svc.Stop()
		return nil, fmt.Errorf("error adding MESSAGE endpoint: %w", err)
	}

	for _, cmd := range dispatcher.Registry().Commands() {
		name := cmd.Name()
		endpoint := strings.ToUpper(name)
		err = svc.AddEndpoint(
			endpoint,
			h.wrap(func(ctx context.Context, data []byte) (*Response, error) {
				return h.command(ctx, name, data)
			}),
			micro.WithEndpointSubject(subjectPrefix+"."+endpoint),
			micro.WithEndpointMetadata(map[string]string{
				"request":     `{"params": {"key": "value"}, "args": ["string"], "body": "string"}`,
				"description": cmd.Description(),
			}),
		)
		if err != nil {
			svc.Stop()
			return nil, fmt.Errorf("error adding %s endpoint: %w", endpoint, err)
		}
	}

	h.logger.Info("nats micro service started", zap.String("subject_prefix", subjectPrefix))
	return svc, nil
}

type handler struct {
	dispatcher *chat.Dispatcher
	// timeout is the deadline of a whole invocation.
	timeout time.Duration
	logger  *zap.Logger
}

func newHandler(dispatcher *chat.Dispatcher, callTimeout time.Duration, logger *zap.Logger) *handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &handler{
		dispatcher: dispatcher,
		timeout:    callTimeout * callsPerInvocation,
		logger:     logger,
	}
}

func (h *handler) wrap(fn func(ctx context.Context, data []byte) (*Response, error)) micro.Handler {
	return micro.HandlerFunc(func(r micro.Request) {
		h.logger.Debug("received request", zap.String("subject", r.Subject()))

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		resp, err := fn(ctx, r.Data())
		if err != nil {
			code := codeFailed
			var re *requestError
			if errors.As(err, &re) {
				code = codeBadRequest
			}
			h.logger.Warn("request failed", zap.String("subject", r.Subject()), zap.Error(err))
			if err := r.Error(code, err.Error(), nil); err != nil {
				h.logger.Warn("error response failed", zap.Error(err))
			}
			return
		}

		if err := r.RespondJSON(resp); err != nil {
			h.logger.Warn("response failed", zap.Error(err))
		}
	})
}

func (h *handler) message(ctx context.Context, data []byte) (*Response, error) {
	var req MessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, &requestError{msg: fmt.Sprintf("message request error: %s", err)}
	}
	if req.Content == "" {
		return nil, &requestError{msg: "message request error: content is required"}
	}

	reply, handled, err := h.dispatcher.Handle(ctx, req.Content)
	if err != nil {
		return nil, err
	}
	return &Response{Reply: reply, Handled: handled}, nil
}

func (h *handler) command(ctx context.Context, name string, data []byte) (*Response, error) {
	var req CommandRequest
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, &requestError{msg: fmt.Sprintf("%s request error: %s", name, err)}
		}
	}

	reply, err := h.dispatcher.Invoke(ctx, &commands.Invocation{
		Name:   name,
		Params: req.Params,
		Args:   req.Args,
		Body:   req.Body,
	})
	if err != nil {
		return nil, err
	}
	return &Response{Reply: reply, Handled: true}, nil
}
