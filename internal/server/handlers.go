package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/michaelbrown/playbot/internal/commands"
	"github.com/michaelbrown/playbot/internal/playground"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// errorStatus maps command failures to HTTP status codes.
func errorStatus(err error) int {
	var te *playground.TransportError
	var se *playground.RemoteShapeError
	switch {
	case errors.Is(err, commands.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.As(err, &te), errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// --- Command handlers ---

type commandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	cmds := s.dispatcher.Registry().Commands()
	out := make([]commandInfo, 0, len(cmds))
	for _, cmd := range cmds {
		out = append(out, commandInfo{Name: cmd.Name(), Description: cmd.Description()})
	}
	writeJSON(w, http.StatusOK, out)
}

type runCommandRequest struct {
	Params map[string]string `json:"params"`
	Args   []string          `json:"args"`
	Body   string            `json:"body"`
}

type replyResponse struct {
	Reply   string `json:"reply"`
	Handled bool   `json:"handled"`
}

func (s *Server) handleRunCommand(w http.ResponseWriter, r *http.Request) {
	var req runCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	inv := &commands.Invocation{
		Name:   chi.URLParam(r, "name"),
		Params: req.Params,
		Args:   req.Args,
		Body:   req.Body,
	}

	reply, err := s.dispatcher.Invoke(r.Context(), inv)
	if err != nil {
		s.logger.Warn("command request failed", zap.String("command", inv.Name), zap.Error(err))
		writeError(w, errorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, replyResponse{Reply: reply, Handled: true})
}

type messageRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply, handled, err := s.dispatcher.Handle(r.Context(), req.Content)
	if err != nil {
		writeError(w, errorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, replyResponse{Reply: reply, Handled: handled})
}
