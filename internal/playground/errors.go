package playground

import (
	"errors"
	"fmt"
)

// ErrNoGistID is returned when the gist service answers without an id.
var ErrNoGistID = errors.New("no gist found")

// ErrIncompleteResult is returned when an execute or miri response lacks
// one of success, stdout or stderr.
var ErrIncompleteResult = errors.New("response missing success, stdout or stderr")

// ParseFlagError reports a flag value outside its lexicon.
type ParseFlagError struct {
	Field string
	Value string
}

func (e *ParseFlagError) Error() string {
	switch e.Field {
	case "channel":
		return fmt.Sprintf("invalid release channel `%s`", e.Value)
	case "mode":
		return fmt.Sprintf("invalid compilation mode `%s`", e.Value)
	case "edition":
		return fmt.Sprintf("invalid edition `%s`", e.Value)
	case "warn":
		return fmt.Sprintf("invalid warn bool `%s`", e.Value)
	}
	return fmt.Sprintf("invalid %s `%s`", e.Field, e.Value)
}

// TransportError wraps failures to reach the remote service, including
// non-2xx answers.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RemoteShapeError means the remote answered but not with the expected JSON.
type RemoteShapeError struct {
	Op  string
	Err error
}

func (e *RemoteShapeError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *RemoteShapeError) Unwrap() error { return e.Err }
