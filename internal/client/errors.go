package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// The closed set of error kinds an API call can produce. Callers match
// with errors.Is against these sentinels.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrTimeout        = errors.New("request timed out")
	ErrInvalidVersion = errors.New("client version not supported")
	ErrCorruptGemFile = errors.New("corrupt package file")
	ErrDupeVersion    = errors.New("version already exists")
	ErrTransport      = errors.New("connection failed")
	ErrAPI            = errors.New("api error")
)

// APIError carries the classified kind of a failed call plus the
// human-readable message extracted from the response body, if any.
type APIError struct {
	Kind    error
	Message string
	Status  int // HTTP status; 0 when no response was received
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Message)
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() error {
	return e.Kind
}

// NewAPIError creates a classified API error
func NewAPIError(kind error, status int, message string) *APIError {
	return &APIError{Kind: kind, Message: message, Status: status}
}

// errorEnvelope is the structured error body returned by the service:
// {"error": {"type": ..., "message": ...}}
type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// classify maps a completed non-2xx response to exactly one error kind.
// The server's semantic error type takes precedence over the HTTP status:
// a 400 carrying type "DupeVersion" is a duplicate-version error, not a
// generic one. Only unrecognized types fall through to the status map.
func classify(status int, body []byte) *APIError {
	var env errorEnvelope
	if len(body) > 0 {
		// A non-JSON error body classifies on status alone.
		_ = json.Unmarshal(body, &env)
	}

	var kind error
	switch env.Error.Type {
	case "Forbidden":
		kind = ErrForbidden
	case "GemVersionError":
		kind = ErrInvalidVersion
	case "InvalidGemFile":
		kind = ErrCorruptGemFile
	case "DupeVersion":
		kind = ErrDupeVersion
	default:
		switch status {
		case 401:
			kind = ErrUnauthorized
		case 403:
			kind = ErrForbidden
		case 404:
			kind = ErrNotFound
		case 409:
			kind = ErrConflict
		case 503:
			kind = ErrTimeout
		default:
			kind = ErrAPI
		}
	}

	return NewAPIError(kind, status, env.Error.Message)
}
