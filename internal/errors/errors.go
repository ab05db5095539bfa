// Package errors provides structured error types for the messly client.
// These errors carry the operation that failed and a coarse category that
// callers use to decide between purging the session, flashing a message, or
// just logging.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindPermission
	KindIO
	KindNetwork
	KindConfig
	KindAuth
	KindProtocol
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindPermission:
		return "permission denied"
	case KindIO:
		return "I/O error"
	case KindNetwork:
		return "network error"
	case KindConfig:
		return "configuration error"
	case KindAuth:
		return "unauthorized"
	case KindProtocol:
		return "protocol error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for messly.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the most user-facing part of err: the innermost context or
// underlying message without the operation prefix.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Context != "" {
			return e.Context
		}
		if inner := Message(e.Err); inner != "" {
			return inner
		}
	}
	return err.Error()
}

// API errors

// Unauthorized marks a rejected or missing token. Callers purge the session on it.
func Unauthorized(op Op, detail string) error {
	if detail == "" {
		detail = "session is no longer valid"
	}
	return E(op, KindAuth, detail)
}

// RequestFailed maps a non-2xx status to a Kind, keeping the backend detail as context.
func RequestFailed(op Op, status int, detail string) error {
	if detail == "" {
		detail = fmt.Sprintf("request failed with status %d", status)
	}
	kind := KindUnknown
	switch {
	case status == 401:
		kind = KindAuth
	case status == 403:
		kind = KindPermission
	case status == 404:
		kind = KindNotFound
	case status == 400 || status == 409 || status == 422:
		kind = KindInvalid
	case status >= 500:
		kind = KindNetwork
	}
	return E(op, kind, detail)
}

func NetworkFailed(op Op, err error) error {
	return E(op, KindNetwork, "network error", err)
}

// Live channel errors
func MalformedPayload(err error) error {
	return E(Op("live.Decode"), KindProtocol, "malformed live payload", err)
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}

// Session store errors
func SessionStoreFailed(path string, err error) error {
	return E(Op("session.Store"), KindIO, fmt.Sprintf("failed to access session file %s", path), err)
}

// Form validation errors
func ValidationFailed(field, reason string) error {
	return E(Op("form.Validate"), KindInvalid, fmt.Sprintf("%s %s", field, reason))
}
