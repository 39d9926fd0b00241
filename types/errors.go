package types

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Typed errors below unwrap to one of these.
var (
	ErrConnection         = errors.New("connection error")
	ErrCommandTimeout     = errors.New("command timeout")
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrUsage              = errors.New("usage error")
	ErrNormalization      = errors.New("normalization error")
)

// ConnectionError is a transport connect, authentication or channel failure.
// The session is unusable afterwards.
type ConnectionError struct {
	Device string
	Op     string
	Err    error
}

func (e *ConnectionError) Error() string {
	msg := "connection error"
	if e.Device != "" {
		msg += " on " + e.Device
	}
	if e.Op != "" {
		msg += " during " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConnectionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConnection}
	}
	return []error{ErrConnection, e.Err}
}

// CommandTimeoutError means no final prompt was seen before the deadline
type CommandTimeoutError struct {
	Command string
	Timeout time.Duration
	Retried bool
}

func (e *CommandTimeoutError) Error() string {
	msg := fmt.Sprintf("timeout after %s waiting for prompt after command %q", e.Timeout, e.Command)
	if e.Retried {
		msg += " (retried)"
	}
	return msg
}

func (e *CommandTimeoutError) Unwrap() error {
	return ErrCommandTimeout
}

// UnsupportedCommandError means the device rejected a command. The session stays usable.
type UnsupportedCommandError struct {
	Command string
	Message string
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("device rejected command %q: %s", e.Command, e.Message)
}

func (e *UnsupportedCommandError) Unwrap() error {
	return ErrUnsupportedCommand
}

// UsageError means an operation was invoked outside its required state
type UsageError struct {
	Op    string
	State string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.State)
}

func (e *UsageError) Unwrap() error {
	return ErrUsage
}

// NormalizeError means a field value could not be converted to its canonical form
type NormalizeError struct {
	Kind  string
	Value string
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("cannot normalize %s %q", e.Kind, e.Value)
}

func (e *NormalizeError) Unwrap() error {
	return ErrNormalization
}

// ParseWarning records a row or block that could not be parsed.
// Warnings travel with results; they are never returned as the call error.
type ParseWarning struct {
	Query  string `json:"query" yaml:"query"`
	Line   int    `json:"line" yaml:"line"` // 1-based within the command output, 0 when not line bound
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

func (w ParseWarning) Error() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", w.Query, w.Line, w.Reason)
	}
	return fmt.Sprintf("%s: %s", w.Query, w.Reason)
}
