package enet

import (
	"errors"
	"fmt"

	"github.com/enet-go/enet/proto"
)

// ErrConnectionClosed reports that the owning task has exited, or its
// mailbox has been closed (typically because the Client was dropped).
var ErrConnectionClosed = errors.New("enet: connection closed")

// ErrNoResponse reports that a waiter was dropped before it was
// fulfilled, without a more specific cause.
var ErrNoResponse = errors.New("enet: no response")

// ConnectError wraps a failed initial TCP dial.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("enet: connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// SendError wraps an encode or write failure mid-request.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return fmt.Sprintf("enet: send: %v", e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// RecvError wraps a decode/read failure, including EOF partway through
// a frame. A clean EOF at a frame boundary is reported as
// ErrConnectionClosed instead.
type RecvError struct {
	Err error
}

func (e *RecvError) Error() string { return fmt.Sprintf("enet: recv: %v", e.Err) }
func (e *RecvError) Unwrap() error { return e.Err }

// WrongResponseError reports that a response arrived whose kind does
// not match the one a waiter was expecting. The raw response is
// retained for diagnostics.
type WrongResponseError struct {
	Expected proto.ResponseKind
	Got      proto.Response
}

func (e *WrongResponseError) Error() string {
	return fmt.Sprintf("enet: expected %s response, got %s", e.Expected, e.Got.Kind())
}

// CommandError is the union of command-path failures surfaced to a
// caller: it wraps one of ConnectError, SendError, RecvError,
// WrongResponseError, ErrConnectionClosed, or ErrNoResponse, or the
// caller's context error when ctx ends first.
type CommandError struct {
	Err error
}

func (e *CommandError) Error() string { return e.Err.Error() }
func (e *CommandError) Unwrap() error { return e.Err }

func commandErr(err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Err: err}
}
