package gorgzorg

import "fmt"

// Error represents a GorgZorg session error
type Error struct {
	// Kind categorizes the error
	Kind ErrorKind

	// Message is a human-readable error message
	Message string

	// Err is the underlying cause, if any
	Err error
}

// ErrorKind categorizes GorgZorg errors
type ErrorKind int

const (
	// ErrInvalidArgs indicates an invalid configuration
	ErrInvalidArgs ErrorKind = iota

	// ErrInvalidAddress indicates an address outside the local network policy
	ErrInvalidAddress

	// ErrBindInUse indicates the listen port is already taken
	ErrBindInUse

	// ErrConnectFailed indicates nobody is zorging on the target
	ErrConnectFailed

	// ErrPeerClosed indicates the peer closed the socket or broke protocol
	ErrPeerClosed

	// ErrOpenSource indicates a source file could not be opened
	ErrOpenSource

	// ErrWriteDest indicates a destination file could not be written
	ErrWriteDest

	// ErrArchive indicates the external tar invocation failed
	ErrArchive

	// ErrCancelled indicates the receiver rejected the transfer
	ErrCancelled
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gorgzorg %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("gorgzorg %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidArgs:
		return "invalid arguments"
	case ErrInvalidAddress:
		return "invalid address"
	case ErrBindInUse:
		return "bind failed"
	case ErrConnectFailed:
		return "connect failed"
	case ErrPeerClosed:
		return "peer closed"
	case ErrOpenSource:
		return "open source failed"
	case ErrWriteDest:
		return "write destination failed"
	case ErrArchive:
		return "archive failed"
	case ErrCancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// NewError creates a new GorgZorg error
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// WrapErr creates a new GorgZorg error around an underlying cause
func WrapErr(kind ErrorKind, err error, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsCancelled checks if an error indicates the receiver denied the transfer
func IsCancelled(err error) bool {
	return hasKind(err, ErrCancelled)
}

// IsConnectFailed checks if an error indicates a failed connect
func IsConnectFailed(err error) bool {
	return hasKind(err, ErrConnectFailed)
}

// IsPeerClosed checks if an error indicates the peer went away mid-session
func IsPeerClosed(err error) bool {
	return hasKind(err, ErrPeerClosed)
}

func hasKind(err error, kind ErrorKind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}
