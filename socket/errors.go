package socket

import (
	"io"
	"net"
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// Error classes reported by sockets. Use errors.Is to test for them.
var (
	ErrClosed         = errors.New("socket closed by other side")
	ErrAlreadyOpen    = errors.New("socket already open")
	ErrOpenFailed     = errors.New("failed to open socket")
	ErrNotOpen        = errors.New("socket not open")
	ErrTimeout        = errors.New("receive timeout")
	ErrUnreachable    = errors.New("destination unreachable")
	ErrNotAllowed     = errors.New("operation not allowed in this mode")
	ErrInvalidAddress = errors.New("invalid address")
)

var kinds = []error{
	ErrClosed,
	ErrAlreadyOpen,
	ErrOpenFailed,
	ErrNotOpen,
	ErrTimeout,
	ErrUnreachable,
	ErrNotAllowed,
	ErrInvalidAddress,
}

// OpError describes a failed socket operation.
type OpError struct {
	Socket string // e.g. "udp<ip4,server>"
	Op     string // e.g. "recvfrom"
	Kind   error  // one of the Err* values, nil if unclassified
	Err    error  // underlying error, may be nil
}

func (e *OpError) Error() string {
	s := e.Socket + " " + e.Op + ": "
	switch {
	case e.Err == nil:
		return s + e.Kind.Error()
	case e.Kind == nil:
		return s + e.Err.Error()
	}
	return s + e.Kind.Error() + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error { return e.Err }

// Is reports whether target is the class of e.
func (e *OpError) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}

// Timeout reports whether the operation hit the receive timeout.
func (e *OpError) Timeout() bool { return e.Kind == ErrTimeout }

// opError wraps err for the given socket and operation. A nil err yields
// nil, an *OpError is returned as is.
func opError(socket, op string, err error) error {
	if err == nil {
		return nil
	}
	if oe, ok := err.(*OpError); ok {
		return oe
	}
	kind := classify(err)
	if kind == err {
		return &OpError{Socket: socket, Op: op, Kind: kind}
	}
	return &OpError{Socket: socket, Op: op, Kind: kind, Err: err}
}

// classify maps err onto one of the Err* values, or nil.
func classify(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}

	var ne net.Error
	switch {
	case errors.Is(err, io.EOF):
		return ErrClosed
	case errors.Is(err, os.ErrDeadlineExceeded):
		return ErrTimeout
	case errors.As(err, &ne) && ne.Timeout():
		return ErrTimeout
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return ErrUnreachable
	case errors.Is(err, syscall.EADDRNOTAVAIL):
		return ErrInvalidAddress
	case errors.Is(err, net.ErrClosed):
		return ErrNotOpen
	}
	return nil
}
