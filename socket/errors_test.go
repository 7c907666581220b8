package socket

import (
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"eof", io.EOF, ErrClosed},
		{"deadline", os.ErrDeadlineExceeded, ErrTimeout},
		{"net timeout", &net.OpError{Op: "read", Err: os.ErrDeadlineExceeded}, ErrTimeout},
		{"refused", &net.OpError{Op: "read", Err: os.NewSyscallError("recvfrom", syscall.ECONNREFUSED)}, ErrUnreachable},
		{"reset", syscall.ECONNRESET, ErrUnreachable},
		{"addr not avail", &net.OpError{Op: "dial", Err: syscall.EADDRNOTAVAIL}, ErrInvalidAddress},
		{"use of closed", &net.OpError{Op: "read", Err: net.ErrClosed}, ErrNotOpen},
		{"sentinel", ErrNotAllowed, ErrNotAllowed},
		{"wrapped sentinel", errors.Wrap(ErrAlreadyOpen, "open"), ErrAlreadyOpen},
		{"unknown", errors.New("boom"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestOpError(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(opError("udp<ip4,client>", "recv", nil))

	err := opError("udp<ip4,client>", "recv", ErrNotOpen)
	assert.EqualError(err, "udp<ip4,client> recv: socket not open")
	assert.True(errors.Is(err, ErrNotOpen))
	assert.False(errors.Is(err, ErrTimeout))

	cause := &net.OpError{Op: "read", Net: "udp", Err: os.NewSyscallError("recvfrom", syscall.ECONNREFUSED)}
	err = opError("udp<ip4,client>", "recv", cause)
	assert.True(errors.Is(err, ErrUnreachable))
	assert.True(errors.Is(err, syscall.ECONNREFUSED))
	assert.Contains(err.Error(), "udp<ip4,client> recv: destination unreachable: read udp")

	err = opError("tcp<ip6,server>", "accept", errors.New("boom"))
	assert.EqualError(err, "tcp<ip6,server> accept: boom")

	// already wrapped errors pass through
	assert.Same(err, opError("other", "op", err))

	var oe *OpError
	assert.True(errors.As(opError("s", "recv", os.ErrDeadlineExceeded), &oe))
	assert.True(oe.Timeout())
	assert.Equal("recv", oe.Op)
}
