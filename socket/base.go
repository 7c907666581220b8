package socket

import (
	"sync"
)

// base holds what UDP and TCP sockets share: identity, options and the
// last known endpoints.
type base[A Family] struct {
	name string
	mode Mode
	opts Options

	mu     sync.Mutex
	local  A
	remote A
}

func (b *base[A]) init(proto, role string, mode Mode, opts Options) {
	b.name = typeName[A](proto, role)
	b.mode = mode
	b.opts = opts
}

// Name returns the socket type name, e.g. "udp<ip4,server>".
func (b *base[A]) Name() string { return b.name }

// Mode returns the mode the socket was created with.
func (b *base[A]) Mode() Mode { return b.mode }

// LocalAddr returns the last known local endpoint.
func (b *base[A]) LocalAddr() A {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.local
}

// RemoteAddr returns the last known remote endpoint.
func (b *base[A]) RemoteAddr() A {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remote
}

// setRemote records the peer of the last I/O operation.
func (b *base[A]) setRemote(a A) {
	b.mu.Lock()
	b.remote = a
	b.mu.Unlock()
}

// finish wraps and logs the outcome of op. It must not be called with mu
// held.
func (b *base[A]) finish(op string, n int, err error) error {
	err = opError(b.name, op, err)

	b.mu.Lock()
	local, remote := b.local, b.remote
	b.mu.Unlock()

	logOp(b.opts.LogLevel, b.name, op, addrField(local), addrField(remote), n, err)
	return err
}
