package socket

import (
	"context"
	"net"
)

// TCP is a stream socket. A Server socket listens and hands out accepted
// connections, which are closed together with it.
type TCP[A Family] struct {
	base[A]

	// guarded by mu
	ln       *net.TCPListener
	conn     *net.TCPConn
	children map[*TCP[A]]struct{}

	parent *TCP[A] // set on accepted sockets
}

// NewTCP returns an unopened TCP socket.
func NewTCP[A Family](mode Mode, opts Options) *TCP[A] {
	s := &TCP[A]{}
	s.init("tcp", mode.String(), mode, opts)
	return s
}

// Open listens on addr in Server mode, or connects to addr in Client mode.
// Accepted sockets cannot be reopened.
func (s *TCP[A]) Open(addr A) error {
	return s.finish("open", -1, s.open(addr))
}

func (s *TCP[A]) open(addr A) error {
	if s.parent != nil {
		return ErrNotAllowed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil || s.conn != nil {
		return ErrAlreadyOpen
	}

	var zero A
	switch s.mode {
	case Server:
		lc := net.ListenConfig{Control: reuseAddr}
		l, err := lc.Listen(context.Background(), network[A]("tcp"), TCPAddrOf(addr).String())
		if err != nil {
			return &OpError{Socket: s.name, Op: "open", Kind: ErrOpenFailed, Err: err}
		}
		s.ln = l.(*net.TCPListener)
		s.children = make(map[*TCP[A]]struct{})
		s.local, _ = localAddr[A](s.ln)
		s.remote = zero
	default:
		d := net.Dialer{Timeout: s.opts.Timeout}
		c, err := d.Dial(network[A]("tcp"), TCPAddrOf(addr).String())
		if err != nil {
			return &OpError{Socket: s.name, Op: "open", Kind: ErrOpenFailed, Err: err}
		}
		s.conn = c.(*net.TCPConn)
		s.local, _ = localAddr[A](s.conn)
		s.remote = addr
	}
	return nil
}

// Close closes the socket. On a Server socket all accepted sockets are
// closed as well.
func (s *TCP[A]) Close() error {
	s.mu.Lock()
	ln, conn, children := s.ln, s.conn, s.children
	s.ln, s.conn, s.children = nil, nil, nil
	s.mu.Unlock()

	var err error
	switch {
	case ln != nil:
		err = ln.Close()
		for child := range children {
			child.Close()
		}
	case conn != nil:
		err = conn.Close()
		if s.parent != nil {
			s.parent.forget(s)
		}
	default:
		return nil
	}
	return s.finish("close", -1, err)
}

func (s *TCP[A]) forget(child *TCP[A]) {
	s.mu.Lock()
	delete(s.children, child)
	s.mu.Unlock()
}

// IsOpen reports whether the socket is open.
func (s *TCP[A]) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ln != nil || s.conn != nil
}

// Accept waits for the next connection, bounded by the receive timeout.
// Server mode only.
func (s *TCP[A]) Accept() (*TCP[A], A, error) {
	child, from, err := s.accept()
	if err != nil {
		return nil, from, s.finish("accept", -1, err)
	}
	child.finish("accept", -1, nil)
	return child, from, nil
}

func (s *TCP[A]) accept() (*TCP[A], A, error) {
	var from A
	if s.mode != Server {
		return nil, from, ErrNotAllowed
	}

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return nil, from, ErrNotOpen
	}

	if err := ln.SetDeadline(s.opts.deadline()); err != nil {
		return nil, from, err
	}
	c, err := ln.AcceptTCP()
	if err != nil {
		return nil, from, err
	}
	if from, err = AddrOf[A](c.RemoteAddr()); err != nil {
		c.Close()
		return nil, from, err
	}

	child := &TCP[A]{conn: c, parent: s}
	child.init("tcp", "accept", Client, s.opts)
	child.local, _ = localAddr[A](c)
	child.remote = from

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		// closed while accepting
		c.Close()
		return nil, from, ErrNotOpen
	}
	s.children[child] = struct{}{}
	return child, from, nil
}

func (s *TCP[A]) getConn() (*net.TCPConn, error) {
	if s.mode != Client {
		return nil, ErrNotAllowed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, ErrNotOpen
	}
	return s.conn, nil
}

// Recv reads what the peer sent, up to len(buf) bytes. An orderly shutdown
// by the peer is reported as ErrClosed.
func (s *TCP[A]) Recv(buf []byte) (int, error) {
	n, err := s.recv(buf)
	return n, s.finish("recv", n, err)
}

func (s *TCP[A]) recv(buf []byte) (int, error) {
	conn, err := s.getConn()
	if err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}
	if err = conn.SetReadDeadline(s.opts.deadline()); err != nil {
		return 0, err
	}
	n, err := conn.Read(buf)
	switch {
	case err != nil && n == 0:
		return 0, err
	case n == 0:
		return 0, ErrClosed
	}
	return n, nil
}

// Send writes buf to the peer.
func (s *TCP[A]) Send(buf []byte) (int, error) {
	n, err := s.send(buf)
	return n, s.finish("send", n, err)
}

func (s *TCP[A]) send(buf []byte) (int, error) {
	conn, err := s.getConn()
	if err != nil {
		return 0, err
	}
	return conn.Write(buf)
}
