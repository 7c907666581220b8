package socket

import (
	"context"
	"net"
)

// UDP is a datagram socket. It is safe for concurrent use; Close unblocks
// pending reads.
type UDP[A Family] struct {
	base[A]
	conn *net.UDPConn // guarded by mu
}

// NewUDP returns an unopened UDP socket.
func NewUDP[A Family](mode Mode, opts Options) *UDP[A] {
	s := &UDP[A]{}
	s.init("udp", mode.String(), mode, opts)
	return s
}

// Open binds the socket to addr in Server mode, or connects it to addr in
// Client mode. Server sockets set SO_REUSEADDR.
func (s *UDP[A]) Open(addr A) error {
	return s.finish("open", -1, s.open(addr))
}

func (s *UDP[A]) open(addr A) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return ErrAlreadyOpen
	}

	var (
		c   net.Conn
		err error
	)
	switch s.mode {
	case Server:
		lc := net.ListenConfig{Control: reuseAddr}
		var pc net.PacketConn
		pc, err = lc.ListenPacket(context.Background(), network[A]("udp"), UDPAddrOf(addr).String())
		if err == nil {
			c = pc.(*net.UDPConn)
		}
	default:
		var d net.Dialer
		c, err = d.Dial(network[A]("udp"), UDPAddrOf(addr).String())
	}
	if err != nil {
		return &OpError{Socket: s.name, Op: "open", Kind: ErrOpenFailed, Err: err}
	}

	s.conn = c.(*net.UDPConn)
	s.local, _ = localAddr[A](s.conn)
	var zero A
	s.remote = zero
	if s.mode == Client {
		s.remote = addr
	}
	return nil
}

// Close closes the socket. Closing an unopened socket is a no-op.
func (s *UDP[A]) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	return s.finish("close", -1, conn.Close())
}

// IsOpen reports whether the socket is open.
func (s *UDP[A]) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *UDP[A]) getConn() (*net.UDPConn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, ErrNotOpen
	}
	return s.conn, nil
}

// Recv reads one datagram from the connected peer. Client mode only.
func (s *UDP[A]) Recv(buf []byte) (int, error) {
	n, err := s.recv(buf)
	return n, s.finish("recv", n, err)
}

func (s *UDP[A]) recv(buf []byte) (int, error) {
	conn, err := s.getConn()
	if err != nil {
		return 0, err
	}
	if s.mode != Client {
		return 0, ErrNotAllowed
	}
	if err = conn.SetReadDeadline(s.opts.deadline()); err != nil {
		return 0, err
	}
	n, err := conn.Read(buf)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// RecvFrom reads one datagram and returns its sender.
func (s *UDP[A]) RecvFrom(buf []byte) (int, A, error) {
	n, from, err := s.recvFrom(buf)
	return n, from, s.finish("recvfrom", n, err)
}

func (s *UDP[A]) recvFrom(buf []byte) (int, A, error) {
	var from A
	conn, err := s.getConn()
	if err != nil {
		return 0, from, err
	}
	if err = conn.SetReadDeadline(s.opts.deadline()); err != nil {
		return 0, from, err
	}
	n, ap, err := conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		return 0, from, err
	}
	if from, err = FromAddrPort[A](ap); err != nil {
		return 0, from, err
	}
	s.setRemote(from)
	return n, from, nil
}

// Send writes buf to the connected peer. Client mode only.
func (s *UDP[A]) Send(buf []byte) (int, error) {
	n, err := s.send(buf)
	return n, s.finish("send", n, err)
}

func (s *UDP[A]) send(buf []byte) (int, error) {
	conn, err := s.getConn()
	if err != nil {
		return 0, err
	}
	if s.mode != Client {
		return 0, ErrNotAllowed
	}
	n, err := conn.Write(buf)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// SendTo writes buf to the given peer. A Client socket can only send to the
// peer it is connected to.
func (s *UDP[A]) SendTo(buf []byte, to A) (int, error) {
	n, err := s.sendTo(buf, to)
	return n, s.finish("sendto", n, err)
}

func (s *UDP[A]) sendTo(buf []byte, to A) (int, error) {
	conn, err := s.getConn()
	if err != nil {
		return 0, err
	}

	var n int
	if s.mode == Client {
		if to != s.RemoteAddr() {
			return 0, ErrNotAllowed
		}
		n, err = conn.Write(buf)
	} else {
		s.setRemote(to)
		n, err = conn.WriteToUDPAddrPort(buf, AddrPortOf(to))
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
