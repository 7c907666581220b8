package socket

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/digineo/ipsockets/ip"
)

// EchoServer is an echo service sending every datagram or stream chunk back
// to where it came from.
type EchoServer interface {
	// Serve runs until ctx is cancelled or Close is called.
	Serve(ctx context.Context) error
	// LocalAddr returns the bound address, e.g. "127.0.0.1:4242".
	LocalAddr() string
	Close() error
}

// ServerBuilder opens an EchoServer listening on an "ip:port" or "[ip6]:port"
// address.
type ServerBuilder func(listen string, opts Options) (EchoServer, error)

var implementations = map[string]ServerBuilder{
	"udp": NewUDPServer,
	"tcp": NewTCPServer,
}

// NewServer opens an EchoServer of the named implementation ("udp" or "tcp").
func NewServer(implName, listen string, opts Options) (EchoServer, error) {
	impl := implementations[implName]
	if impl == nil {
		return nil, errors.Errorf("unknown implementation: %s", implName)
	}
	return impl(listen, opts)
}

// NewUDPServer is the ServerBuilder for UDP.
func NewUDPServer(listen string, opts Options) (EchoServer, error) {
	if strings.HasPrefix(listen, "[") {
		return build(ip.ParseAddrV6, NewUDPEcho[ip.AddrV6], listen, opts)
	}
	return build(ip.ParseAddrV4, NewUDPEcho[ip.AddrV4], listen, opts)
}

// NewTCPServer is the ServerBuilder for TCP.
func NewTCPServer(listen string, opts Options) (EchoServer, error) {
	if strings.HasPrefix(listen, "[") {
		return build(ip.ParseAddrV6, NewTCPEcho[ip.AddrV6], listen, opts)
	}
	return build(ip.ParseAddrV4, NewTCPEcho[ip.AddrV4], listen, opts)
}

func build[A Family, S EchoServer](
	parse func(string) (A, error),
	open func(A, Options) (S, error),
	listen string,
	opts Options,
) (EchoServer, error) {
	addr, err := parse(listen)
	if err != nil {
		return nil, err
	}
	srv, err := open(addr, opts)
	if err != nil {
		return nil, err
	}
	return srv, nil
}

// maxDatagram is the largest UDP payload.
const maxDatagram = 65535

// UDPEcho echoes datagrams.
type UDPEcho[A Family] struct {
	sock *UDP[A]
}

// NewUDPEcho binds a UDP echo server to addr.
func NewUDPEcho[A Family](addr A, opts Options) (*UDPEcho[A], error) {
	sock := NewUDP[A](Server, opts)
	if err := sock.Open(addr); err != nil {
		return nil, err
	}
	return &UDPEcho[A]{sock: sock}, nil
}

func (srv *UDPEcho[A]) LocalAddr() string { return srv.sock.LocalAddr().String() }

func (srv *UDPEcho[A]) Close() error { return srv.sock.Close() }

func (srv *UDPEcho[A]) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		srv.sock.Close()
		return nil
	})
	g.Go(func() error {
		defer cancel()

		buf := make([]byte, maxDatagram)
		for {
			n, from, err := srv.sock.RecvFrom(buf)
			switch {
			case err == nil:
				// a failed reply is logged by SendTo and must not stop the loop
				_, _ = srv.sock.SendTo(buf[:n], from)
			case errors.Is(err, ErrTimeout), errors.Is(err, ErrUnreachable):
				// keep going
			case errors.Is(err, ErrNotOpen):
				return nil
			default:
				return err
			}
		}
	})
	return g.Wait()
}

// TCPEcho echoes stream data, one goroutine per connection.
type TCPEcho[A Family] struct {
	sock *TCP[A]
}

// NewTCPEcho opens a TCP echo server listening on addr.
func NewTCPEcho[A Family](addr A, opts Options) (*TCPEcho[A], error) {
	sock := NewTCP[A](Server, opts)
	if err := sock.Open(addr); err != nil {
		return nil, err
	}
	return &TCPEcho[A]{sock: sock}, nil
}

func (srv *TCPEcho[A]) LocalAddr() string { return srv.sock.LocalAddr().String() }

func (srv *TCPEcho[A]) Close() error { return srv.sock.Close() }

func (srv *TCPEcho[A]) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		srv.sock.Close()
		return nil
	})
	g.Go(func() error {
		defer cancel()

		for {
			conn, _, err := srv.sock.Accept()
			switch {
			case err == nil:
				g.Go(func() error {
					echo(conn)
					return nil
				})
			case errors.Is(err, ErrTimeout):
			case errors.Is(err, ErrNotOpen):
				return nil
			default:
				return err
			}
		}
	})
	return g.Wait()
}

// echo copies everything conn receives back to it until the peer goes away
// or conn is closed.
func echo[A Family](conn *TCP[A]) {
	defer conn.Close()

	buf := make([]byte, 4096)
	for {
		n, err := conn.Recv(buf)
		if errors.Is(err, ErrTimeout) {
			continue
		}
		if err != nil {
			return
		}
		if _, err = conn.Send(buf[:n]); err != nil {
			return
		}
	}
}
