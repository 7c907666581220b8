//go:build unix

package socket

import (
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/digineo/ipsockets/ip"
)

// SockaddrOf converts a to the raw socket address used by package unix.
func SockaddrOf[A Family](a A) unix.Sockaddr {
	switch a := any(a).(type) {
	case ip.AddrV4:
		return &unix.SockaddrInet4{Port: int(a.Port), Addr: a.IP}
	case ip.AddrV6:
		return &unix.SockaddrInet6{Port: int(a.Port), Addr: a.IP}
	}
	panic("unreachable")
}

// FromSockaddr is the inverse of SockaddrOf. An IPv4 sockaddr converts to a
// mapped ip.AddrV6.
func FromSockaddr[A Family](sa unix.Sockaddr) (A, error) {
	var out A
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		switch p := any(&out).(type) {
		case *ip.AddrV4:
			*p = ip.AddrV4{IP: sa.Addr, Port: uint16(sa.Port)}
		case *ip.AddrV6:
			*p = ip.AddrV6{IP: ip.IPv6FromIPv4(sa.Addr), Port: uint16(sa.Port)}
		}
	case *unix.SockaddrInet6:
		v6 := ip.IPv6(sa.Addr)
		switch p := any(&out).(type) {
		case *ip.AddrV4:
			if !v6.IsMappedIPv4() {
				return out, errors.Wrapf(ErrInvalidAddress, "%v is not an IPv4 endpoint", v6)
			}
			*p = ip.AddrV4{IP: v6.IPv4(), Port: uint16(sa.Port)}
		case *ip.AddrV6:
			*p = ip.AddrV6{IP: v6, Port: uint16(sa.Port)}
		}
	default:
		return out, errors.Wrapf(ErrInvalidAddress, "unsupported sockaddr %T", sa)
	}
	return out, nil
}

// localAddr asks the kernel which address c is bound to.
func localAddr[A Family](c syscall.Conn) (A, error) {
	var zero A
	rc, err := c.SyscallConn()
	if err != nil {
		return zero, err
	}

	var sa unix.Sockaddr
	var serr error
	if err = rc.Control(func(fd uintptr) {
		sa, serr = unix.Getsockname(int(fd))
	}); err != nil {
		return zero, err
	}
	if serr != nil {
		return zero, serr
	}
	return FromSockaddr[A](sa)
}

// reuseAddr is a net.ListenConfig control function setting SO_REUSEADDR.
func reuseAddr(_, _ string, c syscall.RawConn) error {
	var serr error
	if err := c.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}); err != nil {
		return err
	}
	return serr
}
