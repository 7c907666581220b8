package socket

import (
	"net"
	"net/netip"

	"github.com/pkg/errors"
	"go4.org/netipx"

	"github.com/digineo/ipsockets/ip"
)

// AddrPortOf converts a to a netip.AddrPort.
func AddrPortOf[A Family](a A) netip.AddrPort {
	switch a := any(a).(type) {
	case ip.AddrV4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.IP), a.Port)
	case ip.AddrV6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.IP), a.Port)
	}
	panic("unreachable")
}

// UDPAddrOf converts a to a *net.UDPAddr.
func UDPAddrOf[A Family](a A) *net.UDPAddr {
	return net.UDPAddrFromAddrPort(AddrPortOf(a))
}

// TCPAddrOf converts a to a *net.TCPAddr.
func TCPAddrOf[A Family](a A) *net.TCPAddr {
	return net.TCPAddrFromAddrPort(AddrPortOf(a))
}

// FromAddrPort converts ap to A. IPv4 sockets only accept IPv4 endpoints
// (mapped ones included), IPv6 sockets store IPv4 endpoints in mapped form.
//
// AddrV6 has no zone, so the scope of a link-local endpoint such as
// fe80::1%eth0 is dropped. Replies to such a peer only reach it when the
// socket is bound to that interface.
func FromAddrPort[A Family](ap netip.AddrPort) (A, error) {
	var out A
	addr := ap.Addr()
	if !addr.IsValid() {
		return out, errors.Wrap(ErrInvalidAddress, "no address")
	}

	switch p := any(&out).(type) {
	case *ip.AddrV4:
		addr = addr.Unmap()
		if !addr.Is4() {
			return out, errors.Wrapf(ErrInvalidAddress, "%s is not an IPv4 endpoint", ap)
		}
		*p = ip.AddrV4{IP: addr.As4(), Port: ap.Port()}
	case *ip.AddrV6:
		*p = ip.AddrV6{IP: addr.WithZone("").As16(), Port: ap.Port()}
	}
	return out, nil
}

// AddrOf converts a *net.UDPAddr or *net.TCPAddr to A.
func AddrOf[A Family](na net.Addr) (A, error) {
	var zero A
	var std net.IP
	var port int

	switch na := na.(type) {
	case *net.UDPAddr:
		if na == nil {
			return zero, errors.Wrap(ErrInvalidAddress, "nil address")
		}
		std, port = na.IP, na.Port
	case *net.TCPAddr:
		if na == nil {
			return zero, errors.Wrap(ErrInvalidAddress, "nil address")
		}
		std, port = na.IP, na.Port
	default:
		return zero, errors.Wrapf(ErrInvalidAddress, "unsupported address %v", na)
	}

	addr, ok := netipx.FromStdIP(std)
	if !ok {
		return zero, errors.Wrapf(ErrInvalidAddress, "invalid IP %v", std)
	}
	return FromAddrPort[A](netip.AddrPortFrom(addr, uint16(port)))
}
