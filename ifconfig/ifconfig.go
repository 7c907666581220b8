// Package ifconfig lists the addresses configured on network interfaces.
package ifconfig

import (
	"net"
	"strconv"

	"go4.org/netipx"

	"github.com/digineo/ipsockets/ip"
)

// Address is an interface address with its prefix length. IPv4 addresses
// are stored in IPv4-mapped form, their PrefixLen counts IPv4 bits.
type Address struct {
	IP        ip.IPv6
	PrefixLen int
}

// IsIPv4 reports whether addr is an IPv4-mapped IPv6 address.
func IsIPv4(addr ip.IPv6) bool {
	return addr.IsMappedIPv4()
}

func (a Address) IsIPv4() bool {
	return IsIPv4(a.IP)
}

// Network returns the address with the host bits cleared.
func (a Address) Network() Address {
	if a.IsIPv4() {
		return Address{IP: ip.IPv6FromIPv4(a.IP.IPv4().Masked(a.PrefixLen)), PrefixLen: a.PrefixLen}
	}
	return Address{IP: a.IP.Masked(a.PrefixLen), PrefixLen: a.PrefixLen}
}

// String returns the CIDR notation, e.g. "192.168.1.2/24" or "fe80::1/64".
func (a Address) String() string {
	if a.IsIPv4() {
		return a.IP.IPv4().String() + "/" + strconv.Itoa(a.PrefixLen)
	}
	return a.IP.String() + "/" + strconv.Itoa(a.PrefixLen)
}

func fromIPNet(n *net.IPNet) (Address, bool) {
	if n == nil {
		return Address{}, false
	}
	prefix, ok := netipx.FromStdIPNet(n)
	if !ok {
		return Address{}, false
	}
	return Address{IP: prefix.Addr().As16(), PrefixLen: prefix.Bits()}, true
}
