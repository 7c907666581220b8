package socket

import (
	"net"
	"net/netip"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digineo/ipsockets/ip"
)

func TestAddrConversion(t *testing.T) {
	assert := assert.New(t)

	a4 := ip.MustParseAddrV4("192.168.1.2:8080")
	assert.Equal(netip.MustParseAddrPort("192.168.1.2:8080"), AddrPortOf(a4))
	assert.Equal("192.168.1.2:8080", UDPAddrOf(a4).String())
	assert.Equal("192.168.1.2:8080", TCPAddrOf(a4).String())

	a6 := ip.MustParseAddrV6("[2001:db8::1]:53")
	assert.Equal("[2001:db8::1]:53", UDPAddrOf(a6).String())
	assert.Equal("[2001:db8::1]:53", TCPAddrOf(a6).String())

	got4, err := AddrOf[ip.AddrV4](UDPAddrOf(a4))
	assert.NoError(err)
	assert.Equal(a4, got4)

	got6, err := AddrOf[ip.AddrV6](TCPAddrOf(a6))
	assert.NoError(err)
	assert.Equal(a6, got6)
}

func TestAddrOfFamilies(t *testing.T) {
	assert := assert.New(t)

	// a 16 byte IPv4 address is still IPv4
	mapped := &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: 9}
	got4, err := AddrOf[ip.AddrV4](mapped)
	assert.NoError(err)
	assert.Equal(ip.MustParseAddrV4("10.0.0.1:9"), got4)

	// IPv6 sockets see IPv4 peers in mapped form
	got6, err := AddrOf[ip.AddrV6](mapped)
	assert.NoError(err)
	assert.Equal("[::ffff:10.0.0.1]:9", got6.String())

	_, err = AddrOf[ip.AddrV4](&net.UDPAddr{IP: net.ParseIP("::1"), Port: 9})
	assert.True(errors.Is(err, ErrInvalidAddress))

	var nilAddr *net.TCPAddr
	_, err = AddrOf[ip.AddrV4](nilAddr)
	assert.True(errors.Is(err, ErrInvalidAddress))

	_, err = AddrOf[ip.AddrV4](&net.UnixAddr{Name: "/tmp/sock", Net: "unix"})
	assert.True(errors.Is(err, ErrInvalidAddress))

	_, err = AddrOf[ip.AddrV6](&net.UDPAddr{Port: 9})
	assert.True(errors.Is(err, ErrInvalidAddress))

	_, err = FromAddrPort[ip.AddrV6](netip.AddrPort{})
	assert.True(errors.Is(err, ErrInvalidAddress))
}

func TestFromAddrPortZone(t *testing.T) {
	assert := assert.New(t)

	zoned := netip.MustParseAddrPort("[fe80::1%eth0]:546")
	got, err := FromAddrPort[ip.AddrV6](zoned)
	require.NoError(t, err)
	assert.Equal(ip.MustParseAddrV6("[fe80::1]:546"), got)
	assert.Equal(zoned.Addr().WithZone(""), AddrPortOf(got).Addr())

	_, err = FromAddrPort[ip.AddrV4](zoned)
	assert.True(errors.Is(err, ErrInvalidAddress))
}

func TestNamesAndNetworks(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("udp4", network[ip.AddrV4]("udp"))
	assert.Equal("tcp6", network[ip.AddrV6]("tcp"))
	assert.Equal("udp<ip4,server>", NewUDP[ip.AddrV4](Server, testOptions).Name())
	assert.Equal("udp<ip6,client>", NewUDP[ip.AddrV6](Client, testOptions).Name())
	assert.Equal("tcp<ip6,server>", NewTCP[ip.AddrV6](Server, testOptions).Name())
	assert.Equal("undefined", addrField(ip.AddrV4{}))

	require.Equal(t, Client, NewTCP[ip.AddrV4](Client, testOptions).Mode())
}
