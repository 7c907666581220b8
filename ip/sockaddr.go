package ip

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Sizes of the raw socket address encoding: address bytes followed by the
// port in big-endian order.
const (
	RawAddrV4Len = IPv4Len + 2
	RawAddrV6Len = IPv6Len + 2
)

// AddrV4 holds an IPv4 address and a port number.
// The zero value is the unset address.
type AddrV4 struct {
	IP   IPv4
	Port uint16
}

// AddrV6 holds an IPv6 address and a port number.
// The zero value is the unset address.
type AddrV6 struct {
	IP   IPv6
	Port uint16
}

// ParseAddrV4 parses "a.b.c.d:port". The address part accepts every form
// ParseIPv4 does, the port must be a decimal number in 1..65535.
func ParseAddrV4(s string) (AddrV4, error) {
	host, port, ok := strings.Cut(s, ":")
	if !ok {
		return AddrV4{}, malformed("ipv4 address", s, "missing port")
	}

	ip, err := ParseIPv4(host)
	if err != nil {
		return AddrV4{}, errors.Wrapf(err, "ipv4 address %q", s)
	}
	p, ok := parsePort(port)
	if !ok {
		return AddrV4{}, malformed("ipv4 address", s, "invalid port "+quote(port))
	}
	return AddrV4{IP: ip, Port: p}, nil
}

// ParseAddrV6 parses "[ipv6]:port". The brackets are mandatory.
func ParseAddrV6(s string) (AddrV6, error) {
	if !strings.HasPrefix(s, "[") {
		return AddrV6{}, malformed("ipv6 address", s, "missing '['")
	}
	end := strings.IndexByte(s, ']')
	switch {
	case end < 0:
		return AddrV6{}, malformed("ipv6 address", s, "missing ']'")
	case end == 1:
		return AddrV6{}, malformed("ipv6 address", s, "empty address")
	case end+1 == len(s) || s[end+1] != ':':
		return AddrV6{}, malformed("ipv6 address", s, "missing port")
	}

	ip, err := ParseIPv6(s[1:end])
	if err != nil {
		return AddrV6{}, errors.Wrapf(err, "ipv6 address %q", s)
	}
	port := s[end+2:]
	p, ok := parsePort(port)
	if !ok {
		return AddrV6{}, malformed("ipv6 address", s, "invalid port "+quote(port))
	}
	return AddrV6{IP: ip, Port: p}, nil
}

// MustParseAddrV4 is like ParseAddrV4 but panics on malformed input.
func MustParseAddrV4(s string) AddrV4 {
	a, err := ParseAddrV4(s)
	if err != nil {
		panic(err)
	}
	return a
}

// MustParseAddrV6 is like ParseAddrV6 but panics on malformed input.
func MustParseAddrV6(s string) AddrV6 {
	a, err := ParseAddrV6(s)
	if err != nil {
		panic(err)
	}
	return a
}

// parsePort accepts 1..65535 written with decimal digits only.
func parsePort(s string) (uint16, bool) {
	if s == "" || len(s) > len("65535") {
		return 0, false
	}
	var acc uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		acc = acc*10 + uint32(c-'0')
	}
	if acc == 0 || acc > 0xffff {
		return 0, false
	}
	return uint16(acc), true
}

// ParseRawAddrV4 decodes the raw encoding produced by AddrV4.Raw.
func ParseRawAddrV4(buf []byte) (AddrV4, error) {
	if len(buf) != RawAddrV4Len {
		return AddrV4{}, errors.Wrapf(ErrMalformedInput, "raw ipv4 address of %d bytes", len(buf))
	}
	return AddrV4{
		IP:   IPv4(buf[:IPv4Len]),
		Port: binary.BigEndian.Uint16(buf[IPv4Len:]),
	}, nil
}

// ParseRawAddrV6 decodes the raw encoding produced by AddrV6.Raw.
func ParseRawAddrV6(buf []byte) (AddrV6, error) {
	if len(buf) != RawAddrV6Len {
		return AddrV6{}, errors.Wrapf(ErrMalformedInput, "raw ipv6 address of %d bytes", len(buf))
	}
	return AddrV6{
		IP:   IPv6(buf[:IPv6Len]),
		Port: binary.BigEndian.Uint16(buf[IPv6Len:]),
	}, nil
}

// IsZero reports whether a is the unset address.
func (a AddrV4) IsZero() bool { return a == AddrV4{} }

// IsZero reports whether a is the unset address.
func (a AddrV6) IsZero() bool { return a == AddrV6{} }

func (a AddrV4) String() string {
	b := make([]byte, 0, len("255.255.255.255:65535"))
	b = a.IP.appendTo(b)
	b = append(b, ':')
	return string(appendPort(b, a.Port))
}

func (a AddrV6) String() string {
	b := make([]byte, 0, maxIPv6TextLen+len("[]:65535"))
	b = append(b, '[')
	b = a.IP.appendTo(b, true, false)
	b = append(b, ']', ':')
	return string(appendPort(b, a.Port))
}

func appendPort(b []byte, port uint16) []byte {
	var buf [5]byte
	i := len(buf)
	for {
		i--
		buf[i] = digits[port%10]
		port /= 10
		if port == 0 {
			break
		}
	}
	return append(b, buf[i:]...)
}

// Write puts the raw encoding into out, which must hold RawAddrV4Len bytes.
func (a AddrV4) Write(out []byte) {
	copy(out, a.IP[:])
	binary.BigEndian.PutUint16(out[IPv4Len:], a.Port)
}

// Write puts the raw encoding into out, which must hold RawAddrV6Len bytes.
func (a AddrV6) Write(out []byte) {
	copy(out, a.IP[:])
	binary.BigEndian.PutUint16(out[IPv6Len:], a.Port)
}

// RawFixed writes the address into an array.
func (a AddrV4) RawFixed() (raw [RawAddrV4Len]byte) {
	a.Write(raw[:])
	return
}

// RawFixed writes the address into an array.
func (a AddrV6) RawFixed() (raw [RawAddrV6Len]byte) {
	a.Write(raw[:])
	return
}

// Raw writes the address into a slice.
func (a AddrV4) Raw() []byte {
	raw := a.RawFixed()
	return raw[:]
}

// Raw writes the address into a slice.
func (a AddrV6) Raw() []byte {
	raw := a.RawFixed()
	return raw[:]
}

// Hash returns a hash of the raw encoding. Equal addresses hash equal.
func (a AddrV4) Hash() uint64 {
	raw := a.RawFixed()
	return xxhash.Sum64(raw[:])
}

// Hash returns a hash of the raw encoding. Equal addresses hash equal.
func (a AddrV6) Hash() uint64 {
	raw := a.RawFixed()
	return xxhash.Sum64(raw[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a AddrV4) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// MarshalText implements encoding.TextMarshaler.
func (a AddrV6) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AddrV4) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAddrV4(string(text))
	return
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AddrV6) UnmarshalText(text []byte) (err error) {
	*a, err = ParseAddrV6(string(text))
	return
}
