package ip

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

const (
	// IPv4Len is the size of an IPv4 address in bytes.
	IPv4Len = 4

	// longest accepted IPv4 text, "0xFF.0xFF.0xFF.0xFF" plus one spare
	maxIPv4TextLen = 20
)

// IPv4 is an IPv4 address in network byte order.
type IPv4 [IPv4Len]byte

// IPv4FromUint32 returns the address whose numeric value is v (host order).
func IPv4FromUint32(v uint32) (ip IPv4) {
	binary.NativeEndian.PutUint32(ip[:], ToNetwork(v))
	return
}

// IPv4FromSlice copies an address out of b, which must be exactly 4 bytes long.
func IPv4FromSlice(b []byte) (IPv4, error) {
	if len(b) != IPv4Len {
		return IPv4{}, errors.Wrapf(ErrMalformedInput, "ipv4 from %d bytes", len(b))
	}
	return IPv4(b), nil
}

// ParseIPv4 parses the dotted-decimal notation and its inet_aton shorthands:
//
//	"192.168.1.2"          four octets
//	"0xc0.0xa8.0x01.0x02"  octets in hex
//	"192.168.2"            192.168.0.2, the last token fills the last byte
//	"127.1"                127.0.0.1
//	"3232235778"           a single 32-bit number
//	"0xc0a80102"           the same number in hex
//
// On failure the zero address is returned along with an error wrapping
// ErrMalformedInput.
func ParseIPv4(s string) (IPv4, error) {
	if s == "" {
		return IPv4{}, malformed("ipv4", s, "empty string")
	}
	if len(s) > maxIPv4TextLen {
		return IPv4{}, malformed("ipv4", s, "too long")
	}

	tokens := strings.Split(s, ".")
	if len(tokens) > IPv4Len {
		return IPv4{}, malformed("ipv4", s, "too many dots")
	}

	if len(tokens) == 1 {
		v, ok := parseNumber(s, 0xffffffff)
		if !ok {
			return IPv4{}, malformed("ipv4", s, "invalid number")
		}
		return IPv4FromUint32(v), nil
	}

	// 1.2.3.4  1.2.x.3  1.x.x.2
	var ip IPv4
	last := len(tokens) - 1
	for i, tok := range tokens[:last] {
		v, ok := parseNumber(tok, 0xff)
		if !ok {
			return IPv4{}, malformed("ipv4", s, "invalid octet "+quote(tok))
		}
		ip[i] = byte(v)
	}

	v, ok := parseNumber(tokens[last], 0xff)
	if !ok {
		return IPv4{}, malformed("ipv4", s, "invalid octet "+quote(tokens[last]))
	}
	ip[IPv4Len-1] = byte(v)

	return ip, nil
}

// MustParseIPv4 is like ParseIPv4 but panics on malformed input.
// It is intended for tests and hard-coded values.
func MustParseIPv4(s string) IPv4 {
	ip, err := ParseIPv4(s)
	if err != nil {
		panic(err)
	}
	return ip
}

// parseNumber parses a decimal or 0x-prefixed hexadecimal number not
// exceeding limit.
func parseNumber(s string, limit uint32) (uint32, bool) {
	base := uint64(10)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	if s == "" {
		return 0, false
	}

	var acc uint64
	for i := 0; i < len(s); i++ {
		d, ok := digitValue(s[i])
		if !ok || uint64(d) >= base {
			return 0, false
		}
		acc = acc*base + uint64(d)
		if acc > uint64(limit) {
			return 0, false
		}
	}
	return uint32(acc), true
}

func digitValue(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func quote(s string) string {
	return `"` + s + `"`
}

// Uint32 returns the numeric value of ip in host byte order.
func (ip IPv4) Uint32() uint32 {
	return ToHost(binary.NativeEndian.Uint32(ip[:]))
}

// IsUnspecified reports whether ip is 0.0.0.0.
func (ip IPv4) IsUnspecified() bool {
	return ip == IPv4{}
}

// And returns the byte-wise AND of ip and other.
func (ip IPv4) And(other IPv4) (out IPv4) {
	andBytes(out[:], ip[:], other[:])
	return
}

// Masked returns ip with all but the leading prefix bits cleared.
func (ip IPv4) Masked(prefix int) IPv4 {
	return ip.And(IPv4Mask(prefix))
}

// String returns the dotted-decimal form, e.g. "192.168.1.2".
func (ip IPv4) String() string {
	return string(ip.appendTo(make([]byte, 0, len("255.255.255.255"))))
}

func (ip IPv4) appendTo(b []byte) []byte {
	for i, octet := range ip {
		if i > 0 {
			b = append(b, '.')
		}
		b = appendDecimal(b, octet)
	}
	return b
}

// MarshalText implements encoding.TextMarshaler.
func (ip IPv4) MarshalText() ([]byte, error) {
	return ip.appendTo(nil), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ip *IPv4) UnmarshalText(text []byte) (err error) {
	*ip, err = ParseIPv4(string(text))
	return
}

const digits = "0123456789abcdef"

func appendDecimal(b []byte, x uint8) []byte {
	if x >= 100 {
		b = append(b, digits[x/100])
	}
	if x >= 10 {
		b = append(b, digits[x/10%10])
	}
	return append(b, digits[x%10])
}
