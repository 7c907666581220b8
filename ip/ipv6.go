package ip

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

const (
	// IPv6Len is the size of an IPv6 address in bytes.
	IPv6Len = 16

	// "ffff:ffff:ffff:ffff:ffff:ffff:255.255.255.255"
	maxIPv6TextLen = 45
)

// IPv6 is an IPv6 address in network byte order: eight big-endian
// 16-bit groups.
type IPv6 [IPv6Len]byte

var mappedPrefix = [12]byte{10: 0xff, 11: 0xff}

// IPv6FromSlice copies an address out of b, which must be exactly 16 bytes long.
func IPv6FromSlice(b []byte) (IPv6, error) {
	if len(b) != IPv6Len {
		return IPv6{}, errors.Wrapf(ErrMalformedInput, "ipv6 from %d bytes", len(b))
	}
	return IPv6(b), nil
}

// IPv6FromIPv4 returns the IPv4-mapped address ::ffff:a.b.c.d.
func IPv6FromIPv4(v4 IPv4) (ip IPv6) {
	copy(ip[:], mappedPrefix[:])
	copy(ip[12:], v4[:])
	return
}

// IPv6FromGroups builds an address from its eight 16-bit groups.
func IPv6FromGroups(groups [8]uint16) (ip IPv6) {
	for i, g := range groups {
		binary.BigEndian.PutUint16(ip[2*i:], g)
	}
	return
}

// ParseIPv6 parses the textual IPv6 notation:
//
//	"1111:2222:3333:4444:5555:6666:7777:8888"
//	"1::5:6:7:8", "::5:6:7:8", "1:2:3:4::", "::"
//	"1:2:3:4:5:6:192.168.2.1", "::192.168.2.1"
//
// A bare IPv4 literal such as "192.168.2.1" yields the IPv4-mapped address
// ::ffff:192.168.2.1. On failure the zero address is returned along with an
// error wrapping ErrMalformedInput.
func ParseIPv6(s string) (IPv6, error) {
	if s == "" {
		return IPv6{}, malformed("ipv6", s, "empty string")
	}
	if len(s) > maxIPv6TextLen {
		return IPv6{}, malformed("ipv6", s, "too long")
	}

	if !strings.Contains(s, ":") {
		v4, ok := parseDottedQuad(s)
		if !ok {
			return IPv6{}, malformed("ipv6", s, "no colon and not an IPv4 literal")
		}
		return IPv6FromIPv4(v4), nil
	}

	var groups [8]uint16
	n, i := 0, 0
	ellipsis := -1 // group index where "::" was found

	if strings.HasPrefix(s, "::") {
		ellipsis = 0
		i = 2
	}

	for i < len(s) {
		j := i
		var acc uint32
		for j < len(s) && j-i <= 4 {
			d, ok := digitValue(s[j])
			if !ok {
				break
			}
			acc = acc<<4 | uint32(d)
			j++
		}

		if j < len(s) && s[j] == '.' {
			// embedded IPv4, must be the last two groups
			if n > 6 {
				return IPv6{}, malformed("ipv6", s, "too many groups before IPv4 suffix")
			}
			v4, ok := parseDottedQuad(s[i:])
			if !ok {
				return IPv6{}, malformed("ipv6", s, "invalid IPv4 suffix")
			}
			groups[n] = uint16(v4[0])<<8 | uint16(v4[1])
			groups[n+1] = uint16(v4[2])<<8 | uint16(v4[3])
			n += 2
			i = len(s)
			break
		}

		switch {
		case j == i:
			return IPv6{}, malformed("ipv6", s, "empty group")
		case j-i > 4:
			return IPv6{}, malformed("ipv6", s, "group longer than 4 digits")
		case n == len(groups):
			return IPv6{}, malformed("ipv6", s, "too many groups")
		}
		groups[n] = uint16(acc)
		n++
		i = j

		if i == len(s) {
			break
		}
		if s[i] != ':' {
			return IPv6{}, malformed("ipv6", s, "unexpected character "+quote(s[i:i+1]))
		}
		i++
		if i < len(s) && s[i] == ':' {
			if ellipsis >= 0 {
				return IPv6{}, malformed("ipv6", s, "more than one \"::\"")
			}
			ellipsis = n
			i++
		} else if i == len(s) {
			return IPv6{}, malformed("ipv6", s, "trailing colon")
		}
	}

	if ellipsis < 0 {
		if n != len(groups) {
			return IPv6{}, malformed("ipv6", s, "too few groups")
		}
	} else {
		if n == len(groups) {
			return IPv6{}, malformed("ipv6", s, "\"::\" stands for no groups")
		}
		// move the groups after "::" to the end, zero the gap
		gap := len(groups) - n
		for k := n - 1; k >= ellipsis; k-- {
			groups[k+gap] = groups[k]
		}
		for k := ellipsis; k < ellipsis+gap; k++ {
			groups[k] = 0
		}
	}

	return IPv6FromGroups(groups), nil
}

// MustParseIPv6 is like ParseIPv6 but panics on malformed input.
// It is intended for tests and hard-coded values.
func MustParseIPv6(s string) IPv6 {
	ip, err := ParseIPv6(s)
	if err != nil {
		panic(err)
	}
	return ip
}

// parseDottedQuad accepts exactly four decimal octets.
func parseDottedQuad(s string) (v4 IPv4, ok bool) {
	tokens := strings.Split(s, ".")
	if len(tokens) != IPv4Len {
		return IPv4{}, false
	}
	for i, tok := range tokens {
		if tok == "" || len(tok) > 3 {
			return IPv4{}, false
		}
		var acc int
		for k := 0; k < len(tok); k++ {
			c := tok[k]
			if c < '0' || c > '9' {
				return IPv4{}, false
			}
			acc = acc*10 + int(c-'0')
		}
		if acc > 0xff {
			return IPv4{}, false
		}
		v4[i] = byte(acc)
	}
	return v4, true
}

// Group returns the i-th 16-bit group (0..7).
func (ip IPv6) Group(i int) uint16 {
	return binary.BigEndian.Uint16(ip[2*i:])
}

// IPv4 returns the embedded IPv4 address stored in the last four bytes.
func (ip IPv6) IPv4() (v4 IPv4) {
	copy(v4[:], ip[12:])
	return
}

// IsMappedIPv4 reports whether ip has the form ::ffff:a.b.c.d.
func (ip IPv6) IsMappedIPv4() bool {
	return [12]byte(ip[:12]) == mappedPrefix
}

// IsUnspecified reports whether ip is ::.
func (ip IPv6) IsUnspecified() bool {
	return ip == IPv6{}
}

// And returns the byte-wise AND of ip and other.
func (ip IPv6) And(other IPv6) (out IPv6) {
	andBytes(out[:], ip[:], other[:])
	return
}

// Masked returns ip with all but the leading prefix bits cleared.
func (ip IPv6) Masked(prefix int) IPv6 {
	return ip.And(IPv6Mask(prefix))
}

// String returns the compressed form, see Format.
func (ip IPv6) String() string {
	return ip.Format(true, false)
}

// Format returns the textual form of ip.
//
// Without reduce all eight groups are printed. With reduce the longest run
// of two or more zero groups (the leftmost one on ties) is replaced by "::",
// and an IPv4-mapped tail is printed as "ffff:a.b.c.d". With embedIPv4 the
// last four bytes are always printed in dotted decimal notation.
func (ip IPv6) Format(reduce, embedIPv4 bool) string {
	b := make([]byte, 0, maxIPv6TextLen)
	return string(ip.appendTo(b, reduce, embedIPv4))
}

func (ip IPv6) appendTo(b []byte, reduce, embedIPv4 bool) []byte {
	hexGroups := 8
	if embedIPv4 {
		hexGroups = 6
	}

	zeroStart, zeroEnd := -1, -1
	if reduce {
		zeroStart, zeroEnd = ip.zeroRun(hexGroups)
		if !embedIPv4 && zeroStart >= 0 && zeroStart <= 4 && zeroEnd == 5 && ip.Group(5) == 0xffff {
			embedIPv4 = true
			hexGroups = 6
		}
	}

	for i := 0; i < hexGroups; i++ {
		if i == zeroStart {
			b = append(b, ':', ':')
			i = zeroEnd - 1
			continue
		}
		if i > 0 && i != zeroEnd {
			b = append(b, ':')
		}
		b = appendHex(b, ip.Group(i))
	}

	if embedIPv4 {
		if zeroEnd != hexGroups {
			b = append(b, ':')
		}
		b = ip.IPv4().appendTo(b)
	}
	return b
}

// zeroRun finds the longest run of at least two zero groups among the
// first n groups. end is exclusive; both are -1 if there is none.
func (ip IPv6) zeroRun(n int) (start, end int) {
	start, end = -1, -1
	for i := 0; i < n; i++ {
		j := i
		for j < n && ip.Group(j) == 0 {
			j++
		}
		if l := j - i; l >= 2 && l > end-start {
			start, end = i, j
		}
		if j > i {
			i = j
		}
	}
	return
}

// MarshalText implements encoding.TextMarshaler.
func (ip IPv6) MarshalText() ([]byte, error) {
	return ip.appendTo(nil, true, false), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ip *IPv6) UnmarshalText(text []byte) (err error) {
	*ip, err = ParseIPv6(string(text))
	return
}

func appendHex(b []byte, x uint16) []byte {
	if x >= 0x1000 {
		b = append(b, digits[x>>12])
	}
	if x >= 0x100 {
		b = append(b, digits[x>>8&0xf])
	}
	if x >= 0x10 {
		b = append(b, digits[x>>4&0xf])
	}
	return append(b, digits[x&0xf])
}
