package ip

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddrV4(t *testing.T) {
	tests := []struct {
		input string
		want  AddrV4
		str   string
	}{
		{"192.168.1.2:8080", AddrV4{IPv4{192, 168, 1, 2}, 8080}, "192.168.1.2:8080"},
		{"127.1:80", AddrV4{IPv4{127, 0, 0, 1}, 80}, "127.0.0.1:80"},
		{"0xc0a80102:1", AddrV4{IPv4{192, 168, 1, 2}, 1}, "192.168.1.2:1"},
		{"0.0.0.0:65535", AddrV4{IPv4{}, 65535}, "0.0.0.0:65535"},
		{"10.0.0.1:00053", AddrV4{IPv4{10, 0, 0, 1}, 53}, "10.0.0.1:53"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAddrV4(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestParseAddrV4Invalid(t *testing.T) {
	inputs := []string{
		"",
		"1.2.3.4",
		"1.2.3.4:",
		"1.2.3.4:0",
		"1.2.3.4:65536",
		"1.2.3.4:123456",
		"1.2.3.4:8a",
		"1.2.3.4:-1",
		"1.2.3.4:+1",
		"1.2.3.4:80:90",
		":80",
		"1.2.3.256:80",
		"[::1]:80",
	}

	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			got, err := ParseAddrV4(s)
			assert.True(t, errors.Is(err, ErrMalformedInput), "%v", err)
			assert.True(t, got.IsZero())
		})
	}
}

func TestParseAddrV6(t *testing.T) {
	tests := []struct {
		input string
		want  AddrV6
		str   string
	}{
		{"[::1]:443", AddrV6{IPv6{15: 1}, 443}, "[::1]:443"},
		{"[2001:DB8::1]:8080", AddrV6{MustParseIPv6("2001:db8::1"), 8080}, "[2001:db8::1]:8080"},
		{"[1:2:3:4:5:6:192.168.2.1]:53", AddrV6{MustParseIPv6("1:2:3:4:5:6:c0a8:201"), 53}, "[1:2:3:4:5:6:c0a8:201]:53"},
		{"[10.0.0.1]:1", AddrV6{IPv6FromIPv4(IPv4{10, 0, 0, 1}), 1}, "[::ffff:10.0.0.1]:1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAddrV6(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}
}

func TestParseAddrV6Invalid(t *testing.T) {
	inputs := []string{
		"",
		"::1:443",
		"[::1]",
		"[::1]443",
		"[]:80",
		"[::1:80",
		"[::1]:",
		"[::1]:0",
		"[::1]:65536",
		"[zz]:80",
		"[::1]]:80",
		"1.2.3.4:80",
	}

	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			got, err := ParseAddrV6(s)
			assert.True(t, errors.Is(err, ErrMalformedInput), "%v", err)
			assert.True(t, got.IsZero())
		})
	}
}

func TestAddrRaw(t *testing.T) {
	assert := assert.New(t)

	a4 := AddrV4{IPv4{1, 2, 3, 4}, 0x1f90}
	assert.Equal([]byte{1, 2, 3, 4, 0x1f, 0x90}, a4.Raw())
	got4, err := ParseRawAddrV4(a4.Raw())
	assert.NoError(err)
	assert.Equal(a4, got4)

	a6 := MustParseAddrV6("[fe80::1]:53")
	raw := a6.RawFixed()
	assert.Equal(byte(0xfe), raw[0])
	assert.Equal(byte(1), raw[15])
	assert.Equal([]byte{0, 53}, raw[16:])
	got6, err := ParseRawAddrV6(raw[:])
	assert.NoError(err)
	assert.Equal(a6, got6)

	_, err = ParseRawAddrV4(raw[:])
	assert.True(errors.Is(err, ErrMalformedInput))
	_, err = ParseRawAddrV6(a4.Raw())
	assert.True(errors.Is(err, ErrMalformedInput))
}

func TestAddrHash(t *testing.T) {
	assert := assert.New(t)

	a := MustParseAddrV4("192.168.1.2:80")
	assert.Equal(a.Hash(), MustParseAddrV4("0xc0a80102:80").Hash())
	assert.NotEqual(a.Hash(), MustParseAddrV4("192.168.1.2:81").Hash())
	assert.NotEqual(a.Hash(), MustParseAddrV4("192.168.1.3:80").Hash())

	b := MustParseAddrV6("[::1]:80")
	assert.Equal(b.Hash(), MustParseAddrV6("[0:0:0:0:0:0:0:1]:80").Hash())
	assert.NotEqual(b.Hash(), MustParseAddrV6("[::2]:80").Hash())

	seen := make(map[uint64]AddrV4)
	for port := uint16(1); port <= 1000; port++ {
		addr := AddrV4{a.IP, port}
		prev, dup := seen[addr.Hash()]
		assert.False(dup, "%v collides with %v", addr, prev)
		seen[addr.Hash()] = addr
	}
}

func TestAddrText(t *testing.T) {
	assert := assert.New(t)

	var a4 AddrV4
	assert.NoError(a4.UnmarshalText([]byte("127.0.0.1:9000")))
	text, _ := a4.MarshalText()
	assert.Equal("127.0.0.1:9000", string(text))

	var a6 AddrV6
	assert.NoError(a6.UnmarshalText([]byte("[::ffff:127.0.0.1]:9000")))
	text, _ = a6.MarshalText()
	assert.Equal("[::ffff:127.0.0.1]:9000", string(text))

	assert.Error(a6.UnmarshalText([]byte("::1:9000")))
	assert.Panics(func() { MustParseAddrV4("1.2.3.4") })
	assert.Panics(func() { MustParseAddrV6("[::1]") })
}
