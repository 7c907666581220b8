// Package ip parses and formats IPv4 and IPv6 addresses and the compound
// "ip:port" / "[ip6]:port" socket address notation.
//
// Addresses are fixed-size byte arrays in network byte order. Parsing
// accepts the historical inet_aton shorthands for IPv4 ("127.1",
// "0xc0a80102", "3232235778") and the full RFC 4291 text grammar for IPv6,
// including "::" compression and an embedded dotted IPv4 suffix. A failed
// parse always returns the zero value together with an error wrapping
// ErrMalformedInput.
//
// All functions are pure and safe for concurrent use.
package ip
