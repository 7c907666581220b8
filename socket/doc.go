// Package socket wraps UDP and TCP sockets around the address types of
// package ip.
//
// Sockets are generic over the address family (ip.AddrV4 or ip.AddrV6) and
// are opened either in Server mode (bind, and listen for TCP) or in Client
// mode (connect). Reads honour a per-socket receive timeout. Failures are
// reported as *OpError values that match one of the Err* sentinels with
// errors.Is, and every operation is logged according to the socket's
// LogLevel.
package socket
