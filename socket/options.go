package socket

import (
	"time"

	"github.com/digineo/ipsockets/ip"
)

// Family is the address type a socket works with.
type Family interface {
	ip.AddrV4 | ip.AddrV6
	String() string
	IsZero() bool
}

// Mode selects how Open uses its address.
type Mode int

const (
	// Server sockets bind to the address (and listen, for TCP).
	Server Mode = iota
	// Client sockets connect to the address.
	Client
)

func (m Mode) String() string {
	if m == Server {
		return "server"
	}
	return "client"
}

// Options configure a socket.
type Options struct {
	// Timeout bounds every receive and accept. Zero blocks forever.
	Timeout time.Duration

	LogLevel LogLevel
}

// DefaultOptions has a one second receive timeout and logs at LogInfo.
var DefaultOptions = Options{
	Timeout:  time.Second,
	LogLevel: LogInfo,
}

// deadline returns the read deadline for an operation starting now.
func (o Options) deadline() time.Time {
	if o.Timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(o.Timeout)
}

func isV4[A Family]() bool {
	var a A
	_, ok := any(a).(ip.AddrV4)
	return ok
}

// network returns "udp4", "tcp6" and so on.
func network[A Family](proto string) string {
	if isV4[A]() {
		return proto + "4"
	}
	return proto + "6"
}

// typeName returns "udp<ip4,server>" and so on.
func typeName[A Family](proto, role string) string {
	v := "ip6"
	if isV4[A]() {
		v = "ip4"
	}
	return proto + "<" + v + "," + role + ">"
}

func addrField[A Family](a A) string {
	if a.IsZero() {
		return "undefined"
	}
	return a.String()
}
