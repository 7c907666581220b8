package socket

import (
	"context"
	"net"
	"net/netip"

	"github.com/sirupsen/logrus"

	"github.com/digineo/ipsockets/ip"
)

// ResolveIPv4 returns the first IPv4 address host resolves to.
func ResolveIPv4(ctx context.Context, host string) (ip.IPv4, error) {
	addr, err := resolve(ctx, "ip4", host)
	if err != nil {
		return ip.IPv4{}, err
	}
	return addr.Unmap().As4(), nil
}

// ResolveIPv6 returns the first IPv6 address host resolves to.
func ResolveIPv6(ctx context.Context, host string) (ip.IPv6, error) {
	addr, err := resolve(ctx, "ip6", host)
	if err != nil {
		return ip.IPv6{}, err
	}
	return addr.As16(), nil
}

func resolve(ctx context.Context, family, host string) (netip.Addr, error) {
	name := "resolver<" + family + ">"
	log := logger.WithFields(logrus.Fields{"socket": name, "op": "resolve", "host": host})

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, family, host)
	if err != nil || len(addrs) == 0 {
		oe := &OpError{Socket: name, Op: "resolve", Kind: ErrInvalidAddress, Err: err}
		log.WithError(oe).Error("resolution failed")
		return netip.Addr{}, oe
	}

	log.WithField("address", addrs[0]).Debug("resolved")
	return addrs[0], nil
}
