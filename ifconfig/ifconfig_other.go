//go:build !linux

package ifconfig

import (
	"net"

	"github.com/pkg/errors"
)

// Interfaces returns the names of all network interfaces.
func Interfaces() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "listing interfaces")
	}
	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		names = append(names, iface.Name)
	}
	return names, nil
}

// MTU returns the MTU of the named interface.
func MTU(ifname string) (int, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return 0, errors.Wrapf(err, "link %s", ifname)
	}
	return iface.MTU, nil
}

// Addresses returns the IPv4 and IPv6 addresses of the named interface.
func Addresses(ifname string) ([]Address, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, errors.Wrapf(err, "link %s", ifname)
	}
	list, err := iface.Addrs()
	if err != nil {
		return nil, errors.Wrapf(err, "addresses of %s", ifname)
	}

	addrs := make([]Address, 0, len(list))
	for _, a := range list {
		if n, ok := a.(*net.IPNet); ok {
			if addr, ok := fromIPNet(n); ok {
				addrs = append(addrs, addr)
			}
		}
	}
	return addrs, nil
}
