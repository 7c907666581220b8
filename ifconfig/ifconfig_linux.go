package ifconfig

import (
	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

// Interfaces returns the names of all network interfaces.
func Interfaces() ([]string, error) {
	links, err := netlink.LinkList()
	if err != nil && !errors.Is(err, netlink.ErrDumpInterrupted) {
		return nil, errors.Wrap(err, "listing links")
	}
	names := make([]string, 0, len(links))
	for _, link := range links {
		names = append(names, link.Attrs().Name)
	}
	return names, nil
}

// MTU returns the MTU of the named interface.
func MTU(ifname string) (int, error) {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return 0, errors.Wrapf(err, "link %s", ifname)
	}
	return link.Attrs().MTU, nil
}

// Addresses returns the IPv4 and IPv6 addresses of the named interface.
func Addresses(ifname string) ([]Address, error) {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return nil, errors.Wrapf(err, "link %s", ifname)
	}

	// an interrupted dump still returns usable results
	list, err := netlink.AddrList(link, netlink.FAMILY_ALL)
	if err != nil && !errors.Is(err, netlink.ErrDumpInterrupted) {
		return nil, errors.Wrapf(err, "addresses of %s", ifname)
	}

	addrs := make([]Address, 0, len(list))
	for _, a := range list {
		if addr, ok := fromIPNet(a.IPNet); ok {
			addrs = append(addrs, addr)
		}
	}
	return addrs, nil
}
