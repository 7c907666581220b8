package ip_test

import (
	"fmt"

	"github.com/digineo/ipsockets/ip"
)

func ExampleParseIPv4() {
	for _, s := range []string{"192.168.1.2", "127.1", "192.168.2", "0xc0a80102", "3232235778"} {
		addr, err := ip.ParseIPv4(s)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Println(addr)
	}
	// Output:
	// 192.168.1.2
	// 127.0.0.1
	// 192.168.0.2
	// 192.168.1.2
	// 192.168.1.2
}

func ExampleIPv6_Format() {
	addr := ip.MustParseIPv6("::ffff:192.168.2.1")
	fmt.Println(addr.Format(false, false))
	fmt.Println(addr.Format(false, true))
	fmt.Println(addr.Format(true, false))
	// Output:
	// 0:0:0:0:0:ffff:c0a8:201
	// 0:0:0:0:0:ffff:192.168.2.1
	// ::ffff:192.168.2.1
}

func ExampleParseAddrV6() {
	addr, err := ip.ParseAddrV6("[2001:DB8:0:0:0:0:0:1]:8080")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(addr.IP, addr.Port)
	fmt.Println(addr)

	_, err = ip.ParseAddrV6("2001:db8::1:8080")
	fmt.Println(err)
	// Output:
	// 2001:db8::1 8080
	// [2001:db8::1]:8080
	// ipv6 address "2001:db8::1:8080": missing '[': malformed input
}

func ExampleIPv4Mask() {
	fmt.Println(ip.IPv4Mask(20))
	fmt.Println(ip.MustParseIPv4("10.1.77.3").Masked(20))
	fmt.Println(ip.IPv6Mask(56))
	// Output:
	// 255.255.240.0
	// 10.1.64.0
	// ffff:ffff:ffff:ff00::
}
