package ip

// masks[n] is a byte with its n leading bits set.
var masks = [9]byte{0x00, 0x80, 0xc0, 0xe0, 0xf0, 0xf8, 0xfc, 0xfe, 0xff}

// IPv4Mask returns the netmask with the leading prefix bits set.
// Values outside 0..32 are clamped.
func IPv4Mask(prefix int) (mask IPv4) {
	fillMask(mask[:], prefix)
	return
}

// IPv6Mask returns the netmask with the leading prefix bits set.
// Values outside 0..128 are clamped.
func IPv6Mask(prefix int) (mask IPv6) {
	fillMask(mask[:], prefix)
	return
}

func fillMask(b []byte, prefix int) {
	for i := range b {
		switch {
		case prefix >= 8:
			b[i] = masks[8]
			prefix -= 8
		case prefix > 0:
			b[i] = masks[prefix]
			prefix = 0
		default:
			b[i] = 0
		}
	}
}

func andBytes(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] & b[i]
	}
}
