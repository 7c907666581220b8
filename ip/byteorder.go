package ip

import (
	"math/bits"

	"golang.org/x/sys/cpu"
)

// Uint is the set of integers the byte order helpers operate on.
type Uint interface {
	uint16 | uint32 | uint64
}

// ToNetwork converts v from host to network (big-endian) byte order.
func ToNetwork[T Uint](v T) T {
	if cpu.IsBigEndian {
		return v
	}
	return swap(v)
}

// ToHost converts v from network (big-endian) to host byte order.
func ToHost[T Uint](v T) T {
	// the conversion is its own inverse
	return ToNetwork(v)
}

func swap[T Uint](v T) T {
	switch x := any(v).(type) {
	case uint16:
		return any(bits.ReverseBytes16(x)).(T)
	case uint32:
		return any(bits.ReverseBytes32(x)).(T)
	case uint64:
		return any(bits.ReverseBytes64(x)).(T)
	}
	return v
}
