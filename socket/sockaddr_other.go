//go:build !unix

package socket

import (
	"net"
	"syscall"

	"github.com/pkg/errors"
)

func localAddr[A Family](c syscall.Conn) (A, error) {
	switch c := c.(type) {
	case interface{ LocalAddr() net.Addr }:
		return AddrOf[A](c.LocalAddr())
	case interface{ Addr() net.Addr }:
		return AddrOf[A](c.Addr())
	}
	var zero A
	return zero, errors.Wrapf(ErrInvalidAddress, "no local address for %T", c)
}

func reuseAddr(_, _ string, _ syscall.RawConn) error {
	return nil
}
