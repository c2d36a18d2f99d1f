//go:build unix

package sockets

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func control(options Options) func(network string, address string, raw syscall.RawConn) error {
	if !options.ReuseAddr {
		return nil
	}
	return func(network string, address string, raw syscall.RawConn) (err error) {
		ctrlErr := raw.Control(func(fd uintptr) {
			err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		})
		if ctrlErr != nil {
			err = ctrlErr
		}
		return
	}
}
