//go:build windows

package sockets

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func control(options Options) func(network string, address string, raw syscall.RawConn) error {
	if !options.ReuseAddr {
		return nil
	}
	return func(network string, address string, raw syscall.RawConn) (err error) {
		ctrlErr := raw.Control(func(fd uintptr) {
			err = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
		})
		if ctrlErr != nil {
			err = ctrlErr
		}
		return
	}
}
