// Package sockets 封装堵塞套接字原语。
// 所有操作均为同步堵塞调用，异步化由上层工作池完成。
package sockets

import (
	"time"

	"github.com/brickingsoft/errors"
)

var (
	ErrClosed       = errors.New("sockets: socket was closed")
	ErrNotConnected = errors.New("sockets: socket is not connected")
	ErrConnected    = errors.New("sockets: socket is already connected")
)

type Options struct {
	KeepAlive    time.Duration
	NoDelay      bool
	ReuseAddr    bool
	MultipathTCP bool
}
