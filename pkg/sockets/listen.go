package sockets

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/brickingsoft/errors"
)

// NewListenSocket
// 构建一个未绑定的堵塞监听套接字。
func NewListenSocket(options Options) (ls *ListenSocket) {
	ls = &ListenSocket{
		options: options,
	}
	return
}

type ListenSocket struct {
	locker  sync.Mutex
	options Options
	inner   net.Listener
	closed  bool
}

// Listen
// 绑定地址并开始监听。
func (ls *ListenSocket) Listen(network string, address string) (err error) {
	switch network {
	case "tcp", "tcp4", "tcp6", "unix":
		break
	default:
		err = &net.OpError{Op: "listen", Net: network, Err: &net.AddrError{Err: "network is not supported", Addr: address}}
		return
	}
	ls.locker.Lock()
	if ls.closed {
		ls.locker.Unlock()
		err = &net.OpError{Op: "listen", Net: network, Err: ErrClosed}
		return
	}
	if ls.inner != nil {
		ls.locker.Unlock()
		err = &net.OpError{Op: "listen", Net: network, Err: errors.New("sockets: socket is already listening")}
		return
	}
	ls.locker.Unlock()

	lc := net.ListenConfig{
		Control:   control(ls.options),
		KeepAlive: ls.options.KeepAlive,
	}
	if ls.options.MultipathTCP {
		lc.SetMultipathTCP(true)
	}
	inner, lnErr := lc.Listen(context.Background(), network, address)
	if lnErr != nil {
		err = errors.New("sockets: listen failed", errors.WithWrap(lnErr))
		return
	}

	ls.locker.Lock()
	if ls.closed {
		ls.locker.Unlock()
		_ = inner.Close()
		err = &net.OpError{Op: "listen", Net: network, Err: ErrClosed}
		return
	}
	ls.inner = inner
	ls.locker.Unlock()
	return
}

func (ls *ListenSocket) listener() (inner net.Listener, err error) {
	ls.locker.Lock()
	if ls.closed {
		ls.locker.Unlock()
		err = ErrClosed
		return
	}
	if ls.inner == nil {
		ls.locker.Unlock()
		err = errors.New("sockets: socket is not listening")
		return
	}
	inner = ls.inner
	ls.locker.Unlock()
	return
}

// Accept
// 堵塞接受一个入站连接。
func (ls *ListenSocket) Accept() (conn net.Conn, err error) {
	inner, lnErr := ls.listener()
	if lnErr != nil {
		err = lnErr
		return
	}
	conn, err = inner.Accept()
	return
}

func (ls *ListenSocket) Addr() (addr net.Addr) {
	ls.locker.Lock()
	if ls.inner != nil {
		addr = ls.inner.Addr()
	}
	ls.locker.Unlock()
	return
}

func (ls *ListenSocket) IsOpen() (ok bool) {
	ls.locker.Lock()
	ok = !ls.closed
	ls.locker.Unlock()
	return
}

// Interrupt
// 尽力中断进行中的 Accept，不保证其退出。
func (ls *ListenSocket) Interrupt() {
	ls.locker.Lock()
	inner := ls.inner
	ls.locker.Unlock()
	if inner == nil {
		return
	}
	switch l := inner.(type) {
	case *net.TCPListener:
		_ = l.SetDeadline(time.Now())
		break
	case *net.UnixListener:
		_ = l.SetDeadline(time.Now())
		break
	default:
		break
	}
}

func (ls *ListenSocket) Close() (err error) {
	ls.locker.Lock()
	if ls.closed {
		ls.locker.Unlock()
		return
	}
	ls.closed = true
	inner := ls.inner
	ls.locker.Unlock()
	if inner != nil {
		err = inner.Close()
	}
	return
}
