package bio

import (
	"context"
	"net"
	"sync/atomic"

	"github.com/brickingsoft/bio/async"
	"github.com/brickingsoft/bio/pkg/sockets"
)

// ServerSocket
// 监听通道。accept 作为异步操作执行，产出一个独立持有的新 Socket。
//
// 状态机：Created → Bound → Accepting（可重复），Close 自任何状态可达且为终态。
type ServerSocket interface {
	// Bind
	// 绑定监听地址，须在 Accept 之前。
	Bind(network string, address string) (err error)
	// Accept
	// 异步接受一个入站连接。未绑定时立即失败，不调度任何工作。
	Accept() (future async.Future[Socket])
	// AcceptWith
	// 异步接受一个入站连接，经由完成处理器交付新的 Socket。
	// 未绑定时同步返回 ErrNotBound，不调度任何工作。
	AcceptWith(attachment any, handler async.CompletionHandler[Socket]) (err error)
	Addr() (addr net.Addr)
	IsOpen() (ok bool)
	// Close
	// 关闭监听套接字并强制关闭私有工作池。
	Close() (err error)
}

// OpenServer
// 构建一个未绑定的异步监听通道。
// 接受产出的每个 Socket 沿用相同的选项，各自持有独立的工作池。
func OpenServer(options ...Option) (ln ServerSocket, err error) {
	opt := Options{}
	for _, option := range options {
		if err = option(&opt); err != nil {
			return
		}
	}
	executors := opt.Executors
	owned := false
	if executors == nil {
		executors = async.New(opt.AsPoolOptions()...)
		owned = true
	}
	ln = &serverSocket{
		inner:          sockets.NewListenSocket(opt.Sockets),
		executors:      executors,
		ownedExecutors: owned,
		childOptions:   opt,
	}
	return
}

type serverSocket struct {
	inner          *sockets.ListenSocket
	executors      async.Executors
	ownedExecutors bool
	childOptions   Options
	bound          atomic.Bool
}

func (ln *serverSocket) Bind(network string, address string) (err error) {
	if err = ln.inner.Listen(network, address); err != nil {
		return
	}
	ln.bound.Store(true)
	return
}

func (ln *serverSocket) acceptOperation(attachment any, handler async.CompletionHandler[Socket]) (op *async.Operation[Socket]) {
	op = async.NewOperation[Socket](attachment, handler, func(_ context.Context) (accepted Socket, err error) {
		conn, acceptErr := ln.inner.Accept()
		if acceptErr != nil {
			err = acceptErr
			return
		}
		childOptions := ln.childOptions
		accepted = newSocket(sockets.Wrap(conn, childOptions.Sockets), &childOptions)
		return
	})
	op.SetInterruptor(ln.inner.Interrupt)
	return
}

func (ln *serverSocket) Accept() (future async.Future[Socket]) {
	if !ln.bound.Load() {
		future = async.FailedImmediately[Socket](ErrNotBound)
		return
	}
	if !ln.inner.IsOpen() {
		future = async.FailedImmediately[Socket](ErrClosed)
		return
	}
	op := ln.acceptOperation(nil, nil)
	ctx := context.Background()
	if ok := ln.executors.TryExecute(ctx, func() { op.Run(ctx) }); !ok {
		future = async.FailedImmediately[Socket](ErrBusy)
		return
	}
	future = op.Future()
	return
}

func (ln *serverSocket) AcceptWith(attachment any, handler async.CompletionHandler[Socket]) (err error) {
	if handler == nil {
		err = ErrEmptyHandler
		return
	}
	if !ln.bound.Load() {
		err = ErrNotBound
		return
	}
	if !ln.inner.IsOpen() {
		err = ErrClosed
		return
	}
	op := ln.acceptOperation(attachment, handler)
	ctx := context.Background()
	if ok := ln.executors.TryExecute(ctx, func() { op.Run(ctx) }); !ok {
		err = ErrBusy
		return
	}
	return
}

func (ln *serverSocket) Addr() (addr net.Addr) {
	addr = ln.inner.Addr()
	return
}

func (ln *serverSocket) IsOpen() (ok bool) {
	ok = ln.inner.IsOpen()
	return
}

func (ln *serverSocket) Close() (err error) {
	// 先关池再动套接字，确保积压的接受操作不会被空出的工作协程接手。
	if ln.ownedExecutors {
		_ = ln.executors.Close()
	}
	ln.inner.Interrupt()
	err = ln.inner.Close()
	return
}
