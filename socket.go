package bio

import (
	"context"
	"net"

	"github.com/brickingsoft/bio/async"
	"github.com/brickingsoft/bio/pkg/sockets"
)

// Socket
// 客户端通道。把堵塞套接字的 connect、read、write 呈现为可调度的异步操作，
// 每个操作各有未来句柄与完成回调两种形态。
//
// 同一通道上的多个操作之间没有顺序保证，需要顺序 I/O 的调用方
// 须自行串行提交或等待完成后再发起下一个操作。
type Socket interface {
	// Connect
	// 异步连接远端，成功时结果为空。
	Connect(network string, address string) (future async.Future[async.Void])
	// ConnectWith
	// 异步连接远端，经由完成处理器通知。
	ConnectWith(network string, address string, attachment any, handler async.CompletionHandler[async.Void]) (err error)
	// Read
	// 异步读入 p，结果为读取的字节数。流结束经失败槽位给出 io.EOF。
	Read(p []byte) (future async.Future[int])
	ReadWith(p []byte, attachment any, handler async.CompletionHandler[int]) (err error)
	// Write
	// 异步写出 p，结果为写出的字节数。
	Write(p []byte) (future async.Future[int])
	WriteWith(p []byte, attachment any, handler async.CompletionHandler[int]) (err error)
	// Bind
	// 绑定本地地址，须在 Connect 之前。同步透传。
	Bind(network string, address string) (err error)
	ShutdownInput() (err error)
	ShutdownOutput() (err error)
	LocalAddr() (addr net.Addr)
	RemoteAddr() (addr net.Addr)
	IsOpen() (ok bool)
	// Close
	// 关闭套接字并强制关闭私有工作池：
	// 未开始的操作被丢弃，进行中的操作被尽力中断。
	Close() (err error)
}

// Open
// 构建一个未连接的异步套接字通道。
// 除非以 WithExecutors 替换，否则通道持有私有工作池。
func Open(options ...Option) (s Socket, err error) {
	opt := Options{}
	for _, option := range options {
		if err = option(&opt); err != nil {
			return
		}
	}
	s = newSocket(sockets.NewStream(opt.Sockets), &opt)
	return
}

func newSocket(inner *sockets.Stream, opt *Options) (s *socket) {
	executors := opt.Executors
	owned := false
	if executors == nil {
		executors = async.New(opt.AsPoolOptions()...)
		owned = true
	}
	s = &socket{
		inner:          inner,
		executors:      executors,
		ownedExecutors: owned,
	}
	return
}

type socket struct {
	inner          *sockets.Stream
	executors      async.Executors
	ownedExecutors bool
}

func (s *socket) connectOperation(network string, address string, attachment any, handler async.CompletionHandler[async.Void]) (op *async.Operation[async.Void], ctx context.Context, cancel context.CancelFunc) {
	ctx, cancel = context.WithCancel(context.Background())
	op = async.NewOperation[async.Void](attachment, handler, func(ctx context.Context) (result async.Void, err error) {
		defer cancel()
		err = s.inner.Connect(ctx, network, address)
		return
	})
	op.SetInterruptor(cancel)
	return
}

func (s *socket) Connect(network string, address string) (future async.Future[async.Void]) {
	if !s.inner.IsOpen() {
		future = async.FailedImmediately[async.Void](ErrClosed)
		return
	}
	op, ctx, cancel := s.connectOperation(network, address, nil, nil)
	if ok := s.executors.TryExecute(ctx, func() { op.Run(ctx) }); !ok {
		cancel()
		future = async.FailedImmediately[async.Void](ErrBusy)
		return
	}
	future = op.Future()
	return
}

func (s *socket) ConnectWith(network string, address string, attachment any, handler async.CompletionHandler[async.Void]) (err error) {
	if handler == nil {
		err = ErrEmptyHandler
		return
	}
	if !s.inner.IsOpen() {
		err = ErrClosed
		return
	}
	op, ctx, cancel := s.connectOperation(network, address, attachment, handler)
	if ok := s.executors.TryExecute(ctx, func() { op.Run(ctx) }); !ok {
		cancel()
		err = ErrBusy
		return
	}
	return
}

func (s *socket) readOperation(p []byte, attachment any, handler async.CompletionHandler[int]) (op *async.Operation[int]) {
	op = async.NewOperation[int](attachment, handler, func(_ context.Context) (n int, err error) {
		n, err = s.inner.Read(p)
		return
	})
	op.SetInterruptor(s.inner.Interrupt)
	return
}

func (s *socket) Read(p []byte) (future async.Future[int]) {
	if !s.inner.IsOpen() {
		future = async.FailedImmediately[int](ErrClosed)
		return
	}
	op := s.readOperation(p, nil, nil)
	ctx := context.Background()
	if ok := s.executors.TryExecute(ctx, func() { op.Run(ctx) }); !ok {
		future = async.FailedImmediately[int](ErrBusy)
		return
	}
	future = op.Future()
	return
}

func (s *socket) ReadWith(p []byte, attachment any, handler async.CompletionHandler[int]) (err error) {
	if handler == nil {
		err = ErrEmptyHandler
		return
	}
	if !s.inner.IsOpen() {
		err = ErrClosed
		return
	}
	op := s.readOperation(p, attachment, handler)
	ctx := context.Background()
	if ok := s.executors.TryExecute(ctx, func() { op.Run(ctx) }); !ok {
		err = ErrBusy
		return
	}
	return
}

func (s *socket) writeOperation(p []byte, attachment any, handler async.CompletionHandler[int]) (op *async.Operation[int]) {
	op = async.NewOperation[int](attachment, handler, func(_ context.Context) (n int, err error) {
		n, err = s.inner.Write(p)
		return
	})
	op.SetInterruptor(s.inner.Interrupt)
	return
}

func (s *socket) Write(p []byte) (future async.Future[int]) {
	if !s.inner.IsOpen() {
		future = async.FailedImmediately[int](ErrClosed)
		return
	}
	op := s.writeOperation(p, nil, nil)
	ctx := context.Background()
	if ok := s.executors.TryExecute(ctx, func() { op.Run(ctx) }); !ok {
		future = async.FailedImmediately[int](ErrBusy)
		return
	}
	future = op.Future()
	return
}

func (s *socket) WriteWith(p []byte, attachment any, handler async.CompletionHandler[int]) (err error) {
	if handler == nil {
		err = ErrEmptyHandler
		return
	}
	if !s.inner.IsOpen() {
		err = ErrClosed
		return
	}
	op := s.writeOperation(p, attachment, handler)
	ctx := context.Background()
	if ok := s.executors.TryExecute(ctx, func() { op.Run(ctx) }); !ok {
		err = ErrBusy
		return
	}
	return
}

func (s *socket) Bind(network string, address string) (err error) {
	err = s.inner.Bind(network, address)
	return
}

func (s *socket) ShutdownInput() (err error) {
	err = s.inner.CloseRead()
	return
}

func (s *socket) ShutdownOutput() (err error) {
	err = s.inner.CloseWrite()
	return
}

func (s *socket) LocalAddr() (addr net.Addr) {
	addr = s.inner.LocalAddr()
	return
}

func (s *socket) RemoteAddr() (addr net.Addr) {
	addr = s.inner.RemoteAddr()
	return
}

func (s *socket) IsOpen() (ok bool) {
	ok = s.inner.IsOpen()
	return
}

func (s *socket) Close() (err error) {
	// 先关池再动套接字：中断一旦唤醒在途操作，空出的工作协程
	// 会立刻接手积压任务，必须先把队列丢弃掉。
	if s.ownedExecutors {
		_ = s.executors.Close()
	}
	s.inner.Interrupt()
	err = s.inner.Close()
	return
}
