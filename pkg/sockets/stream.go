package sockets

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/brickingsoft/errors"
)

// NewStream
// 构建一个未连接的堵塞流式套接字。
func NewStream(options Options) (s *Stream) {
	s = &Stream{
		options: options,
	}
	return
}

// Wrap
// 收编一个已建立的连接，一般来自监听套接字的 Accept。
func Wrap(conn net.Conn, options Options) (s *Stream) {
	s = &Stream{
		options: options,
		conn:    conn,
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(options.NoDelay)
		if options.KeepAlive > 0 {
			_ = tcp.SetKeepAlive(true)
			_ = tcp.SetKeepAlivePeriod(options.KeepAlive)
		}
	}
	return
}

// Stream
// 一个堵塞流式套接字。连接句柄由 Connect 的工作协程写入，
// 其余调用方经同一互斥锁读取。
type Stream struct {
	locker  sync.Mutex
	options Options
	local   net.Addr
	conn    net.Conn
	closed  bool
}

// Bind
// 绑定本地地址，须在 Connect 之前。
func (s *Stream) Bind(network string, address string) (err error) {
	addr, resolveErr := ResolveAddr(network, address)
	if resolveErr != nil {
		err = &net.OpError{Op: "bind", Net: network, Err: resolveErr}
		return
	}
	s.locker.Lock()
	if s.conn != nil {
		s.locker.Unlock()
		err = &net.OpError{Op: "bind", Net: network, Addr: addr, Err: ErrConnected}
		return
	}
	s.local = addr
	s.locker.Unlock()
	return
}

// Connect
// 堵塞连接远端。ctx 结束会中止拨号。
func (s *Stream) Connect(ctx context.Context, network string, address string) (err error) {
	switch network {
	case "tcp", "tcp4", "tcp6", "unix":
		break
	default:
		err = &net.OpError{Op: "dial", Net: network, Err: &net.AddrError{Err: "network is not supported", Addr: address}}
		return
	}
	s.locker.Lock()
	if s.closed {
		s.locker.Unlock()
		err = &net.OpError{Op: "dial", Net: network, Err: ErrClosed}
		return
	}
	if s.conn != nil {
		s.locker.Unlock()
		err = &net.OpError{Op: "dial", Net: network, Err: ErrConnected}
		return
	}
	local := s.local
	s.locker.Unlock()

	dialer := net.Dialer{
		KeepAlive: s.options.KeepAlive,
		LocalAddr: local,
		Control:   control(s.options),
	}
	if s.options.MultipathTCP {
		dialer.SetMultipathTCP(true)
	}
	conn, dialErr := dialer.DialContext(ctx, network, address)
	if dialErr != nil {
		err = errors.New("sockets: connect failed", errors.WithWrap(dialErr))
		return
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(s.options.NoDelay)
	}

	s.locker.Lock()
	if s.closed {
		s.locker.Unlock()
		_ = conn.Close()
		err = &net.OpError{Op: "dial", Net: network, Err: ErrClosed}
		return
	}
	s.conn = conn
	s.locker.Unlock()
	return
}

func (s *Stream) connection() (conn net.Conn, err error) {
	s.locker.Lock()
	if s.closed {
		s.locker.Unlock()
		err = ErrClosed
		return
	}
	if s.conn == nil {
		s.locker.Unlock()
		err = ErrNotConnected
		return
	}
	conn = s.conn
	s.locker.Unlock()
	return
}

// Read
// 堵塞读。流结束时返回 io.EOF。
func (s *Stream) Read(p []byte) (n int, err error) {
	conn, connErr := s.connection()
	if connErr != nil {
		err = connErr
		return
	}
	n, err = conn.Read(p)
	return
}

// Write
// 堵塞写。
func (s *Stream) Write(p []byte) (n int, err error) {
	conn, connErr := s.connection()
	if connErr != nil {
		err = connErr
		return
	}
	n, err = conn.Write(p)
	return
}

func (s *Stream) CloseRead() (err error) {
	conn, connErr := s.connection()
	if connErr != nil {
		err = connErr
		return
	}
	switch c := conn.(type) {
	case *net.TCPConn:
		err = c.CloseRead()
		break
	case *net.UnixConn:
		err = c.CloseRead()
		break
	default:
		err = errors.New("sockets: close read is not supported")
		break
	}
	return
}

func (s *Stream) CloseWrite() (err error) {
	conn, connErr := s.connection()
	if connErr != nil {
		err = connErr
		return
	}
	switch c := conn.(type) {
	case *net.TCPConn:
		err = c.CloseWrite()
		break
	case *net.UnixConn:
		err = c.CloseWrite()
		break
	default:
		err = errors.New("sockets: close write is not supported")
		break
	}
	return
}

func (s *Stream) LocalAddr() (addr net.Addr) {
	s.locker.Lock()
	if s.conn != nil {
		addr = s.conn.LocalAddr()
	} else {
		addr = s.local
	}
	s.locker.Unlock()
	return
}

func (s *Stream) RemoteAddr() (addr net.Addr) {
	s.locker.Lock()
	if s.conn != nil {
		addr = s.conn.RemoteAddr()
	}
	s.locker.Unlock()
	return
}

func (s *Stream) IsOpen() (ok bool) {
	s.locker.Lock()
	ok = !s.closed
	s.locker.Unlock()
	return
}

// Interrupt
// 尽力中断进行中的堵塞调用，不保证其退出。
func (s *Stream) Interrupt() {
	s.locker.Lock()
	conn := s.conn
	s.locker.Unlock()
	if conn != nil {
		_ = conn.SetDeadline(time.Now())
	}
}

func (s *Stream) Close() (err error) {
	s.locker.Lock()
	if s.closed {
		s.locker.Unlock()
		return
	}
	s.closed = true
	conn := s.conn
	s.locker.Unlock()
	if conn != nil {
		err = conn.Close()
	}
	return
}
