package bio

import (
	"errors"
	"io"
	"net"

	"github.com/brickingsoft/bio/async"
	"github.com/brickingsoft/bio/pkg/sockets"
)

var (
	ErrClosed       = errors.New("bio: closed")
	ErrBusy         = errors.New("bio: system busy")
	ErrNotBound     = errors.New("bio: server socket is not bound to an address")
	ErrEmptyHandler = errors.New("bio: completion handler is required")
)

// IsClosed
// 判断错误是否为通道或套接字已关闭。
func IsClosed(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		err = opErr.Err
	}
	return errors.Is(err, ErrClosed) ||
		errors.Is(err, sockets.ErrClosed) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, async.ErrExecutorsWereClosed)
}

// IsBusy
// 判断错误是否为工作池饱和拒绝。
func IsBusy(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		err = opErr.Err
	}
	return errors.Is(err, ErrBusy)
}

// IsNotBound
// 判断错误是否为未绑定先行接受。
func IsNotBound(err error) bool {
	return errors.Is(err, ErrNotBound)
}

// IsEOF
// 判断错误是否为流结束。
func IsEOF(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		err = opErr.Err
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

// IsCancelled
// 判断错误是否为操作取消。
func IsCancelled(err error) bool {
	return async.IsCancelled(err)
}
