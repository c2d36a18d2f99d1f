package async

import (
	"context"
)

// Void
// 无结果操作的结果类型。
type Void struct{}

// SucceedImmediately
// 构建一个立即成功的未来。
func SucceedImmediately[R any](result R) (future Future[R]) {
	future = &immediateFuture[R]{
		result: result,
		cause:  nil,
	}
	return
}

// FailedImmediately
// 构建一个立即失败的未来。不会有任何工作被调度。
func FailedImmediately[R any](cause error) (future Future[R]) {
	future = &immediateFuture[R]{
		result: *(new(R)),
		cause:  cause,
	}
	return
}

type immediateFuture[R any] struct {
	result R
	cause  error
}

func (future *immediateFuture[R]) IsDone() (ok bool) {
	ok = future.cause == nil
	return
}

func (future *immediateFuture[R]) IsCancelled() (ok bool) {
	return
}

func (future *immediateFuture[R]) Cancel(_ bool) (ok bool) {
	return
}

func (future *immediateFuture[R]) Get(_ context.Context) (result R, err error) {
	result, err = future.result, future.cause
	return
}
