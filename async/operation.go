package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrCancelled = errors.New("async: operation was cancelled")
)

// IsCancelled
// 判断错误是否为取消。
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// IsTimeout
// 判断错误是否为超时。
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// Computation
// 堵塞计算。由工作协程执行，时长即堵塞调用本身的时长。
type Computation[R any] func(ctx context.Context) (result R, err error)

// Future
// 操作的观察侧句柄。
//
// IsDone 仅在 Completed 时为真，Failed 不算（沿用原有窄语义）。
// Get 堵塞等待操作进入终态，超时与取消经由 ctx 控制。
type Future[R any] interface {
	IsDone() (ok bool)
	IsCancelled() (ok bool)
	Cancel(interrupt bool) (ok bool)
	Get(ctx context.Context) (result R, err error)
}

// NewOperation
// 构建一个可调度的堵塞操作。
//
// attachment 为调用者自备的透传值，handler 可以为空。
// 操作为一次性的，进入终态后不可复用。
func NewOperation[R any](attachment any, handler CompletionHandler[R], computation Computation[R]) *Operation[R] {
	return &Operation[R]{
		locker:      sync.Mutex{},
		status:      Pending,
		attachment:  attachment,
		handler:     handler,
		computation: computation,
		done:        make(chan struct{}),
	}
}

// Operation
// 一个可调度的堵塞操作单元：堵塞计算、结果句柄与完成回调的组合。
//
// 执行角色（Run）与观察角色（Future）共享同一状态，
// 经由互斥锁与一次性完成信号衔接。
type Operation[R any] struct {
	locker      sync.Mutex
	status      Status
	result      R
	cause       error
	attachment  any
	handler     CompletionHandler[R]
	computation Computation[R]
	interruptor func()
	started     bool
	done        chan struct{}
}

// SetInterruptor
// 设置中断器。取消运行中的操作时被调用，尽力型，须在提交前设置。
func (op *Operation[R]) SetInterruptor(interruptor func()) {
	op.interruptor = interruptor
}

// Future
// 获取观察侧句柄。
func (op *Operation[R]) Future() (future Future[R]) {
	future = op
	return
}

// Run
// 工作协程的入口。已取消的操作不会执行计算。
// 任何 panic 不会逃逸出 Run。
func (op *Operation[R]) Run(ctx context.Context) {
	defer func() {
		_ = recover()
	}()

	op.locker.Lock()
	if op.status != Pending {
		op.locker.Unlock()
		return
	}
	op.started = true
	op.locker.Unlock()

	result, err := op.execute(ctx)

	op.locker.Lock()
	if op.status != Pending {
		// 执行期间被取消，结果弃用。
		cancelled := op.status == Cancelled
		op.locker.Unlock()
		if cancelled && op.handler != nil {
			op.handler.Failed(ErrCancelled, op.attachment)
		}
		return
	}
	if err != nil {
		op.status = Failed
		op.cause = err
	} else {
		op.status = Completed
		op.result = result
	}
	close(op.done)
	op.locker.Unlock()

	if op.handler != nil {
		if err != nil {
			op.handler.Failed(err, op.attachment)
		} else {
			op.handler.Completed(result, op.attachment)
		}
	}
}

func (op *Operation[R]) execute(ctx context.Context) (result R, err error) {
	defer func() {
		if cause := recover(); cause != nil {
			err = fmt.Errorf("async: computation panicked, %v", cause)
		}
	}()
	result, err = op.computation(ctx)
	return
}

// Cancel
// 取消操作。
//
// interrupt 为假时不做任何事，仅报告当前是否已取消。
// interrupt 为真时：未开始的操作不会再执行；运行中的操作调用中断器，
// 尽力而为，堵塞调用不保证退出。返回取消是否生效。
func (op *Operation[R]) Cancel(interrupt bool) (ok bool) {
	if !interrupt {
		op.locker.Lock()
		ok = op.status == Cancelled
		op.locker.Unlock()
		return
	}
	op.locker.Lock()
	if op.status != Pending {
		ok = op.status == Cancelled
		op.locker.Unlock()
		return
	}
	op.status = Cancelled
	op.cause = ErrCancelled
	started := op.started
	close(op.done)
	op.locker.Unlock()
	if started && op.interruptor != nil {
		op.interruptor()
	}
	ok = true
	return
}

// IsCancelled
// 仅在状态为 Cancelled 时为真。
func (op *Operation[R]) IsCancelled() (ok bool) {
	op.locker.Lock()
	ok = op.status == Cancelled
	op.locker.Unlock()
	return
}

// IsDone
// 仅在状态为 Completed 时为真。注意 Failed 不算完成，这是刻意保留的窄语义。
func (op *Operation[R]) IsDone() (ok bool) {
	op.locker.Lock()
	ok = op.status == Completed
	op.locker.Unlock()
	return
}

// Get
// 堵塞等待操作进入终态并取回结果。
// ctx 只约束等待本身，不约束底层堵塞调用的时长。
func (op *Operation[R]) Get(ctx context.Context) (result R, err error) {
	select {
	case <-op.done:
	case <-ctx.Done():
		err = ctx.Err()
		return
	}
	op.locker.Lock()
	result = op.result
	err = op.cause
	op.locker.Unlock()
	return
}
