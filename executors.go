package bio

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/brickingsoft/bio/async"
	"github.com/brickingsoft/rxp"
)

var (
	sharedExecutors     async.Executors = nil
	sharedExecutorsOnce sync.Once
)

// Startup
// 启动共享执行器。
//
// 默认策略为每通道一个私有工作池。当以 WithExecutors(bio.Executors())
// 令多个通道共用一个调度器时，可用 Startup 进行定制。
// 注意：必须在程序起始位置调用，否则无效。
func Startup(options ...rxp.Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case error:
				err = e
				break
			case string:
				err = errors.New(e)
				break
			default:
				err = errors.New(fmt.Sprintf("%+v", r))
				break
			}
		}
	}()
	inner, newErr := rxp.New(options...)
	if newErr != nil {
		err = newErr
		return
	}
	sharedExecutors = &rxpExecutors{inner: inner}
	return
}

// Shutdown
// 关闭共享执行器。非优雅的，不会等待进行中的操作。
func Shutdown() error {
	runtime.SetFinalizer(sharedExecutors, nil)
	return Executors().Close()
}

// ShutdownGracefully
// 优雅地关闭共享执行器，等待进行中的操作执行完毕。
func ShutdownGracefully() error {
	runtime.SetFinalizer(sharedExecutors, nil)
	return Executors().CloseGracefully()
}

// Executors
// 获取共享执行器。
func Executors() async.Executors {
	sharedExecutorsOnce.Do(func() {
		if sharedExecutors == nil {
			inner, newErr := rxp.New()
			if newErr != nil {
				panic(newErr)
			}
			exec := &rxpExecutors{inner: inner}
			runtime.SetFinalizer(exec, (*rxpExecutors).CloseGracefully)
			sharedExecutors = exec
		}
	})
	return sharedExecutors
}

// taskFunc
// 把普通闭包适配成 rxp.Task。
type taskFunc func()

func (task taskFunc) Handle(_ context.Context) {
	task()
}

// rxpExecutors
// 把 rxp.Executors 适配成 async.Executors。
// rxp 的 Close 本身即优雅关闭，超时经由 rxp.WithCloseTimeout 设置。
type rxpExecutors struct {
	inner rxp.Executors
}

func (exec *rxpExecutors) TryExecute(ctx context.Context, task func()) (ok bool) {
	if task == nil {
		return false
	}
	ok = exec.inner.TryExecute(ctx, taskFunc(task))
	return
}

func (exec *rxpExecutors) Execute(ctx context.Context, task func()) (err error) {
	if task == nil {
		return
	}
	err = exec.inner.Execute(ctx, taskFunc(task))
	return
}

func (exec *rxpExecutors) Close() (err error) {
	err = exec.inner.Close()
	return
}

func (exec *rxpExecutors) CloseGracefully() (err error) {
	err = exec.inner.Close()
	return
}
