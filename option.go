package bio

import (
	"errors"
	"time"

	"github.com/brickingsoft/bio/async"
	"github.com/brickingsoft/bio/pkg/sockets"
)

type Options struct {
	Executors async.Executors
	Pool      async.Options
	Sockets   sockets.Options
}

func (options *Options) AsPoolOptions() []async.Option {
	opts := make([]async.Option, 0, 1)
	if n := options.Pool.MinWorkers; n > 0 {
		opts = append(opts, async.MinWorkers(n))
	}
	if n := options.Pool.MaxWorkers; n > 0 {
		opts = append(opts, async.MaxWorkers(n))
	}
	if n := options.Pool.MaxPending; n > 0 {
		opts = append(opts, async.MaxPending(n))
	}
	if d := options.Pool.MaxIdleDuration; d > 0 {
		opts = append(opts, async.MaxIdleDuration(d))
	}
	return opts
}

type Option func(options *Options) (err error)

// WithExecutors
// 以外部调度器替换通道私有工作池。
//
// 被替换的调度器由调用方负责关闭，通道 Close 不会关闭它。
// 配合 bio.Executors() 即为进程级共享池策略。
func WithExecutors(executors async.Executors) Option {
	return func(options *Options) (err error) {
		if executors == nil {
			err = errors.New("bio: executors must not be nil")
			return
		}
		options.Executors = executors
		return
	}
}

// WithMinWorkers
// 设置私有工作池的协程下限。默认为4。
func WithMinWorkers(n int) Option {
	return func(options *Options) (err error) {
		return async.MinWorkers(n)(&options.Pool)
	}
}

// WithMaxWorkers
// 设置私有工作池的协程上限。默认为16。
func WithMaxWorkers(n int) Option {
	return func(options *Options) (err error) {
		return async.MaxWorkers(n)(&options.Pool)
	}
}

// WithMaxPending
// 设置私有工作池的待执行队列上限，超出即拒绝。默认为16。
func WithMaxPending(n int) Option {
	return func(options *Options) (err error) {
		return async.MaxPending(n)(&options.Pool)
	}
}

// WithMaxIdleDuration
// 设置私有工作池的空闲退役时长。默认为3秒。
func WithMaxIdleDuration(d time.Duration) Option {
	return func(options *Options) (err error) {
		return async.MaxIdleDuration(d)(&options.Pool)
	}
}

// WithKeepAlive
// 设置 TCP 保活周期。
func WithKeepAlive(d time.Duration) Option {
	return func(options *Options) (err error) {
		if d < 1 {
			err = errors.New("bio: keep alive must be greater than 0")
			return
		}
		options.Sockets.KeepAlive = d
		return
	}
}

// WithNoDelay
// 关闭 Nagle 算法。
func WithNoDelay() Option {
	return func(options *Options) (err error) {
		options.Sockets.NoDelay = true
		return
	}
}

// WithReuseAddr
// 设置 SO_REUSEADDR。
func WithReuseAddr() Option {
	return func(options *Options) (err error) {
		options.Sockets.ReuseAddr = true
		return
	}
}

// WithMultipathTCP
// 设置多路TCP。
func WithMultipathTCP() Option {
	return func(options *Options) (err error) {
		options.Sockets.MultipathTCP = true
		return
	}
}
