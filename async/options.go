package async

import (
	"errors"
	"time"
)

const (
	DefaultMinWorkers      = 4
	DefaultMaxWorkers      = 16
	DefaultMaxPending      = 16
	DefaultMaxIdleDuration = 3 * time.Second
)

type Options struct {
	MinWorkers      int
	MaxWorkers      int
	MaxPending      int
	MaxIdleDuration time.Duration
}

type Option func(options *Options) (err error)

// MinWorkers
// 设置工作协程下限，退役时保留的数量。默认为4。
func MinWorkers(n int) Option {
	return func(options *Options) (err error) {
		if n < 1 {
			err = errors.New("async: min workers must be greater than 0")
			return
		}
		options.MinWorkers = n
		return
	}
}

// MaxWorkers
// 设置工作协程上限。默认为16。
func MaxWorkers(n int) Option {
	return func(options *Options) (err error) {
		if n < 1 {
			err = errors.New("async: max workers must be greater than 0")
			return
		}
		options.MaxWorkers = n
		return
	}
}

// MaxPending
// 设置待执行队列上限，超出即拒绝提交。默认为16。
func MaxPending(n int) Option {
	return func(options *Options) (err error) {
		if n < 0 {
			err = errors.New("async: max pending must not be negative")
			return
		}
		options.MaxPending = n
		return
	}
}

// MaxIdleDuration
// 设置空闲退役时长。默认为3秒。
func MaxIdleDuration(d time.Duration) Option {
	return func(options *Options) (err error) {
		if d < 1 {
			err = errors.New("async: max idle duration must be greater than 0")
			return
		}
		options.MaxIdleDuration = d
		return
	}
}
