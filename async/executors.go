package async

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

var (
	ErrExecutorsWereClosed = errors.New("async: executors were closed")
)

// Executors
// 工作池。形状与 rxp.Executors 一致，便于以共享执行器替换私有池。
//
// TryExecute 在饱和或已关闭时返回假，绝不超额排队。
// Execute 为等待版本，直到提交成功、ctx 结束或池被关闭。
type Executors interface {
	TryExecute(ctx context.Context, task func()) (ok bool)
	Execute(ctx context.Context, task func()) (err error)
	Close() (err error)
	CloseGracefully() (err error)
}

const (
	ns500 = 500 * time.Nanosecond
	ms500 = 500 * time.Millisecond
)

type counter struct {
	n int64
}

func (c *counter) Incr() int64 {
	return atomic.AddInt64(&c.n, 1)
}

func (c *counter) Decr() int64 {
	return atomic.AddInt64(&c.n, -1)
}

func (c *counter) Value() int64 {
	return atomic.LoadInt64(&c.n)
}

func (c *counter) Wait() {
	times := 10
	for {
		n := c.Value()
		if n < 1 {
			break
		}
		time.Sleep(ms500)
		times--
		if times < 1 {
			times = 10
			runtime.Gosched()
		}
	}
}

type workerChan struct {
	lastUseTime time.Time
	ch          chan func()
}

// New
// 构建一个有界工作池。
//
// 默认最少 4 个工作协程、最多 16 个，待执行队列上限 16，
// 超出下限的空闲协程在空闲超时后退役。
func New(options ...Option) Executors {
	opt := Options{
		MinWorkers:      DefaultMinWorkers,
		MaxWorkers:      DefaultMaxWorkers,
		MaxPending:      DefaultMaxPending,
		MaxIdleDuration: DefaultMaxIdleDuration,
	}
	for _, option := range options {
		if optErr := option(&opt); optErr != nil {
			panic(optErr)
		}
	}
	if opt.MinWorkers > opt.MaxWorkers {
		opt.MinWorkers = opt.MaxWorkers
	}
	exec := &executors{
		minWorkersCount: int64(opt.MinWorkers),
		maxWorkersCount: int64(opt.MaxWorkers),
		maxPending:      opt.MaxPending,
		maxIdleDuration: opt.MaxIdleDuration,
		locker:          sync.Mutex{},
		running:         0,
		ready:           nil,
		pending:         queue.New(),
		stopCh:          nil,
		workers:         sync.Pool{},
		goroutines:      new(counter),
	}
	exec.start()
	return exec
}

type executors struct {
	minWorkersCount int64
	maxWorkersCount int64
	maxPending      int
	maxIdleDuration time.Duration
	locker          sync.Mutex
	running         int64
	ready           []*workerChan
	pending         *queue.Queue
	stopCh          chan struct{}
	workers         sync.Pool
	goroutines      *counter
}

func (exec *executors) TryExecute(ctx context.Context, task func()) (ok bool) {
	if task == nil || atomic.LoadInt64(&exec.running) == 0 {
		return false
	}
	w, queued := exec.dispatch(task)
	if queued {
		ok = true
		return
	}
	if w == nil {
		return false
	}
	w.ch <- task
	ok = true
	return
}

func (exec *executors) Execute(ctx context.Context, task func()) (err error) {
	if task == nil {
		return
	}
	times := 10
	for {
		ok := exec.TryExecute(ctx, task)
		if ok {
			break
		}
		if err = ctx.Err(); err != nil {
			break
		}
		if atomic.LoadInt64(&exec.running) == 0 {
			err = ErrExecutorsWereClosed
			return
		}
		time.Sleep(ns500)
		times--
		if times < 0 {
			times = 10
			runtime.Gosched()
		}
	}
	return
}

func (exec *executors) Close() (err error) {
	atomic.StoreInt64(&exec.running, 0)
	exec.shutdown()
	return
}

func (exec *executors) CloseGracefully() (err error) {
	atomic.StoreInt64(&exec.running, 0)
	exec.shutdown()
	exec.goroutines.Wait()
	return
}

func (exec *executors) shutdown() {
	close(exec.stopCh)
	exec.locker.Lock()
	// 丢弃未开始的任务
	for exec.pending.Length() > 0 {
		exec.pending.Remove()
	}
	ready := exec.ready
	for i := range ready {
		ready[i].ch <- nil
		ready[i] = nil
	}
	exec.ready = ready[:0]
	exec.locker.Unlock()
}

// dispatch
// 在同一临界区内完成派发决策：取就绪协程、扩容或入队，满则拒绝。
func (exec *executors) dispatch(task func()) (w *workerChan, queued bool) {
	createWorker := false
	exec.locker.Lock()
	if atomic.LoadInt64(&exec.running) == 0 {
		exec.locker.Unlock()
		return
	}
	ready := exec.ready
	n := len(ready) - 1
	if n >= 0 {
		w = ready[n]
		ready[n] = nil
		exec.ready = ready[:n]
		exec.locker.Unlock()
		return
	}
	if exec.goroutines.Value() < exec.maxWorkersCount {
		createWorker = true
		exec.goroutines.Incr()
	} else if exec.pending.Length() < exec.maxPending {
		exec.pending.Add(task)
		queued = true
	}
	exec.locker.Unlock()
	if !createWorker {
		return
	}
	vch := exec.workers.Get()
	w = vch.(*workerChan)
	go func(exec *executors) {
		exec.handle(w)
		exec.workers.Put(vch)
	}(exec)
	return
}

// release
// 任务执行完毕后的归还：有积压则直接接手下一个任务，否则回到就绪列表。
func (exec *executors) release(w *workerChan) (next func(), ok bool) {
	w.lastUseTime = time.Now()
	exec.locker.Lock()
	if atomic.LoadInt64(&exec.running) == 0 {
		exec.locker.Unlock()
		return
	}
	if exec.pending.Length() > 0 {
		next = exec.pending.Remove().(func())
		exec.locker.Unlock()
		ok = true
		return
	}
	exec.ready = append(exec.ready, w)
	exec.locker.Unlock()
	ok = true
	return
}

func (exec *executors) handle(w *workerChan) {
	stopped := false
	for !stopped {
		task, ok := <-w.ch
		if !ok || task == nil {
			break
		}
		for task != nil {
			task()
			task, ok = exec.release(w)
			if !ok {
				stopped = true
				break
			}
		}
	}
	exec.locker.Lock()
	exec.goroutines.Decr()
	exec.locker.Unlock()
}

func (exec *executors) start() {
	exec.running = 1
	exec.stopCh = make(chan struct{})
	exec.workers.New = func() interface{} {
		return &workerChan{
			ch: make(chan func(), 1),
		}
	}
	go func(exec *executors) {
		var scratch []*workerChan
		maxIdleDuration := exec.maxIdleDuration
		stopped := false
		timer := time.NewTimer(maxIdleDuration)
		for {
			select {
			case <-exec.stopCh:
				stopped = true
				break
			case <-timer.C:
				exec.clean(&scratch)
				timer.Reset(maxIdleDuration)
				break
			}
			if stopped {
				break
			}
		}
		timer.Stop()
	}(exec)
}

// clean
// 退役空闲超时的工作协程，但保留下限数量。
func (exec *executors) clean(scratch *[]*workerChan) {
	if atomic.LoadInt64(&exec.running) == 0 {
		return
	}
	criticalTime := time.Now().Add(-exec.maxIdleDuration)
	exec.locker.Lock()
	ready := exec.ready
	n := len(ready)
	l, r, mid := 0, n-1, 0
	for l <= r {
		mid = (l + r) / 2
		if criticalTime.After(exec.ready[mid].lastUseTime) {
			l = mid + 1
		} else {
			r = mid - 1
		}
	}
	i := r
	if i == -1 {
		exec.locker.Unlock()
		return
	}
	if retirable := exec.goroutines.Value() - exec.minWorkersCount; retirable < int64(i+1) {
		if retirable < 1 {
			exec.locker.Unlock()
			return
		}
		i = int(retirable) - 1
	}
	*scratch = append((*scratch)[:0], ready[:i+1]...)
	m := copy(ready, ready[i+1:])
	for i = m; i < n; i++ {
		ready[i] = nil
	}
	exec.ready = ready[:m]
	exec.locker.Unlock()

	tmp := *scratch
	for j := range tmp {
		tmp[j].ch <- nil
		tmp[j] = nil
	}
}
