package async_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brickingsoft/bio/async"
)

func TestExecutors_TryExecute(t *testing.T) {
	exec := async.New()
	executed := atomic.Int64{}
	wg := new(sync.WaitGroup)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := exec.TryExecute(context.Background(), func() {
			executed.Add(1)
			wg.Done()
		})
		if !ok {
			t.Error("try execute failed")
			wg.Done()
		}
	}
	wg.Wait()
	if err := exec.CloseGracefully(); err != nil {
		t.Error(err)
	}
	if n := executed.Load(); n != 10 {
		t.Error("executed", n, "tasks")
	}
}

func TestExecutors_Execute(t *testing.T) {
	exec := async.New(async.MaxWorkers(2), async.MaxPending(2))
	defer func() {
		_ = exec.CloseGracefully()
	}()
	executed := atomic.Int64{}
	wg := new(sync.WaitGroup)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		err := exec.Execute(context.Background(), func() {
			executed.Add(1)
			wg.Done()
		})
		if err != nil {
			t.Error(err)
			wg.Done()
		}
	}
	wg.Wait()
	if n := executed.Load(); n != 16 {
		t.Error("executed", n, "tasks")
	}
}

func TestExecutors_Rejection(t *testing.T) {
	exec := async.New(async.MaxWorkers(2), async.MaxPending(2))
	defer func() {
		_ = exec.Close()
	}()
	gate := make(chan struct{})
	wg := new(sync.WaitGroup)
	// 占满工作协程与待执行队列。
	for i := 0; i < 4; i++ {
		wg.Add(1)
		ok := exec.TryExecute(context.Background(), func() {
			<-gate
			wg.Done()
		})
		if !ok {
			t.Error("submission", i, "must be accepted")
			wg.Done()
		}
	}
	time.Sleep(50 * time.Millisecond)
	if ok := exec.TryExecute(context.Background(), func() {}); ok {
		t.Error("saturated executors must reject the submission")
	}
	close(gate)
	wg.Wait()
}

func TestExecutors_CloseDiscardsPending(t *testing.T) {
	exec := async.New(async.MaxWorkers(1), async.MaxPending(4))
	gate := make(chan struct{})
	started := make(chan struct{})
	ok := exec.TryExecute(context.Background(), func() {
		close(started)
		<-gate
	})
	if !ok {
		t.Fatal("first submission must be accepted")
	}
	<-started
	queued := atomic.Bool{}
	if ok = exec.TryExecute(context.Background(), func() { queued.Store(true) }); !ok {
		t.Fatal("queued submission must be accepted")
	}
	if err := exec.Close(); err != nil {
		t.Error(err)
	}
	close(gate)
	time.Sleep(100 * time.Millisecond)
	if queued.Load() {
		t.Error("pending task must be discarded on close")
	}
}

func TestExecutors_ClosedRejects(t *testing.T) {
	exec := async.New()
	if err := exec.Close(); err != nil {
		t.Error(err)
	}
	if ok := exec.TryExecute(context.Background(), func() {}); ok {
		t.Error("closed executors must reject the submission")
	}
	err := exec.Execute(context.Background(), func() {})
	if !errors.Is(err, async.ErrExecutorsWereClosed) {
		t.Error("expected closed error, got:", err)
	}
}
