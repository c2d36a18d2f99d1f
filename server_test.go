package bio_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brickingsoft/bio"
	"github.com/brickingsoft/bio/async"
)

func TestServerSocket_AcceptBeforeBind(t *testing.T) {
	ln, lnErr := bio.OpenServer()
	if lnErr != nil {
		t.Fatal(lnErr)
	}
	defer ln.Close()

	fired := atomic.Int64{}
	err := ln.AcceptWith(nil, async.Handle[bio.Socket]{
		OnCompleted: func(s bio.Socket, attachment any) { fired.Add(1) },
		OnFailed:    func(cause error, attachment any) { fired.Add(1) },
	})
	if !bio.IsNotBound(err) {
		t.Error("expected not bound, got:", err)
	}
	_, err = ln.Accept().Get(context.Background())
	if !bio.IsNotBound(err) {
		t.Error("expected not bound, got:", err)
	}
	time.Sleep(100 * time.Millisecond)
	if n := fired.Load(); n != 0 {
		t.Error("no work must be scheduled before bind, handler fired", n, "times")
	}
}

func TestServerSocket_AcceptScenario(t *testing.T) {
	ln, lnErr := bio.OpenServer()
	if lnErr != nil {
		t.Fatal(lnErr)
	}
	defer ln.Close()
	if err := ln.Bind("tcp", "127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	t.Log("bound:", ln.Addr())

	wg := new(sync.WaitGroup)
	wg.Add(1)
	var accepted bio.Socket
	err := ln.AcceptWith("srv", async.Handle[bio.Socket]{
		OnCompleted: func(s bio.Socket, attachment any) {
			accepted = s
			t.Log("accepted:", s.RemoteAddr(), attachment)
			wg.Done()
		},
		OnFailed: func(cause error, attachment any) {
			t.Error("accept failed:", cause)
			wg.Done()
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	client, clientErr := bio.Open()
	if clientErr != nil {
		t.Fatal(clientErr)
	}
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err = client.Connect("tcp", ln.Addr().String()).Get(ctx); err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	if accepted == nil {
		t.Fatal("no socket was delivered")
	}
	defer accepted.Close()
	if accepted.RemoteAddr().String() != client.LocalAddr().String() {
		t.Error("remote addr mismatch:", accepted.RemoteAddr(), "!=", client.LocalAddr())
	}

	// 新通道可独立通信。
	payload := []byte("ping")
	if _, err = client.Write(payload).Get(ctx); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	n, readErr := accepted.Read(buf).Get(ctx)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(buf[:n]) != string(payload) {
		t.Error("payload mismatch:", string(buf[:n]))
	}
}

func TestServerSocket_AcceptFuture(t *testing.T) {
	ln, lnErr := bio.OpenServer(bio.WithReuseAddr())
	if lnErr != nil {
		t.Fatal(lnErr)
	}
	defer ln.Close()
	if err := ln.Bind("tcp", "127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	future := ln.Accept()

	client, clientErr := bio.Open()
	if clientErr != nil {
		t.Fatal(clientErr)
	}
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Connect("tcp", ln.Addr().String()).Get(ctx); err != nil {
		t.Fatal(err)
	}
	accepted, acceptErr := future.Get(ctx)
	if acceptErr != nil {
		t.Fatal(acceptErr)
	}
	defer accepted.Close()
	t.Log("accepted:", accepted.RemoteAddr())
}

func TestServerSocket_Close(t *testing.T) {
	ln, lnErr := bio.OpenServer()
	if lnErr != nil {
		t.Fatal(lnErr)
	}
	if err := ln.Bind("tcp", "127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}
	pending := ln.Accept()
	time.Sleep(50 * time.Millisecond)
	if err := ln.Close(); err != nil {
		t.Error(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := pending.Get(ctx); err == nil {
		t.Error("pending accept must fail once the server socket is closed")
	}
	if ln.IsOpen() {
		t.Error("server socket must be closed")
	}
	if err := ln.AcceptWith(nil, async.Handle[bio.Socket]{OnFailed: func(cause error, attachment any) {}}); !bio.IsClosed(err) {
		t.Error("expected closed, got:", err)
	}
}
