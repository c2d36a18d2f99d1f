package sockets_test

import (
	"net"
	"testing"

	"github.com/brickingsoft/bio/pkg/sockets"
)

func TestResolveAddr(t *testing.T) {
	addr, err := sockets.ResolveAddr("tcp", "127.0.0.1:9000")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := addr.(*net.TCPAddr); !ok {
		t.Error("unexpected addr type:", addr)
	}
	addr, err = sockets.ResolveAddr("unix", "/tmp/bio.sock")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := addr.(*net.UnixAddr); !ok {
		t.Error("unexpected addr type:", addr)
	}
	if _, err = sockets.ResolveAddr("udp", "127.0.0.1:9000"); err == nil {
		t.Error("udp must be rejected")
	}
}
