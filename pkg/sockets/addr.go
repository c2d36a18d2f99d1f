package sockets

import (
	"net"

	"github.com/brickingsoft/errors"
)

// ResolveAddr
// 解析流式网络地址。仅支持 tcp、tcp4、tcp6 与 unix。
func ResolveAddr(network string, address string) (addr net.Addr, err error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
		addr, err = net.ResolveTCPAddr(network, address)
		break
	case "unix":
		addr, err = net.ResolveUnixAddr(network, address)
		break
	default:
		err = &net.AddrError{Err: "network is not supported", Addr: network + "://" + address}
		return
	}
	if err != nil {
		err = errors.New("sockets: resolve addr failed", errors.WithWrap(err))
		return
	}
	return
}
