package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/pion/stun"

	"github.com/dep2p/go-rendezvous/internal/transport/udp"
)

// errTimeout 超时仍未收到响应
var errTimeout = errors.New("probe: no response before timeout")

// probe 每隔 retry 重发标识符，直到收到匹配的响应
//
// 重发只会刷新服务端的等待请求，不会产生重复配对。
func probe(ctx context.Context, conn *net.UDPConn, id string, retry time.Duration, codec udp.Codec) (udp.Response, error) {
	buf := make([]byte, 2048)
	ctxDeadline, hasDeadline := ctx.Deadline()

	for {
		if _, err := conn.Write([]byte(id)); err != nil {
			return udp.Response{}, fmt.Errorf("send request: %w", err)
		}

		deadline := time.Now().Add(retry)
		if hasDeadline && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			return udp.Response{}, err
		}

		for {
			n, err := conn.Read(buf)
			if err != nil {
				if errors.Is(err, os.ErrDeadlineExceeded) {
					break
				}
				return udp.Response{}, fmt.Errorf("read response: %w", err)
			}

			resp, err := codec.Decode(buf[:n])
			if err != nil || resp.Identifier != id {
				// STUN 响应或其他噪声
				continue
			}
			return resp, nil
		}

		if ctx.Err() != nil || (hasDeadline && !time.Now().Before(ctxDeadline)) {
			return udp.Response{}, errTimeout
		}
	}
}

// reflexiveAddr 通过 STUN Binding 获取本端的公网映射地址
func reflexiveAddr(conn *net.UDPConn, timeout time.Duration) (netip.AddrPort, error) {
	req := stun.MustBuild(stun.TransactionID, stun.BindingRequest)
	if _, err := conn.Write(req.Raw); err != nil {
		return netip.AddrPort{}, err
	}
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return netip.AddrPort{}, err
	}

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return netip.AddrPort{}, err
	}

	resp := &stun.Message{Raw: buf[:n]}
	if err := resp.Decode(); err != nil {
		return netip.AddrPort{}, err
	}
	if resp.TransactionID != req.TransactionID {
		return netip.AddrPort{}, errors.New("stun transaction mismatch")
	}

	var xor stun.XORMappedAddress
	if err := xor.GetFrom(resp); err != nil {
		return netip.AddrPort{}, err
	}
	addr, ok := netip.AddrFromSlice(xor.IP)
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("invalid mapped address %v", xor.IP)
	}
	return netip.AddrPortFrom(addr.Unmap(), uint16(xor.Port)), nil
}
