package udp

import (
	"errors"
	"net"
	"net/netip"

	"github.com/dep2p/go-rendezvous/internal/coordinator"
)

// packetReader 可读取数据报及来源端点（*net.UDPConn）
type packetReader interface {
	ReadFromUDPAddrPort(b []byte) (int, netip.AddrPort, error)
}

// Listener 入站适配器
//
// 解码数据报并投递 RequestArrived；自身不持有任何共享状态。
type Listener struct {
	conn       packetReader
	poster     coordinator.Poster
	stun       *stunResponder
	recorder   Recorder
	maxIDLen   int
	bufferSize int
}

// Serve 读取数据报直到套接字关闭或邮箱关闭
func (l *Listener) Serve() error {
	buf := make([]byte, l.bufferSize)

	for {
		n, src, err := l.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Debug("read datagram failed", "err", err)
			continue
		}

		l.recorder.DatagramReceived(n)
		if !l.handle(buf[:n], src) {
			return nil
		}
	}
}

// handle 处理单个数据报，返回 false 表示应停止读取
func (l *Listener) handle(payload []byte, src netip.AddrPort) bool {
	src = netip.AddrPortFrom(src.Addr().Unmap(), src.Port())

	if l.stun != nil && isSTUN(payload) {
		if err := l.stun.handle(payload, src); err != nil {
			l.recorder.DatagramDropped(DropSTUN)
			log.Debug("stun request dropped", "source", src, "err", err)
			return true
		}
		l.recorder.STUNAnswered()
		return true
	}

	id, err := DecodeRequest(payload, l.maxIDLen)
	if err != nil {
		l.recorder.DatagramDropped(dropReason(err))
		log.Debug("malformed datagram dropped", "source", src, "size", len(payload), "err", err)
		return true
	}

	if err := l.poster.Post(coordinator.RequestArrived{Identifier: id, Source: src}); err != nil {
		l.recorder.DatagramDropped(DropClosed)
		return !errors.Is(err, coordinator.ErrClosed)
	}
	return true
}
