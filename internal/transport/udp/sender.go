package udp

import (
	"net/netip"

	"github.com/dep2p/go-rendezvous/internal/coordinator"
	"github.com/dep2p/go-rendezvous/internal/matcher"
	"github.com/dep2p/go-rendezvous/internal/util/addrutil"
	"github.com/dep2p/go-rendezvous/internal/util/logger"
)

var log = logger.Logger("transport/udp")

// packetWriter 可向任意端点写数据报（*net.UDPConn）
type packetWriter interface {
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
}

// Recorder 适配器事件记录（指标）
type Recorder interface {
	DatagramReceived(size int)
	DatagramDropped(reason string)
	ResponseSent()
	ResponseFailed()
	STUNAnswered()
}

// nopRecorder 不记录
type nopRecorder struct{}

func (nopRecorder) DatagramReceived(int)   {}
func (nopRecorder) DatagramDropped(string) {}
func (nopRecorder) ResponseSent()          {}
func (nopRecorder) ResponseFailed()        {}
func (nopRecorder) STUNAnswered()          {}

// Sender 出站适配器
//
// 每个配对发送两条互相独立的响应，任何一条失败都不影响另一条，
// 也不影响已经提交的配对。可被并发调用。
type Sender struct {
	conn     packetWriter
	codec    Codec
	recorder Recorder
}

var _ coordinator.Sender = (*Sender)(nil)

// NewSender 创建出站适配器
func NewSender(conn packetWriter, codec Codec, recorder Recorder) *Sender {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Sender{
		conn:     conn,
		codec:    codec,
		recorder: recorder,
	}
}

// SendPair 向 A 发送 B 的端点，向 B 发送 A 的端点
func (s *Sender) SendPair(pair matcher.MatchedPair) {
	id := pair.Identifier()
	if addrutil.SameHost(pair.A.Source, pair.B.Source) {
		log.Debug("pair shares one public address, direct path needs NAT hairpinning",
			"id", id, "addr", pair.A.Source.Addr())
	}
	s.send(pair.A.Source, Response{Identifier: id, Peer: pair.B.Source, Session: pair.Session})
	s.send(pair.B.Source, Response{Identifier: id, Peer: pair.A.Source, Session: pair.Session})
}

// send 发送单条响应，失败只记录
func (s *Sender) send(to netip.AddrPort, resp Response) {
	data, err := s.codec.Encode(resp)
	if err != nil {
		s.recorder.ResponseFailed()
		log.Warn("encode response failed", "to", to, "id", resp.Identifier, "err", err)
		return
	}

	if _, err := s.conn.WriteToUDPAddrPort(data, to); err != nil {
		s.recorder.ResponseFailed()
		log.Warn("send response failed", "to", to, "id", resp.Identifier, "err", err)
		return
	}

	s.recorder.ResponseSent()
	log.Debug("response sent", "to", to, "peer", resp.Peer, "peer_type", addrutil.AddrType(resp.Peer.Addr()), "id", resp.Identifier)
}
