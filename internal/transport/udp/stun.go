package udp

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/pion/stun"
)

// stunResponder 应答 STUN Binding Request
type stunResponder struct {
	conn     packetWriter
	software string
}

// newSTUNResponder 创建 STUN 应答器
func newSTUNResponder(conn packetWriter, software string) *stunResponder {
	return &stunResponder{
		conn:     conn,
		software: software,
	}
}

// isSTUN 检查载荷是否为 STUN 消息
func isSTUN(payload []byte) bool {
	return stun.IsMessage(payload)
}

// handle 解码请求并回写 Binding Success，携带来源的映射地址
func (r *stunResponder) handle(payload []byte, src netip.AddrPort) error {
	req := &stun.Message{Raw: append([]byte(nil), payload...)}
	if err := req.Decode(); err != nil {
		return fmt.Errorf("decode stun message: %w", err)
	}
	if req.Type != stun.BindingRequest {
		return ErrNotBindingRequest
	}

	resp, err := r.build(req.TransactionID, src)
	if err != nil {
		return err
	}

	if _, err := r.conn.WriteToUDPAddrPort(resp.Raw, src); err != nil {
		return fmt.Errorf("write stun response: %w", err)
	}
	return nil
}

// build 构造 Binding Success 响应
func (r *stunResponder) build(tid [stun.TransactionIDSize]byte, src netip.AddrPort) (*stun.Message, error) {
	setters := []stun.Setter{
		stun.NewTransactionIDSetter(tid),
		stun.BindingSuccess,
		&stun.XORMappedAddress{
			IP:   net.IP(src.Addr().AsSlice()),
			Port: int(src.Port()),
		},
	}
	if r.software != "" {
		setters = append(setters, stun.NewSoftware(r.software))
	}
	setters = append(setters, stun.Fingerprint)

	resp, err := stun.Build(setters...)
	if err != nil {
		return nil, fmt.Errorf("build stun response: %w", err)
	}
	return resp, nil
}
