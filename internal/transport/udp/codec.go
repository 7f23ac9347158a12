package udp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/netip"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-rendezvous/config"
)

// ============================================================================
//                              请求
// ============================================================================

// DecodeRequest 将数据报载荷解码为标识符
//
// 载荷原样作为标识符，不做裁剪或规范化。
func DecodeRequest(payload []byte, maxLen int) (string, error) {
	if len(payload) == 0 {
		return "", ErrEmptyPayload
	}
	if maxLen > 0 && len(payload) > maxLen {
		return "", ErrPayloadTooLarge
	}
	if !utf8.Valid(payload) {
		return "", ErrInvalidUTF8
	}
	return string(payload), nil
}

// ============================================================================
//                              响应
// ============================================================================

// Response 发给一方的配对响应，描述其对端
type Response struct {
	// Identifier 配对的标识符
	Identifier string `json:"id"`

	// Peer 对端端点
	Peer netip.AddrPort `json:"peer"`

	// Session 双方共享的会话 ID
	Session string `json:"session,omitempty"`
}

// Codec 响应编解码器
type Codec interface {
	Name() string
	Encode(resp Response) ([]byte, error)
	Decode(data []byte) (Response, error)
}

// CodecFor 按名称返回编解码器
func CodecFor(format string) (Codec, error) {
	switch format {
	case config.FormatJSON, "":
		return JSONCodec{}, nil
	case config.FormatProto:
		return ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// JSONCodec 单行 JSON 编码
type JSONCodec struct{}

// Name 返回编码名称
func (JSONCodec) Name() string { return config.FormatJSON }

// Encode 编码为以换行结尾的 JSON
func (JSONCodec) Encode(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode 解码 JSON 响应
func (JSONCodec) Decode(data []byte) (Response, error) {
	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(data), &resp); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.Identifier == "" || !resp.Peer.IsValid() {
		return Response{}, fmt.Errorf("%w: missing id or peer", ErrInvalidResponse)
	}
	return resp, nil
}

// protobuf 字段号
const (
	fieldIdentifier protowire.Number = 1
	fieldPeer       protowire.Number = 2
	fieldSession    protowire.Number = 3
)

// ProtoCodec protobuf 线路编码
type ProtoCodec struct{}

// Name 返回编码名称
func (ProtoCodec) Name() string { return config.FormatProto }

// Encode 编码为 protobuf 消息
func (ProtoCodec) Encode(resp Response) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldIdentifier, protowire.BytesType)
	b = protowire.AppendString(b, resp.Identifier)
	b = protowire.AppendTag(b, fieldPeer, protowire.BytesType)
	b = protowire.AppendString(b, resp.Peer.String())
	if resp.Session != "" {
		b = protowire.AppendTag(b, fieldSession, protowire.BytesType)
		b = protowire.AppendString(b, resp.Session)
	}
	return b, nil
}

// Decode 解码 protobuf 消息，忽略未知字段
func (ProtoCodec) Decode(data []byte) (Response, error) {
	var (
		resp Response
		peer string
	)

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, protowire.ParseError(n))
		}
		data = data[n:]

		if typ == protowire.BytesType && (num == fieldIdentifier || num == fieldPeer || num == fieldSession) {
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, protowire.ParseError(n))
			}
			data = data[n:]

			switch num {
			case fieldIdentifier:
				resp.Identifier = v
			case fieldPeer:
				peer = v
			case fieldSession:
				resp.Session = v
			}
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return Response{}, fmt.Errorf("%w: %v", ErrInvalidResponse, protowire.ParseError(n))
		}
		data = data[n:]
	}

	addr, err := netip.ParseAddrPort(peer)
	if err != nil {
		return Response{}, fmt.Errorf("%w: peer: %v", ErrInvalidResponse, err)
	}
	resp.Peer = addr

	if resp.Identifier == "" {
		return Response{}, fmt.Errorf("%w: missing id", ErrInvalidResponse)
	}
	return resp, nil
}
