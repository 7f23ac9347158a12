package config

import (
	"errors"
	"fmt"
	"net"
)

// 响应线路格式
const (
	// FormatJSON 单行 JSON：{"id":..,"peer":..,"session":..}
	FormatJSON = "json"
	// FormatProto protobuf 线路编码
	FormatProto = "proto"
)

// ListenConfig UDP 监听配置
//
// 请求与响应默认共用同一个套接字：NAT 只会放行来自请求目的端点的回包，
// 单独配置 ResponseAddr 只适用于无 NAT 或全锥形 NAT 的部署。
type ListenConfig struct {
	// Addr 请求监听端点
	Addr string `json:"addr"`

	// ResponseAddr 响应发送端点（为空则复用 Addr 的套接字）
	ResponseAddr string `json:"response_addr,omitempty"`

	// MaxIdentifierLen 标识符最大字节数，超出的数据报被丢弃
	MaxIdentifierLen int `json:"max_identifier_len"`

	// ReadBufferSize 接收缓冲区大小（字节）
	ReadBufferSize int `json:"read_buffer_size"`

	// ResponseFormat 响应编码：json 或 proto
	ResponseFormat string `json:"response_format"`
}

// DefaultListenConfig 返回默认监听配置
func DefaultListenConfig() ListenConfig {
	return ListenConfig{
		Addr:             "0.0.0.0:6114",
		ResponseAddr:     "",
		MaxIdentifierLen: 512,
		ReadBufferSize:   2048,
		ResponseFormat:   FormatJSON,
	}
}

// Validate 验证监听配置
func (c ListenConfig) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Addr, err)
	}
	if c.ResponseAddr != "" {
		if _, _, err := net.SplitHostPort(c.ResponseAddr); err != nil {
			return fmt.Errorf("invalid response address %q: %w", c.ResponseAddr, err)
		}
	}
	if c.MaxIdentifierLen <= 0 {
		return errors.New("max identifier length must be positive")
	}
	if c.ReadBufferSize <= c.MaxIdentifierLen {
		return errors.New("read buffer size must exceed max identifier length")
	}
	switch c.ResponseFormat {
	case FormatJSON, FormatProto:
	default:
		return fmt.Errorf("unknown response format %q", c.ResponseFormat)
	}
	return nil
}
