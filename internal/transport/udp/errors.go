package udp

import "errors"

// 预定义错误
var (
	// ErrEmptyPayload 空载荷
	ErrEmptyPayload = errors.New("udp: empty payload")

	// ErrPayloadTooLarge 载荷超过标识符上限
	ErrPayloadTooLarge = errors.New("udp: payload too large")

	// ErrInvalidUTF8 载荷不是合法 UTF-8
	ErrInvalidUTF8 = errors.New("udp: payload is not valid UTF-8")

	// ErrInvalidResponse 响应无法解码
	ErrInvalidResponse = errors.New("udp: invalid response")

	// ErrUnknownFormat 未知响应编码
	ErrUnknownFormat = errors.New("udp: unknown response format")

	// ErrNotBindingRequest 不是 STUN Binding Request
	ErrNotBindingRequest = errors.New("udp: not a STUN binding request")

	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("udp: already started")
)

// 丢弃原因，用作指标标签
const (
	DropEmpty       = "empty"
	DropTooLarge    = "too_large"
	DropInvalidUTF8 = "invalid_utf8"
	DropSTUN        = "stun_invalid"
	DropClosed      = "closed"
)

// dropReason 将解码错误映射为指标标签
func dropReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyPayload):
		return DropEmpty
	case errors.Is(err, ErrPayloadTooLarge):
		return DropTooLarge
	case errors.Is(err, ErrInvalidUTF8):
		return DropInvalidUTF8
	default:
		return "other"
	}
}
