package matcher

import "errors"

// 预定义错误
var (
	// ErrInvalidIdentifier 标识符为空
	ErrInvalidIdentifier = errors.New("matcher: invalid identifier")

	// ErrInvalidSource 来源端点无效
	ErrInvalidSource = errors.New("matcher: invalid source")

	// ErrInvalidConfig 引擎配置无效
	ErrInvalidConfig = errors.New("matcher: invalid config")
)
