package coordinator

import "errors"

// 预定义错误
var (
	// ErrClosed 邮箱已关闭
	ErrClosed = errors.New("coordinator: mailbox closed")

	// ErrAlreadyStarted 已启动
	ErrAlreadyStarted = errors.New("coordinator: already started")

	// ErrNotStarted 未启动
	ErrNotStarted = errors.New("coordinator: not started")
)
