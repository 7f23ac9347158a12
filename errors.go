package rendezvous

import "errors"

// 公共错误定义
var (
	// ErrNotStarted 服务未启动
	ErrNotStarted = errors.New("rendezvous: server not started")

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("rendezvous: server already started")

	// ErrServerClosed 服务已关闭，套接字已释放，不能再次启动
	ErrServerClosed = errors.New("rendezvous: server closed")
)
