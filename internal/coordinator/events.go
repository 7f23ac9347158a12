package coordinator

import (
	"net/netip"

	"github.com/dep2p/go-rendezvous/internal/matcher"
)

// Event 邮箱中的事件
type Event interface {
	eventName() string
}

// RequestArrived 收到一个请求数据报
type RequestArrived struct {
	// Identifier 数据报载荷
	Identifier string

	// Source 传输层来源端点
	Source netip.AddrPort
}

func (RequestArrived) eventName() string { return "request_arrived" }

// TimeoutTick 清扫定时器触发
type TimeoutTick struct{}

func (TimeoutTick) eventName() string { return "timeout_tick" }

// snapshotQuery 通过邮箱读取引擎快照
type snapshotQuery struct {
	reply chan matcher.Snapshot
}

func (snapshotQuery) eventName() string { return "snapshot_query" }
