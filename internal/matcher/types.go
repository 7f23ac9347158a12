package matcher

import (
	"fmt"
	"net/netip"
	"time"
)

// ============================================================================
//                              待配对请求
// ============================================================================

// PendingRequest 等待对端到达的请求
type PendingRequest struct {
	// Identifier 客户端提供的关联键，按字节精确比较
	Identifier string

	// Source 传输层观测到的来源端点（地址 + 端口）
	Source netip.AddrPort

	// CreatedAt 创建时间，刷新时同步更新
	CreatedAt time.Time

	// LastSeenAt 最近一次提交时间，TTL 从此刻起算
	LastSeenAt time.Time
}

// Age 返回自最近一次提交以来经过的时间
func (r PendingRequest) Age(now time.Time) time.Duration {
	return now.Sub(r.LastSeenAt)
}

// Expired 检查请求在 now 时刻是否超过 ttl
func (r PendingRequest) Expired(now time.Time, ttl time.Duration) bool {
	return r.Age(now) > ttl
}

// ============================================================================
//                              配对结果
// ============================================================================

// MatchedPair 两个共享标识符且来源不同的请求
//
// 只在单个事件处理步骤内短暂存在，不会被登记表保存。
type MatchedPair struct {
	// A 先到达、已在等待的请求
	A PendingRequest

	// B 完成配对的请求
	B PendingRequest

	// Session 双方响应共享的会话 ID
	Session string
}

// Identifier 返回配对的标识符
func (p MatchedPair) Identifier() string {
	return p.A.Identifier
}

// String 返回可读表示
func (p MatchedPair) String() string {
	return fmt.Sprintf("%s: %s <-> %s", p.A.Identifier, p.A.Source, p.B.Source)
}

// OutcomeKind Submit 的结果类型
type OutcomeKind int

const (
	// Registered 新登记
	Registered OutcomeKind = iota + 1
	// Refreshed 同一来源刷新
	Refreshed
	// Paired 配对成功
	Paired
)

// String 返回结果类型名称
func (k OutcomeKind) String() string {
	switch k {
	case Registered:
		return "registered"
	case Refreshed:
		return "refreshed"
	case Paired:
		return "paired"
	default:
		return "unknown"
	}
}

// Outcome Submit 的返回值
type Outcome struct {
	Kind OutcomeKind

	// Pair 仅在 Kind == Paired 时非空
	Pair *MatchedPair

	// Displaced 因容量上限被淘汰的请求（仅可能出现在 Registered）
	Displaced *PendingRequest
}

// ============================================================================
//                              统计
// ============================================================================

// Stats 引擎累计统计
type Stats struct {
	Registered      uint64
	Refreshed       uint64
	Paired          uint64
	EvictedTTL      uint64
	EvictedCapacity uint64
	Sweeps          uint64
}

// Snapshot 引擎当前状态快照
type Snapshot struct {
	Stats

	// Pending 当前待配对请求数
	Pending int

	// Capacity 登记表容量
	Capacity int

	// TTL 请求存活时间
	TTL time.Duration
}
