package matcher

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/dep2p/go-rendezvous/internal/util/logger"
)

var log = logger.Logger("matcher")

// Config 引擎配置
type Config struct {
	// TTL 请求自最近一次提交起的存活时间
	TTL time.Duration

	// MaxPending 登记表容量
	MaxPending int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		TTL:        120 * time.Second,
		MaxPending: 65536,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("%w: TTL must be positive", ErrInvalidConfig)
	}
	if c.MaxPending <= 0 {
		return fmt.Errorf("%w: max pending must be positive", ErrInvalidConfig)
	}
	return nil
}

// Option 引擎选项
type Option func(*Engine)

// WithSessionFunc 替换会话 ID 生成函数
func WithSessionFunc(fn func() string) Option {
	return func(e *Engine) {
		e.newSession = fn
	}
}

// ============================================================================
//                              Engine
// ============================================================================

// Engine 配对引擎
//
// 不是并发安全的，只能由单一协程驱动。
type Engine struct {
	config Config

	// pending: identifier -> PendingRequest，按最近提交排序
	pending *simplelru.LRU[string, PendingRequest]

	newSession func() string

	stats Stats
}

// NewEngine 创建配对引擎
func NewEngine(config Config, opts ...Option) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	pending, err := simplelru.NewLRU[string, PendingRequest](config.MaxPending, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	e := &Engine{
		config:     config,
		pending:    pending,
		newSession: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Submit 提交一个请求
//
// 返回后每个标识符至多一个待配对请求；结果为 Paired 时该标识符已不在登记表中。
func (e *Engine) Submit(identifier string, source netip.AddrPort, now time.Time) (Outcome, error) {
	if identifier == "" {
		return Outcome{}, ErrInvalidIdentifier
	}
	if !source.IsValid() {
		return Outcome{}, ErrInvalidSource
	}

	existing, ok := e.pending.Peek(identifier)
	switch {
	case !ok:
		return e.register(identifier, source, now), nil

	case existing.Source == source:
		existing.CreatedAt = now
		existing.LastSeenAt = now
		e.pending.Add(identifier, existing)
		e.stats.Refreshed++

		log.Debug("request refreshed", "id", identifier, "source", source)
		return Outcome{Kind: Refreshed}, nil

	default:
		e.pending.Remove(identifier)
		pair := &MatchedPair{
			A: existing,
			B: PendingRequest{
				Identifier: identifier,
				Source:     source,
				CreatedAt:  now,
				LastSeenAt: now,
			},
			Session: e.newSession(),
		}
		e.stats.Paired++

		log.Info("pair matched",
			"id", identifier,
			"a", existing.Source,
			"b", source,
			"waited", now.Sub(existing.CreatedAt),
			"session", pair.Session)
		return Outcome{Kind: Paired, Pair: pair}, nil
	}
}

// register 登记新请求，登记表已满时先淘汰最久未刷新的请求
func (e *Engine) register(identifier string, source netip.AddrPort, now time.Time) Outcome {
	out := Outcome{Kind: Registered}

	if e.pending.Len() >= e.config.MaxPending {
		if _, oldest, ok := e.pending.RemoveOldest(); ok {
			e.stats.EvictedCapacity++
			out.Displaced = &oldest

			log.Warn("registry full, evicted oldest request",
				"id", oldest.Identifier,
				"source", oldest.Source,
				"capacity", e.config.MaxPending)
		}
	}

	e.pending.Add(identifier, PendingRequest{
		Identifier: identifier,
		Source:     source,
		CreatedAt:  now,
		LastSeenAt: now,
	})
	e.stats.Registered++

	log.Debug("request registered", "id", identifier, "source", source)
	return out
}

// Sweep 移除所有超过 TTL 的请求，返回移除数量
func (e *Engine) Sweep(now time.Time) int {
	e.stats.Sweeps++

	removed := 0
	for _, id := range e.pending.Keys() {
		req, ok := e.pending.Peek(id)
		if !ok || !req.Expired(now, e.config.TTL) {
			continue
		}
		e.pending.Remove(id)
		removed++

		log.Debug("request expired", "id", id, "source", req.Source, "age", req.Age(now))
	}

	e.stats.EvictedTTL += uint64(removed)
	if removed > 0 {
		log.Info("sweep evicted expired requests", "removed", removed, "pending", e.pending.Len())
	}
	return removed
}

// Lookup 查询待配对请求，不影响淘汰顺序
func (e *Engine) Lookup(identifier string) (PendingRequest, bool) {
	return e.pending.Peek(identifier)
}

// Len 返回待配对请求数
func (e *Engine) Len() int {
	return e.pending.Len()
}

// Stats 返回累计统计
func (e *Engine) Stats() Stats {
	return e.stats
}

// Snapshot 返回当前状态快照
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Stats:    e.stats,
		Pending:  e.pending.Len(),
		Capacity: e.config.MaxPending,
		TTL:      e.config.TTL,
	}
}
