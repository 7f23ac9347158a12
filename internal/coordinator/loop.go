package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-rendezvous/internal/matcher"
	"github.com/dep2p/go-rendezvous/internal/util/logger"
)

var log = logger.Logger("coordinator")

// ============================================================================
//                              协作接口
// ============================================================================

// Sender 出站适配器
//
// SendPair 向双方各发送一条指向对端的响应；尽力而为，失败不回滚配对。
// 实现必须可被并发调用。
type Sender interface {
	SendPair(pair matcher.MatchedPair)
}

// Observer 观察每次事件处理的结果（指标）
type Observer interface {
	ObserveSubmit(out matcher.Outcome, pending int)
	ObserveSweep(removed, pending int)
}

// Poster 事件投递方
type Poster interface {
	Post(ev Event) error
}

// Snapshotter 引擎快照查询
type Snapshotter interface {
	Snapshot(ctx context.Context) (matcher.Snapshot, error)
}

// ============================================================================
//                              配置
// ============================================================================

// Config 事件循环配置
type Config struct {
	// SweepInterval 清扫间隔
	SweepInterval time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		SweepInterval: 15 * time.Second,
	}
}

// Option 事件循环选项
type Option func(*Loop)

// WithClock 替换时钟（测试使用 clock.NewMock）
func WithClock(clk clock.Clock) Option {
	return func(l *Loop) {
		if clk != nil {
			l.clock = clk
		}
	}
}

// WithObserver 设置结果观察者
func WithObserver(obs Observer) Option {
	return func(l *Loop) {
		l.observer = obs
	}
}

// ============================================================================
//                              Loop
// ============================================================================

// Loop 单写者事件循环，唯一修改登记表的地方
type Loop struct {
	config   Config
	engine   *matcher.Engine
	sender   Sender
	observer Observer
	clock    clock.Clock
	mailbox  *Mailbox

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

var (
	_ Poster      = (*Loop)(nil)
	_ Snapshotter = (*Loop)(nil)
)

// NewLoop 创建事件循环
func NewLoop(engine *matcher.Engine, sender Sender, config Config, opts ...Option) *Loop {
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultConfig().SweepInterval
	}

	l := &Loop{
		config:  config,
		engine:  engine,
		sender:  sender,
		clock:   clock.New(),
		mailbox: NewMailbox(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start 启动消费协程与清扫定时器
//
// 传入的 ctx 只用于启动阶段；循环一直运行到 Stop。
func (l *Loop) Start(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return l.run(gctx) })
	group.Go(func() error { return l.tick(gctx) })

	l.cancel = cancel
	l.group = group
	l.started = true

	log.Info("event loop started", "sweep_interval", l.config.SweepInterval)
	return nil
}

// Stop 停止循环并等待协程退出，之后的 Post 返回 ErrClosed
func (l *Loop) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.started {
		return ErrNotStarted
	}
	l.started = false

	l.mailbox.Close()
	l.cancel()
	err := l.group.Wait()

	log.Info("event loop stopped", "backlog", l.mailbox.Len())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Post 投递事件，永不阻塞
func (l *Loop) Post(ev Event) error {
	return l.mailbox.Put(ev)
}

// Snapshot 经由邮箱读取引擎快照
func (l *Loop) Snapshot(ctx context.Context) (matcher.Snapshot, error) {
	q := snapshotQuery{reply: make(chan matcher.Snapshot, 1)}
	if err := l.Post(q); err != nil {
		return matcher.Snapshot{}, err
	}

	select {
	case snap := <-q.reply:
		return snap, nil
	case <-ctx.Done():
		return matcher.Snapshot{}, ctx.Err()
	}
}

// Backlog 返回邮箱积压事件数
func (l *Loop) Backlog() int {
	return l.mailbox.Len()
}

// ============================================================================
//                              后台循环
// ============================================================================

// run 消费协程
func (l *Loop) run(ctx context.Context) error {
	for {
		for {
			ev, ok := l.mailbox.Take()
			if !ok {
				break
			}
			l.dispatch(ev)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-l.mailbox.Notify():
		}
	}
}

// tick 清扫定时器，只投递事件，不触碰登记表
func (l *Loop) tick(ctx context.Context) error {
	ticker := l.clock.Ticker(l.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := l.Post(TimeoutTick{}); err != nil {
				return nil
			}
		}
	}
}

// dispatch 处理单个事件
func (l *Loop) dispatch(ev Event) {
	switch e := ev.(type) {
	case RequestArrived:
		l.handleRequest(e)

	case TimeoutTick:
		removed := l.engine.Sweep(l.clock.Now())
		if l.observer != nil {
			l.observer.ObserveSweep(removed, l.engine.Len())
		}

	case snapshotQuery:
		e.reply <- l.engine.Snapshot()

	default:
		log.Warn("unknown event", "event", ev.eventName())
	}
}

// handleRequest 提交请求；配对在发送前已从登记表移除
func (l *Loop) handleRequest(e RequestArrived) {
	out, err := l.engine.Submit(e.Identifier, e.Source, l.clock.Now())
	if err != nil {
		log.Debug("request rejected", "source", e.Source, "err", err)
		return
	}

	if l.observer != nil {
		l.observer.ObserveSubmit(out, l.engine.Len())
	}

	if out.Kind == matcher.Paired && l.sender != nil {
		l.sender.SendPair(*out.Pair)
	}
}
