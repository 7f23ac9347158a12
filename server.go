package rendezvous

import (
	"context"
	"fmt"
	"net/netip"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-rendezvous/config"
	"github.com/dep2p/go-rendezvous/internal/coordinator"
	"github.com/dep2p/go-rendezvous/internal/debug/introspect"
	"github.com/dep2p/go-rendezvous/internal/matcher"
	"github.com/dep2p/go-rendezvous/internal/metrics"
	"github.com/dep2p/go-rendezvous/internal/transport/udp"
	"github.com/dep2p/go-rendezvous/internal/util/logger"
)

var log = logger.Logger("rendezvous")

const (
	// startTimeout Fx App 启动超时
	startTimeout = 15 * time.Second
)

// Snapshot 匹配引擎状态快照
type Snapshot = matcher.Snapshot

// Server rendezvous 服务
//
// 构造时即绑定 UDP 套接字；Start 启动事件循环与监听，Stop 释放全部资源。
// Stop 之后不能再次 Start。即使从未 Start，也应调用 Stop 释放套接字。
type Server struct {
	cfg  *config.Config
	opts *options
	app  *fx.App

	mu      sync.Mutex
	started bool
	closed  bool

	// 由 Fx 注入
	udp         *udp.Service
	loop        *coordinator.Loop
	snapshotter coordinator.Snapshotter
	collector   *metrics.Collector
	diagnostics *introspect.Server
}

// New 创建服务
//
// cfg 为 nil 时使用默认配置。
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}

	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	s := &Server{
		cfg:  cfg,
		opts: o,
	}

	app, err := buildFxApp(cfg, o, s)
	if err != nil {
		return nil, err
	}
	s.app = app
	return s, nil
}

// Start 启动事件循环、UDP 监听与诊断服务
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrServerClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := s.app.Start(startCtx); err != nil {
		s.closed = true
		_ = s.udp.Close()
		log.Error("server start failed", "err", err)
		return fmt.Errorf("start: %w", err)
	}

	s.started = true
	log.Info("rendezvous server started",
		"listen", s.udp.LocalAddr().String(),
		"response", s.udp.ResponseAddr().String(),
		"ttl", s.cfg.Matcher.RequestTTL.String(),
		"sweep", s.cfg.Matcher.SweepInterval.String(),
		"max_pending", s.cfg.Matcher.MaxPending)
	return nil
}

// Stop 停止服务并释放套接字
//
// 未启动时只释放构造时绑定的套接字。
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrServerClosed
	}
	s.closed = true

	if !s.started {
		return s.udp.Close()
	}
	s.started = false

	if err := s.app.Stop(ctx); err != nil {
		log.Error("server stop failed", "err", err)
		return fmt.Errorf("stop: %w", err)
	}

	log.Info("rendezvous server stopped")
	return nil
}

// LocalAddr 返回请求监听端点
func (s *Server) LocalAddr() netip.AddrPort {
	return s.udp.LocalAddr()
}

// ResponseAddr 返回响应发送端点
func (s *Server) ResponseAddr() netip.AddrPort {
	return s.udp.ResponseAddr()
}

// DiagnosticsAddr 返回诊断服务地址，未启用时为空
func (s *Server) DiagnosticsAddr() string {
	if s.diagnostics == nil {
		return ""
	}
	return s.diagnostics.Addr()
}

// Config 返回服务配置
func (s *Server) Config() *config.Config {
	return s.cfg
}

// Snapshot 经由事件循环读取引擎快照
func (s *Server) Snapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	if !started {
		return Snapshot{}, ErrNotStarted
	}
	return s.snapshotter.Snapshot(ctx)
}

// Backlog 返回事件循环尚未处理的事件数
func (s *Server) Backlog() int {
	return s.loop.Backlog()
}
