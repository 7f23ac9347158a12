package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sync"
	"time"

	"github.com/dep2p/go-rendezvous/internal/coordinator"
	"github.com/dep2p/go-rendezvous/internal/util/logger"
)

var log = logger.Logger("debug/introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:6060"

// snapshotTimeout 等待事件循环回复快照的上限
const snapshotTimeout = 2 * time.Second

// ============================================================================
//                              配置
// ============================================================================

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:6060"
	Addr string

	// Snapshotter 可选的匹配引擎快照来源
	Snapshotter coordinator.Snapshotter

	// Metrics 可选的 /metrics 处理器
	Metrics http.Handler

	// CustomHandlers 自定义处理器
	CustomHandlers map[string]http.HandlerFunc
}

// ============================================================================
//                              Server
// ============================================================================

// Server 本地诊断 HTTP 服务
type Server struct {
	config Config

	// HTTP 服务器
	server   *http.Server
	listener net.Listener

	// 状态
	running   bool
	startTime time.Time

	mu sync.Mutex
}

// New 创建诊断服务
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	return &Server{
		config: cfg,
	}
}

// Handler 返回路由，便于在测试中直接挂到 httptest
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// 诊断端点
	mux.HandleFunc("/debug/introspect", s.handleIntrospect)
	mux.HandleFunc("/debug/introspect/runtime", s.handleRuntime)
	mux.HandleFunc("/debug/rendezvous", s.handleRendezvous)

	// pprof 端点
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	if s.config.Metrics != nil {
		mux.Handle("/metrics", s.config.Metrics)
	}

	// 健康检查
	mux.HandleFunc("/health", s.handleHealth)

	for path, handler := range s.config.CustomHandlers {
		mux.HandleFunc(path, handler)
	}
	return mux
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("diagnostics server exited", "err", err)
		}
	}()

	s.running = true
	log.Info("diagnostics server started", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error("diagnostics server shutdown failed", "err", err)
		return err
	}

	s.running = false
	log.Info("diagnostics server stopped")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// ============================================================================
//                              响应结构
// ============================================================================

// IntrospectResponse 完整诊断响应
type IntrospectResponse struct {
	Timestamp  time.Time       `json:"timestamp"`
	Uptime     string          `json:"uptime"`
	Rendezvous *RendezvousInfo `json:"rendezvous,omitempty"`
	Runtime    *RuntimeInfo    `json:"runtime,omitempty"`
}

// RendezvousInfo 匹配引擎状态
type RendezvousInfo struct {
	Pending         int    `json:"pending"`
	Capacity        int    `json:"capacity"`
	TTL             string `json:"ttl"`
	Registered      uint64 `json:"registered"`
	Refreshed       uint64 `json:"refreshed"`
	Paired          uint64 `json:"paired"`
	EvictedTTL      uint64 `json:"evicted_ttl"`
	EvictedCapacity uint64 `json:"evicted_capacity"`
	Sweeps          uint64 `json:"sweeps"`
}

// RuntimeInfo 运行时信息
type RuntimeInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc"`
	MemSys       uint64 `json:"mem_sys"`
	NumGC        uint32 `json:"num_gc"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

// handleIntrospect 处理完整诊断请求
func (s *Server) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := IntrospectResponse{
		Timestamp: time.Now(),
		Uptime:    s.uptime(),
		Runtime:   collectRuntimeInfo(),
	}
	if info, err := s.collectRendezvousInfo(r.Context()); err == nil {
		response.Rendezvous = info
	}

	s.writeJSON(w, response)
}

// handleRendezvous 处理匹配引擎状态请求
func (s *Server) handleRendezvous(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	info, err := s.collectRendezvousInfo(r.Context())
	if err != nil {
		http.Error(w, "Rendezvous state not available", http.StatusServiceUnavailable)
		return
	}

	s.writeJSON(w, info)
}

// handleRuntime 处理运行时信息请求
func (s *Server) handleRuntime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, collectRuntimeInfo())
}

// handleHealth 处理健康检查请求
//
// 事件循环无法在超时内回复快照时返回 degraded。
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    s.uptime(),
	}

	if _, err := s.collectRendezvousInfo(r.Context()); err != nil {
		health.Status = "degraded"
	}

	s.writeJSON(w, health)
}

// ============================================================================
//                              数据收集
// ============================================================================

var errNoSnapshotter = errors.New("introspect: no snapshotter")

// collectRendezvousInfo 经由事件循环获取引擎快照
func (s *Server) collectRendezvousInfo(ctx context.Context) (*RendezvousInfo, error) {
	if s.config.Snapshotter == nil {
		return nil, errNoSnapshotter
	}

	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	snap, err := s.config.Snapshotter.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return &RendezvousInfo{
		Pending:         snap.Pending,
		Capacity:        snap.Capacity,
		TTL:             snap.TTL.String(),
		Registered:      snap.Registered,
		Refreshed:       snap.Refreshed,
		Paired:          snap.Paired,
		EvictedTTL:      snap.EvictedTTL,
		EvictedCapacity: snap.EvictedCapacity,
		Sweeps:          snap.Sweeps,
	}, nil
}

// collectRuntimeInfo 收集运行时信息
func collectRuntimeInfo() *RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &RuntimeInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

// ============================================================================
//                              辅助方法
// ============================================================================

func (s *Server) uptime() string {
	s.mu.Lock()
	start := s.startTime
	s.mu.Unlock()

	if start.IsZero() {
		return ""
	}
	return time.Since(start).Round(time.Second).String()
}

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		log.Error("encode json failed", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
