package rendezvous

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-rendezvous/config"
	"github.com/dep2p/go-rendezvous/internal/coordinator"
	"github.com/dep2p/go-rendezvous/internal/debug/introspect"
	"github.com/dep2p/go-rendezvous/internal/matcher"
	"github.com/dep2p/go-rendezvous/internal/metrics"
	"github.com/dep2p/go-rendezvous/internal/transport/udp"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序即生命周期顺序：事件循环先于 UDP 监听启动，停止时反向，
// 监听套接字关闭后事件循环才退出。
func buildFxApp(cfg *config.Config, opts *options, s *Server) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(func() clock.Clock { return opts.clock }),

		matcher.Module,
		coordinator.Module,
		udp.Module,
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 指标与诊断（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.Diagnostics.EnableMetrics {
		modules = append(modules, metrics.Module)
	}
	if cfg.Diagnostics.EnableIntrospect {
		modules = append(modules, introspect.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 用户扩展
	// ════════════════════════════════════════════════════════════════════════
	if len(opts.userFxOptions) > 0 {
		modules = append(modules, opts.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectServerComponents(s)))

	// ════════════════════════════════════════════════════════════════════════
	// 6. Fx 日志
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.WithLogger(fxEventLogger(opts.verboseFx)))

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return app, nil
}

// fxEventLogger 默认静默；verbose 时使用 zap 开发日志
func fxEventLogger(verbose bool) func() fxevent.Logger {
	return func() fxevent.Logger {
		if !verbose {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		return &fxevent.ZapLogger{Logger: l.Named("fx")}
	}
}

// serverComponents Server 需要持有的组件
type serverComponents struct {
	fx.In

	UDP         *udp.Service
	Loop        *coordinator.Loop
	Snapshotter coordinator.Snapshotter
	Collector   *metrics.Collector  `optional:"true"`
	Diagnostics *introspect.Server `optional:"true"`
}

// injectServerComponents 将组件注入 Server
func injectServerComponents(s *Server) func(serverComponents) {
	return func(c serverComponents) {
		s.udp = c.UDP
		s.loop = c.Loop
		s.snapshotter = c.Snapshotter
		s.collector = c.Collector
		s.diagnostics = c.Diagnostics
	}
}
