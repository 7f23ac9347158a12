package introspect

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-rendezvous/config"
	"github.com/dep2p/go-rendezvous/internal/coordinator"
	"github.com/dep2p/go-rendezvous/internal/metrics"
)

// Module 返回诊断服务 Fx 模块
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(
			NewFromParams,
		),
		fx.Invoke(registerLifecycle),
	)
}

// IntrospectParams 诊断服务依赖参数
type IntrospectParams struct {
	fx.In

	UnifiedCfg  *config.Config          `optional:"true"`
	Snapshotter coordinator.Snapshotter `optional:"true"`
	Collector   *metrics.Collector      `optional:"true"`
}

// IntrospectOutput 诊断服务输出
type IntrospectOutput struct {
	fx.Out

	Server *Server `optional:"true"`
}

// ConfigFromUnified 从统一配置创建诊断服务配置
func ConfigFromUnified(cfg *config.Config) *Config {
	if cfg == nil || !cfg.Diagnostics.EnableIntrospect {
		return nil // 禁用时返回 nil
	}
	addr := cfg.Diagnostics.IntrospectAddr
	if addr == "" {
		addr = DefaultAddr
	}
	return &Config{
		Addr: addr,
	}
}

// NewFromParams 从参数创建诊断服务
func NewFromParams(params IntrospectParams) IntrospectOutput {
	cfg := ConfigFromUnified(params.UnifiedCfg)
	if cfg == nil {
		return IntrospectOutput{}
	}

	cfg.Snapshotter = params.Snapshotter
	if params.Collector != nil {
		cfg.Metrics = params.Collector.Handler()
	}

	return IntrospectOutput{
		Server: New(*cfg),
	}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, server *Server) {
	if server == nil {
		return // 禁用时跳过
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return server.Stop()
		},
	})
}
