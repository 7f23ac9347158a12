package coordinator

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-rendezvous/config"
	"github.com/dep2p/go-rendezvous/internal/matcher"
)

// Module 事件循环 Fx 模块
var Module = fx.Module("coordinator",
	fx.Provide(
		NewFromParams,
	),
	fx.Invoke(registerLifecycle),
)

// Params 事件循环依赖参数
type Params struct {
	fx.In

	Engine     *matcher.Engine
	Sender     Sender
	Observer   Observer       `optional:"true"`
	Clock      clock.Clock    `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
}

// Result 事件循环导出结果
type Result struct {
	fx.Out

	Loop        *Loop
	Poster      Poster
	Snapshotter Snapshotter
}

// ConfigFromUnified 从统一配置创建事件循环配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		SweepInterval: cfg.Matcher.SweepInterval.Duration(),
	}
}

// NewFromParams 从 Fx 参数创建事件循环
func NewFromParams(p Params) Result {
	opts := []Option{WithClock(p.Clock)}
	if p.Observer != nil {
		opts = append(opts, WithObserver(p.Observer))
	}

	loop := NewLoop(p.Engine, p.Sender, ConfigFromUnified(p.UnifiedCfg), opts...)
	return Result{
		Loop:        loop,
		Poster:      loop,
		Snapshotter: loop,
	}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, loop *Loop) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return loop.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return loop.Stop()
		},
	})
}
