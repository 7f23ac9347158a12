package udp

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-rendezvous/config"
	"github.com/dep2p/go-rendezvous/internal/coordinator"
)

// Module UDP 适配器 Fx 模块
var Module = fx.Module("transport_udp",
	fx.Provide(
		NewFromParams,
	),
	fx.Invoke(registerLifecycle),
)

// Params 适配器依赖参数
type Params struct {
	fx.In

	Recorder   Recorder       `optional:"true"`
	UnifiedCfg *config.Config `optional:"true"`
}

// Result 适配器导出结果
type Result struct {
	fx.Out

	Service *Service
	Sender  coordinator.Sender
}

// NewFromParams 从 Fx 参数创建适配器
func NewFromParams(p Params) (Result, error) {
	svc, err := NewService(ConfigFromUnified(p.UnifiedCfg), p.Recorder)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Service: svc,
		Sender:  svc.Sender(),
	}, nil
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, svc *Service, poster coordinator.Poster) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			return svc.Start(poster)
		},
		OnStop: func(_ context.Context) error {
			return svc.Close()
		},
	})
}
