package metrics

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-rendezvous/internal/coordinator"
	"github.com/dep2p/go-rendezvous/internal/transport/udp"
)

// Module 指标 Fx 模块
//
// 同时以 coordinator.Observer 与 udp.Recorder 的身份提供收集器。
var Module = fx.Module("metrics",
	fx.Provide(
		NewFromParams,
	),
)

// Result 指标模块导出结果
type Result struct {
	fx.Out

	Collector *Collector
	Observer  coordinator.Observer
	Recorder  udp.Recorder
}

// NewFromParams 创建收集器
func NewFromParams() Result {
	c := NewCollector()
	return Result{
		Collector: c,
		Observer:  c,
		Recorder:  c,
	}
}
