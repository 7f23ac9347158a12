package matcher

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-rendezvous/config"
)

// Module 配对引擎 Fx 模块
var Module = fx.Module("matcher",
	fx.Provide(
		NewFromParams,
	),
)

// Params 引擎依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// ConfigFromUnified 从统一配置创建引擎配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		TTL:        cfg.Matcher.RequestTTL.Duration(),
		MaxPending: cfg.Matcher.MaxPending,
	}
}

// NewFromParams 从 Fx 参数创建引擎
func NewFromParams(p Params) (*Engine, error) {
	return NewEngine(ConfigFromUnified(p.UnifiedCfg))
}
