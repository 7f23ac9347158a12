package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-rendezvous/config"
)

// TestModule_Default 无统一配置时使用默认值
func TestModule_Default(t *testing.T) {
	var engine *Engine

	app := fxtest.New(t,
		Module,
		fx.Populate(&engine),
	)
	defer app.RequireStart().RequireStop()

	assert.NotNil(t, engine)
	assert.Equal(t, DefaultConfig().TTL, engine.Snapshot().TTL)
}

// TestModule_UnifiedConfig 从统一配置读取 TTL 与容量
func TestModule_UnifiedConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Matcher.RequestTTL = config.Duration(30 * time.Second)
	cfg.Matcher.MaxPending = 10

	var engine *Engine
	app := fxtest.New(t,
		fx.Supply(cfg),
		Module,
		fx.Populate(&engine),
	)
	defer app.RequireStart().RequireStop()

	snap := engine.Snapshot()
	assert.Equal(t, 30*time.Second, snap.TTL)
	assert.Equal(t, 10, snap.Capacity)
}
