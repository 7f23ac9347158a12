package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-rendezvous/config"
	"github.com/dep2p/go-rendezvous/internal/matcher"
)

// TestModule_Lifecycle 模块随 Fx 应用启动和停止
func TestModule_Lifecycle(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Matcher.SweepInterval = config.Duration(time.Second)

	sender := newRecordingSender()

	var (
		loop   *Loop
		poster Poster
		snap   Snapshotter
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		matcher.Module,
		fx.Provide(func() Sender { return sender }),
		Module,
		fx.Populate(&loop, &poster, &snap),
	)
	app.RequireStart()

	assert.Equal(t, time.Second, loop.config.SweepInterval)

	require.NoError(t, poster.Post(RequestArrived{Identifier: "fx", Source: sourceA}))
	require.NoError(t, poster.Post(RequestArrived{Identifier: "fx", Source: sourceB}))
	waitPair(t, sender)

	s, err := snap.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Paired)

	app.RequireStop()
	assert.ErrorIs(t, poster.Post(TimeoutTick{}), ErrClosed)
}
