package coordinator

import (
	"fmt"
	"net/netip"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMailbox_FIFO 单生产者保持顺序
func TestMailbox_FIFO(t *testing.T) {
	mb := NewMailbox()

	for i := 0; i < 100; i++ {
		require.NoError(t, mb.Put(RequestArrived{Identifier: fmt.Sprint(i)}))
	}
	assert.Equal(t, 100, mb.Len())

	for i := 0; i < 100; i++ {
		ev, ok := mb.Take()
		require.True(t, ok)
		assert.Equal(t, fmt.Sprint(i), ev.(RequestArrived).Identifier)
	}

	_, ok := mb.Take()
	assert.False(t, ok)
}

// TestMailbox_Notify 投递后通知可读，通知合并
func TestMailbox_Notify(t *testing.T) {
	mb := NewMailbox()

	require.NoError(t, mb.Put(TimeoutTick{}))
	require.NoError(t, mb.Put(TimeoutTick{}))

	select {
	case <-mb.Notify():
	default:
		t.Fatal("expected notification")
	}

	select {
	case <-mb.Notify():
		t.Fatal("notifications should coalesce")
	default:
	}
	assert.Equal(t, 2, mb.Len())
}

// TestMailbox_PerProducerOrder 多生产者并发投递时每个生产者内部有序
func TestMailbox_PerProducerOrder(t *testing.T) {
	mb := NewMailbox()
	producers := []netip.AddrPort{
		netip.MustParseAddrPort("10.0.0.1:1"),
		netip.MustParseAddrPort("10.0.0.2:2"),
		netip.MustParseAddrPort("10.0.0.3:3"),
	}

	const n = 500
	var wg sync.WaitGroup
	for _, src := range producers {
		wg.Add(1)
		go func(src netip.AddrPort) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				_ = mb.Put(RequestArrived{Identifier: fmt.Sprint(i), Source: src})
			}
		}(src)
	}
	wg.Wait()

	next := make(map[netip.AddrPort]int)
	for {
		ev, ok := mb.Take()
		if !ok {
			break
		}
		req := ev.(RequestArrived)
		assert.Equal(t, fmt.Sprint(next[req.Source]), req.Identifier)
		next[req.Source]++
	}
	for _, src := range producers {
		assert.Equal(t, n, next[src])
	}
}

// TestMailbox_Close 关闭后拒绝投递但保留积压
func TestMailbox_Close(t *testing.T) {
	mb := NewMailbox()
	require.NoError(t, mb.Put(TimeoutTick{}))

	mb.Close()
	assert.ErrorIs(t, mb.Put(TimeoutTick{}), ErrClosed)

	_, ok := mb.Take()
	assert.True(t, ok)
}
