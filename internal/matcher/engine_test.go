package matcher

import (
	"fmt"
	"math/rand"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0      = time.Unix(1_700_000_000, 0)
	sourceA = netip.MustParseAddrPort("203.0.113.10:40000")
	sourceB = netip.MustParseAddrPort("198.51.100.7:51000")
	// 同一 NAT 后的另一个端口
	sourceA2 = netip.MustParseAddrPort("203.0.113.10:40001")
)

const testTTL = 120 * time.Second

func newTestEngine(t *testing.T, maxPending int) *Engine {
	t.Helper()

	seq := 0
	e, err := NewEngine(Config{TTL: testTTL, MaxPending: maxPending}, WithSessionFunc(func() string {
		seq++
		return fmt.Sprintf("session-%d", seq)
	}))
	require.NoError(t, err)
	return e
}

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}

// TestEngine_ScenarioA 注册、刷新、配对
func TestEngine_ScenarioA(t *testing.T) {
	e := newTestEngine(t, 16)

	out, err := e.Submit("x", sourceA, at(0))
	require.NoError(t, err)
	assert.Equal(t, Registered, out.Kind)
	assert.Nil(t, out.Pair)

	out, err = e.Submit("x", sourceA, at(5))
	require.NoError(t, err)
	assert.Equal(t, Refreshed, out.Kind)
	assert.Nil(t, out.Pair)

	out, err = e.Submit("x", sourceB, at(6))
	require.NoError(t, err)
	require.Equal(t, Paired, out.Kind)
	require.NotNil(t, out.Pair)
	assert.Equal(t, sourceA, out.Pair.A.Source)
	assert.Equal(t, sourceB, out.Pair.B.Source)
	assert.Equal(t, at(5), out.Pair.A.LastSeenAt)
	assert.Equal(t, at(6), out.Pair.B.CreatedAt)
	assert.Equal(t, "session-1", out.Pair.Session)

	_, ok := e.Lookup("x")
	assert.False(t, ok)
	assert.Equal(t, 0, e.Len())

	stats := e.Stats()
	assert.Equal(t, uint64(1), stats.Registered)
	assert.Equal(t, uint64(1), stats.Refreshed)
	assert.Equal(t, uint64(1), stats.Paired)
}

// TestEngine_ScenarioB 未配对的请求在 TTL 后被清扫
func TestEngine_ScenarioB(t *testing.T) {
	e := newTestEngine(t, 16)

	_, err := e.Submit("y", sourceA, at(0))
	require.NoError(t, err)

	removed := e.Sweep(t0.Add(testTTL + time.Second))
	assert.Equal(t, 1, removed)

	_, ok := e.Lookup("y")
	assert.False(t, ok)
	assert.Equal(t, uint64(0), e.Stats().Paired)
	assert.Equal(t, uint64(1), e.Stats().EvictedTTL)
}

// TestEngine_Uniqueness 任意提交序列下每个标识符至多一个请求
func TestEngine_Uniqueness(t *testing.T) {
	e := newTestEngine(t, 1024)
	rng := rand.New(rand.NewSource(42))

	ids := []string{"a", "b", "c", "d"}
	sources := []netip.AddrPort{sourceA, sourceA2, sourceB}

	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]
		src := sources[rng.Intn(len(sources))]

		before, existed := e.Lookup(id)
		out, err := e.Submit(id, src, at(i))
		require.NoError(t, err)

		switch {
		case !existed:
			assert.Equal(t, Registered, out.Kind)
		case before.Source == src:
			assert.Equal(t, Refreshed, out.Kind)
		default:
			require.Equal(t, Paired, out.Kind)
			assert.Equal(t, out.Pair.A.Identifier, out.Pair.B.Identifier)
			assert.NotEqual(t, out.Pair.A.Source, out.Pair.B.Source)
		}

		assert.LessOrEqual(t, e.Len(), len(ids))
		seen := make(map[string]bool)
		for _, key := range e.pending.Keys() {
			assert.False(t, seen[key], "duplicate identifier %q", key)
			seen[key] = true
		}
	}
}

// TestEngine_RefreshIdempotence 同一来源重复提交永不配对
func TestEngine_RefreshIdempotence(t *testing.T) {
	e := newTestEngine(t, 16)

	for i := 0; i < 50; i++ {
		out, err := e.Submit("id", sourceA, at(i))
		require.NoError(t, err)
		assert.NotEqual(t, Paired, out.Kind)

		req, ok := e.Lookup("id")
		require.True(t, ok)
		assert.Equal(t, sourceA, req.Source)
		assert.Equal(t, at(i), req.LastSeenAt)
		assert.Equal(t, 1, e.Len())
	}
	assert.Equal(t, uint64(49), e.Stats().Refreshed)
}

// TestEngine_PairingSymmetry 不同来源配对后登记表不再包含该标识符
func TestEngine_PairingSymmetry(t *testing.T) {
	e := newTestEngine(t, 16)

	_, err := e.Submit("sym", sourceA, at(1))
	require.NoError(t, err)
	out, err := e.Submit("sym", sourceB, at(2))
	require.NoError(t, err)

	require.Equal(t, Paired, out.Kind)
	assert.Equal(t, PendingRequest{Identifier: "sym", Source: sourceA, CreatedAt: at(1), LastSeenAt: at(1)}, out.Pair.A)
	assert.Equal(t, PendingRequest{Identifier: "sym", Source: sourceB, CreatedAt: at(2), LastSeenAt: at(2)}, out.Pair.B)
	assert.Equal(t, "sym", out.Pair.Identifier())

	_, ok := e.Lookup("sym")
	assert.False(t, ok)
}

// TestEngine_SameHostDifferentPort 同一地址不同端口视为不同来源
func TestEngine_SameHostDifferentPort(t *testing.T) {
	e := newTestEngine(t, 16)

	_, err := e.Submit("nat", sourceA, at(0))
	require.NoError(t, err)
	out, err := e.Submit("nat", sourceA2, at(1))
	require.NoError(t, err)

	assert.Equal(t, Paired, out.Kind)
}

// TestEngine_TTLEviction 恰好 TTL 时保留，超过 TTL 的第一次清扫移除
func TestEngine_TTLEviction(t *testing.T) {
	e := newTestEngine(t, 16)

	_, err := e.Submit("ttl", sourceA, t0)
	require.NoError(t, err)

	for _, d := range []time.Duration{0, time.Second, testTTL / 2, testTTL} {
		assert.Equal(t, 0, e.Sweep(t0.Add(d)), "age %s", d)
		_, ok := e.Lookup("ttl")
		assert.True(t, ok, "age %s", d)
	}

	assert.Equal(t, 1, e.Sweep(t0.Add(testTTL+time.Nanosecond)))
	_, ok := e.Lookup("ttl")
	assert.False(t, ok)
}

// TestEngine_RefreshResetsTTL 刷新从最近一次提交重新计时
func TestEngine_RefreshResetsTTL(t *testing.T) {
	e := newTestEngine(t, 16)

	_, err := e.Submit("live", sourceA, at(0))
	require.NoError(t, err)
	_, err = e.Submit("live", sourceA, at(100))
	require.NoError(t, err)

	assert.Equal(t, 0, e.Sweep(at(150)))
	_, ok := e.Lookup("live")
	assert.True(t, ok)

	assert.Equal(t, 1, e.Sweep(at(221)))
}

// TestEngine_SweepMixed 清扫只移除过期请求且不产生配对
func TestEngine_SweepMixed(t *testing.T) {
	e := newTestEngine(t, 16)

	_, _ = e.Submit("old-1", sourceA, at(0))
	_, _ = e.Submit("old-2", sourceB, at(10))
	_, _ = e.Submit("fresh", sourceA, at(100))

	assert.Equal(t, 2, e.Sweep(at(200)))
	assert.Equal(t, 1, e.Len())
	_, ok := e.Lookup("fresh")
	assert.True(t, ok)
	assert.Equal(t, uint64(0), e.Stats().Paired)

	assert.Equal(t, 0, newTestEngine(t, 4).Sweep(at(1000)))
}

// TestEngine_NoResurrection 配对后同一标识符重新登记为新请求
func TestEngine_NoResurrection(t *testing.T) {
	e := newTestEngine(t, 16)

	_, _ = e.Submit("again", sourceA, at(0))
	out, _ := e.Submit("again", sourceB, at(1))
	require.Equal(t, Paired, out.Kind)

	// 原先的 A 再次发送：新登记，不与已消费的配对关联
	out, err := e.Submit("again", sourceA, at(2))
	require.NoError(t, err)
	assert.Equal(t, Registered, out.Kind)

	req, ok := e.Lookup("again")
	require.True(t, ok)
	assert.Equal(t, at(2), req.CreatedAt)

	// B 再次发送时与新请求配对，会话 ID 不同
	out, err = e.Submit("again", sourceB, at(3))
	require.NoError(t, err)
	require.Equal(t, Paired, out.Kind)
	assert.Equal(t, at(2), out.Pair.A.CreatedAt)
	assert.Equal(t, "session-2", out.Pair.Session)
}

// TestEngine_ExactIdentifier 标识符按字节比较，不做规范化
func TestEngine_ExactIdentifier(t *testing.T) {
	e := newTestEngine(t, 16)

	_, _ = e.Submit("Room", sourceA, at(0))
	for _, id := range []string{"room", "Room ", "Room\n", "Ｒoom"} {
		out, err := e.Submit(id, sourceB, at(1))
		require.NoError(t, err)
		assert.Equal(t, Registered, out.Kind, "id %q", id)
	}
	assert.Equal(t, 5, e.Len())
}

// TestEngine_InvalidInput 非法输入不修改登记表
func TestEngine_InvalidInput(t *testing.T) {
	e := newTestEngine(t, 16)

	_, err := e.Submit("", sourceA, at(0))
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = e.Submit("x", netip.AddrPort{}, at(0))
	assert.ErrorIs(t, err, ErrInvalidSource)

	assert.Equal(t, 0, e.Len())
	assert.Equal(t, Stats{}, e.Stats())
}

// TestEngine_Capacity 登记表满时淘汰最久未刷新的请求
func TestEngine_Capacity(t *testing.T) {
	e := newTestEngine(t, 3)

	_, _ = e.Submit("one", sourceA, at(0))
	_, _ = e.Submit("two", sourceA, at(1))
	_, _ = e.Submit("three", sourceA, at(2))

	// 刷新 one，使 two 成为最久未刷新
	out, _ := e.Submit("one", sourceA, at(3))
	require.Equal(t, Refreshed, out.Kind)

	out, err := e.Submit("four", sourceB, at(4))
	require.NoError(t, err)
	assert.Equal(t, Registered, out.Kind)
	require.NotNil(t, out.Displaced)
	assert.Equal(t, "two", out.Displaced.Identifier)

	assert.Equal(t, 3, e.Len())
	_, ok := e.Lookup("two")
	assert.False(t, ok)
	assert.Equal(t, uint64(1), e.Stats().EvictedCapacity)

	// 配对不受容量影响
	out, err = e.Submit("three", sourceB, at(5))
	require.NoError(t, err)
	assert.Equal(t, Paired, out.Kind)
	assert.Nil(t, out.Displaced)
}

// TestEngine_Snapshot 测试快照
func TestEngine_Snapshot(t *testing.T) {
	e := newTestEngine(t, 8)

	_, _ = e.Submit("a", sourceA, at(0))
	_, _ = e.Submit("b", sourceA, at(0))
	e.Sweep(at(1))

	snap := e.Snapshot()
	assert.Equal(t, 2, snap.Pending)
	assert.Equal(t, 8, snap.Capacity)
	assert.Equal(t, testTTL, snap.TTL)
	assert.Equal(t, uint64(2), snap.Registered)
	assert.Equal(t, uint64(1), snap.Sweeps)
}

// TestNewEngine_InvalidConfig 测试非法配置
func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(Config{TTL: 0, MaxPending: 1})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewEngine(Config{TTL: time.Second, MaxPending: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)

	// 默认会话 ID 为 UUID
	_, _ = e.Submit("u", sourceA, at(0))
	out, _ := e.Submit("u", sourceB, at(1))
	require.Equal(t, Paired, out.Kind)
	assert.Len(t, out.Pair.Session, 36)
}

// TestOutcomeKind_String 测试结果类型名称
func TestOutcomeKind_String(t *testing.T) {
	assert.Equal(t, "registered", Registered.String())
	assert.Equal(t, "refreshed", Refreshed.String())
	assert.Equal(t, "paired", Paired.String())
	assert.Equal(t, "unknown", OutcomeKind(0).String())
}
