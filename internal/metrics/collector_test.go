package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-rendezvous/internal/coordinator"
	"github.com/dep2p/go-rendezvous/internal/matcher"
	"github.com/dep2p/go-rendezvous/internal/transport/udp"
)

func TestCollector_ObserveSubmit(t *testing.T) {
	c := NewCollector()

	c.ObserveSubmit(matcher.Outcome{Kind: matcher.Registered}, 1)
	c.ObserveSubmit(matcher.Outcome{Kind: matcher.Refreshed}, 1)
	c.ObserveSubmit(matcher.Outcome{Kind: matcher.Registered, Displaced: &matcher.PendingRequest{}}, 2)
	c.ObserveSubmit(matcher.Outcome{Kind: matcher.Paired, Pair: &matcher.MatchedPair{}}, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("registered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("refreshed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("paired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pairs))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.evicted.WithLabelValues(EvictCapacity)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pending))
}

func TestCollector_ObserveSweep(t *testing.T) {
	c := NewCollector()

	c.ObserveSweep(3, 5)
	c.ObserveSweep(0, 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.sweeps))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.evicted.WithLabelValues(EvictTTL)))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.pending))
}

func TestCollector_Recorder(t *testing.T) {
	c := NewCollector()

	c.DatagramReceived(10)
	c.DatagramReceived(6)
	c.DatagramDropped(udp.DropEmpty)
	c.DatagramDropped(udp.DropEmpty)
	c.DatagramDropped(udp.DropTooLarge)
	c.ResponseSent()
	c.ResponseFailed()
	c.STUNAnswered()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.datagrams))
	assert.Equal(t, 16.0, testutil.ToFloat64(c.datagramBytes))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.dropped.WithLabelValues(udp.DropEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dropped.WithLabelValues(udp.DropTooLarge)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.responsesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.responseFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stunAnswered))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.ObserveSubmit(matcher.Outcome{Kind: matcher.Registered}, 1)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `rendezvous_requests_total{outcome="registered"} 1`)
	assert.Contains(t, string(body), "rendezvous_pending_requests 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestModule_Provides(t *testing.T) {
	var (
		collector *Collector
		observer  coordinator.Observer
		recorder  udp.Recorder
	)

	app := fxtest.New(t,
		Module,
		fx.Populate(&collector, &observer, &recorder),
	)
	defer app.RequireStart().RequireStop()

	require.NotNil(t, collector)
	assert.Same(t, collector, observer)
	assert.Same(t, collector, recorder)
}
