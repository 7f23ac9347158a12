package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-rendezvous/internal/coordinator"
	"github.com/dep2p/go-rendezvous/internal/matcher"
	"github.com/dep2p/go-rendezvous/internal/transport/udp"
)

const namespace = "rendezvous"

// 淘汰原因
const (
	EvictTTL      = "ttl"
	EvictCapacity = "capacity"
)

// Collector Prometheus 指标收集器
//
// 持有独立的 Registry，不污染全局默认注册表。
type Collector struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	pairs            prometheus.Counter
	evicted          *prometheus.CounterVec
	sweeps           prometheus.Counter
	pending          prometheus.Gauge
	datagrams        prometheus.Counter
	datagramBytes    prometheus.Counter
	dropped          *prometheus.CounterVec
	responsesSent    prometheus.Counter
	responseFailures prometheus.Counter
	stunAnswered     prometheus.Counter
}

var (
	_ coordinator.Observer = (*Collector)(nil)
	_ udp.Recorder         = (*Collector)(nil)
)

// NewCollector 创建收集器并注册全部指标
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Accepted requests by outcome.",
		}, []string{"outcome"}),
		pairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_total",
			Help:      "Matched pairs.",
		}),
		evicted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evicted_total",
			Help:      "Pending requests removed without pairing.",
		}, []string{"reason"}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Timeout sweeps performed.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_requests",
			Help:      "Requests currently waiting for a partner.",
		}),
		datagrams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_received_total",
			Help:      "Datagrams read from the listen socket.",
		}),
		datagramBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagram_bytes_received_total",
			Help:      "Bytes read from the listen socket.",
		}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_dropped_total",
			Help:      "Datagrams discarded before reaching the matcher.",
		}, []string{"reason"}),
		responsesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_sent_total",
			Help:      "Pair responses written.",
		}),
		responseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_failures_total",
			Help:      "Pair responses that could not be written.",
		}),
		stunAnswered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stun_binding_answered_total",
			Help:      "STUN binding requests answered.",
		}),
	}

	c.registry.MustRegister(
		c.requests,
		c.pairs,
		c.evicted,
		c.sweeps,
		c.pending,
		c.datagrams,
		c.datagramBytes,
		c.dropped,
		c.responsesSent,
		c.responseFailures,
		c.stunAnswered,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry 返回收集器的注册表
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics HTTP 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ============================================================================
//                              coordinator.Observer
// ============================================================================

// ObserveSubmit 记录一次提交结果
func (c *Collector) ObserveSubmit(out matcher.Outcome, pending int) {
	c.requests.WithLabelValues(out.Kind.String()).Inc()
	if out.Kind == matcher.Paired {
		c.pairs.Inc()
	}
	if out.Displaced != nil {
		c.evicted.WithLabelValues(EvictCapacity).Inc()
	}
	c.pending.Set(float64(pending))
}

// ObserveSweep 记录一次清扫
func (c *Collector) ObserveSweep(removed, pending int) {
	c.sweeps.Inc()
	c.evicted.WithLabelValues(EvictTTL).Add(float64(removed))
	c.pending.Set(float64(pending))
}

// ============================================================================
//                              udp.Recorder
// ============================================================================

// DatagramReceived 记录收到的数据报
func (c *Collector) DatagramReceived(size int) {
	c.datagrams.Inc()
	c.datagramBytes.Add(float64(size))
}

// DatagramDropped 记录丢弃的数据报
func (c *Collector) DatagramDropped(reason string) {
	c.dropped.WithLabelValues(reason).Inc()
}

// ResponseSent 记录成功发送的响应
func (c *Collector) ResponseSent() {
	c.responsesSent.Inc()
}

// ResponseFailed 记录发送失败的响应
func (c *Collector) ResponseFailed() {
	c.responseFailures.Inc()
}

// STUNAnswered 记录已应答的 STUN 请求
func (c *Collector) STUNAnswered() {
	c.stunAnswered.Inc()
}
