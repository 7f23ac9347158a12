// Package metrics 提供 rendezvous 的 Prometheus 指标
//
// Collector 实现 coordinator.Observer 与 udp.Recorder，
// 分别记录事件循环的处理结果和 UDP 适配器的收发情况：
//
//	rendezvous_requests_total{outcome}        registered / refreshed / paired
//	rendezvous_pairs_total
//	rendezvous_evicted_total{reason}          ttl / capacity
//	rendezvous_sweeps_total
//	rendezvous_pending_requests
//	rendezvous_datagrams_received_total
//	rendezvous_datagram_bytes_received_total
//	rendezvous_datagrams_dropped_total{reason}
//	rendezvous_responses_sent_total
//	rendezvous_response_failures_total
//	rendezvous_stun_binding_answered_total
//
// 指标通过 Collector.Handler 以 /metrics 暴露（见 introspect 包）。
package metrics
