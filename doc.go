// Package rendezvous 提供基于 UDP 的配对服务
//
// 两个位于 NAT 之后的客户端向同一个公网端点发送相同的标识符，
// 服务记录每个请求的来源端点（NAT 映射后的公网地址），
// 第二个请求到达时把双方的端点互相告知，之后双方可直接打洞通信。
//
// # 快速开始
//
//	cfg := config.NewConfig()
//	cfg.Listen.Addr = "0.0.0.0:6114"
//
//	srv, err := rendezvous.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(context.Background())
//
// # 组件
//
//	┌──────────────┐  RequestArrived   ┌──────────────┐   Submit/Sweep   ┌──────────────┐
//	│ UDP Listener │ ────────────────▶ │ Event Loop   │ ───────────────▶ │ Matcher      │
//	└──────────────┘                   │ (单写者)      │                  │ (登记表)      │
//	┌──────────────┐  TimeoutTick      │              │ ◀─────────────── │              │
//	│ Ticker       │ ────────────────▶ │              │   MatchedPair    └──────────────┘
//	└──────────────┘                   └──────┬───────┘
//	                                          │ SendPair
//	                                          ▼
//	                                   ┌──────────────┐
//	                                   │ UDP Sender   │
//	                                   └──────────────┘
//
// 登记表只由事件循环访问；监听、定时器与诊断接口都通过邮箱投递事件。
//
// # 响应
//
// 每次配对双方各收到一条响应：
//
//	{"id":"room-42","peer":"198.51.100.7:51000","session":"9b2f…"}
//
// 请求在 TTL 内未被配对即被清扫；同一来源重复发送只刷新时间。
package rendezvous
