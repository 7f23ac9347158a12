// Package udp 实现 rendezvous 的 UDP 入站与出站适配器
//
// # 入站
//
// Listener 从套接字读取数据报，整个载荷即标识符（UTF-8 文本，无分帧、
// 无长度前缀），来源地址取传输层观测值。非法载荷静默丢弃，不会进入
// 事件循环。启用 STUN 时，STUN Binding Request 直接在此应答，
// 返回 XOR-MAPPED-ADDRESS。
//
// # 出站
//
// Sender 收到 MatchedPair 后分别向双方发送一条响应，内容为对端的
// 标识符、端点与会话 ID。发送尽力而为，失败只记录日志。
//
// 响应编码：
//
//	json:  {"id":"room-42","peer":"198.51.100.7:51000","session":"…"}\n
//	proto: field 1 id (string), field 2 peer (string), field 3 session (string)
//
// # 套接字
//
// 默认请求与响应共用同一个套接字，NAT 只放行来自原目的端点的回包；
// 配置独立的响应端点时由第二个套接字发送。
package udp
