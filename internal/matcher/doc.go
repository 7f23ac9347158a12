// Package matcher 实现 rendezvous 的配对引擎
//
// # 模块概述
//
// 两个客户端各自发送携带同一标识符的数据报，引擎按标识符关联两个请求，
// 产生一个 MatchedPair，由出站适配器把对端端点告知双方。
//
// # 核心操作
//
//  1. Submit(identifier, source, now)
//     - 标识符不存在：登记新请求，结果 Registered
//     - 同一来源重复提交：刷新时间戳，结果 Refreshed，永不自配对
//     - 不同来源：移除已登记请求并返回 Paired
//  2. Sweep(now)
//     - 移除 now - LastSeenAt > TTL 的请求，返回移除数量
//
// # 不变量
//
//   - 每个标识符至多一个待配对请求
//   - 配对双方标识符相同、来源不同
//   - 配对一旦产生即为终态，发送失败不回滚
//
// # 并发
//
// Engine 不加锁，也不是并发安全的：它只能被 coordinator 的单一消费
// 协程驱动，所有变更都在同一个串行事件流里发生。
//
// # 容量
//
// 登记表由 hashicorp/golang-lru 的 simplelru 承载，按最近刷新排序；
// 达到 MaxPending 时插入新标识符会先淘汰最久未刷新的请求。
package matcher
