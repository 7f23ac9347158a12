// Package coordinator 实现驱动配对引擎的单写者事件循环
//
// # 模块概述
//
// 多个独立的生产者（UDP 接收协程、清扫定时器、诊断查询）只向一个
// 无界邮箱投递不可变事件；唯一的消费协程按到达顺序逐个取出并派发：
//
//	RequestArrived -> Engine.Submit -> (Paired) -> Sender.SendPair
//	TimeoutTick    -> Engine.Sweep
//
// 登记表只在消费协程里被修改，因此不需要任何锁；给定相同的事件序列，
// 引擎状态是确定的。
//
// # 顺序保证
//
//   - 同一生产者投递的事件保持 FIFO
//   - 不同生产者之间只按进入邮箱的先后排序
//   - Post 永不阻塞，邮箱没有容量上限
//
// # 使用示例
//
//	loop := coordinator.NewLoop(engine, sender, coordinator.DefaultConfig())
//	if err := loop.Start(ctx); err != nil {
//	    return err
//	}
//	defer loop.Stop()
//
//	_ = loop.Post(coordinator.RequestArrived{Identifier: "room-42", Source: src})
package coordinator
