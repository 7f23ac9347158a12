package coordinator

import (
	"sync"

	"github.com/eapache/queue"
)

// Mailbox 多生产者、单消费者的无界 FIFO 邮箱
//
// Put 永不阻塞；消费者在 Notify 上等待，再用 Take 取空邮箱。
type Mailbox struct {
	mu     sync.Mutex
	items  *queue.Queue
	notify chan struct{}
	closed bool
}

// NewMailbox 创建邮箱
func NewMailbox() *Mailbox {
	return &Mailbox{
		items:  queue.New(),
		notify: make(chan struct{}, 1),
	}
}

// Put 投递事件，邮箱关闭后返回 ErrClosed
func (m *Mailbox) Put(ev Event) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.items.Add(ev)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return nil
}

// Take 取出最早的事件，邮箱为空时返回 false
func (m *Mailbox) Take() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.items.Length() == 0 {
		return nil, false
	}
	return m.items.Remove().(Event), true
}

// Notify 有新事件时可读
func (m *Mailbox) Notify() <-chan struct{} {
	return m.notify
}

// Len 返回积压事件数
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Length()
}

// Close 关闭邮箱，之后的 Put 失败；已积压的事件仍可 Take
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
