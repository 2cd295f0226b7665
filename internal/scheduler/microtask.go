package scheduler

import "sync"

// Microtasks is a FIFO of callbacks drained by whoever owns the turn.
type Microtasks struct {
	mu    sync.Mutex
	queue []func()
}

// NewMicrotasks returns an empty queue.
func NewMicrotasks() *Microtasks {
	return &Microtasks{}
}

// QueueMicrotask appends fn to the queue.
func (m *Microtasks) QueueMicrotask(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, fn)
}

// Pending returns the number of queued callbacks.
func (m *Microtasks) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Drain runs callbacks until the queue is empty, including callbacks queued
// while draining. It returns how many ran.
func (m *Microtasks) Drain() int {
	ran := 0
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.mu.Unlock()
			return ran
		}
		fn := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
		m.mu.Unlock()

		fn()
		ran++
	}
}
