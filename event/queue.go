package event

import (
	"sync/atomic"
)

const (
	// QueueSize is the fixed capacity of the event ring buffer, a power of two
	QueueSize = 1024
	queueMask = QueueSize - 1
)

// EventQueue is a lock-free MPSC ring buffer for world events
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK (path goroutines publish here)
//   - Consume: Single consumer (renderer or sandbox loop)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest events overwritten when full
type EventQueue struct {
	events    [QueueSize]WorldEvent
	published [QueueSize]atomic.Bool
	head      atomic.Uint64 // Read index
	tail      atomic.Uint64 // Write index
	dropped   atomic.Uint64
}

func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds event; safe for concurrent producers
func (eq *EventQueue) Push(event WorldEvent) {
	for {
		currentTail := eq.tail.Load()
		nextTail := currentTail + 1

		if eq.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & queueMask

			eq.events[idx] = event
			eq.published[idx].Store(true) // MUST be after write

			currentHead := eq.head.Load()
			if nextTail-currentHead > QueueSize {
				if eq.head.CompareAndSwap(currentHead, nextTail-QueueSize) {
					eq.dropped.Add(nextTail - QueueSize - currentHead)
				}
			}
			return
		}
	}
}

// Consume returns all pending events in FIFO order and advances head
func (eq *EventQueue) Consume() []WorldEvent {
	for {
		currentHead := eq.head.Load()
		currentTail := eq.tail.Load()
		if currentTail == currentHead {
			return nil
		}

		available := currentTail - currentHead
		if available > QueueSize {
			available = QueueSize
			currentHead = currentTail - QueueSize
		}

		result := make([]WorldEvent, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (currentHead + i) & queueMask
			if !eq.published[idx].Load() {
				break // Writer incomplete
			}
			result = append(result, eq.events[idx])
			eq.published[idx].Store(false)
		}

		if eq.head.CompareAndSwap(currentHead, currentHead+uint64(len(result))) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Len returns approximate pending event count
func (eq *EventQueue) Len() int {
	head := eq.head.Load()
	tail := eq.tail.Load()
	if tail <= head {
		return 0
	}
	return int(min(tail-head, QueueSize))
}

// Dropped returns the number of events overwritten before being consumed
func (eq *EventQueue) Dropped() uint64 {
	return eq.dropped.Load()
}
