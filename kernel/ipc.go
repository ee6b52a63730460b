package kernel

import (
	"context"
	"sync"
)

const initialSlots = 8

// Sender is the producer half of a mailbox.
type Sender[T any] interface {
	Send(msg T)
}

// Receiver is the consumer half of a mailbox.
type Receiver[T any] interface {
	TryRecv() (T, bool)
}

// Mailbox is an unbounded multi-producer, single-consumer queue.
//
// Send never blocks and never fails. Messages from one producer are received
// in the order they were sent. The zero value is ready to use.
type Mailbox[T any] struct {
	_     [0]func() // prevent accidental copying.
	mu    sync.Mutex
	slots []T
	head  int
	count int
	ready chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{}
}

// Send enqueues a message, growing the queue when it is full.
func (mb *Mailbox[T]) Send(msg T) {
	mb.mu.Lock()
	if mb.count == len(mb.slots) {
		mb.grow()
	}
	mb.slots[(mb.head+mb.count)%len(mb.slots)] = msg
	mb.count++
	ready := mb.readyLocked()
	mb.mu.Unlock()

	select {
	case ready <- struct{}{}:
	default:
	}
}

// TryRecv attempts to dequeue one message, returning false if empty.
func (mb *Mailbox[T]) TryRecv() (T, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	var zero T
	if mb.count == 0 {
		return zero, false
	}
	msg := mb.slots[mb.head]
	mb.slots[mb.head] = zero
	mb.head = (mb.head + 1) % len(mb.slots)
	mb.count--
	return msg, true
}

// Recv blocks until one message is available or ctx is done.
func (mb *Mailbox[T]) Recv(ctx context.Context) (T, error) {
	for {
		if msg, ok := mb.TryRecv(); ok {
			return msg, nil
		}

		mb.mu.Lock()
		ready := mb.readyLocked()
		mb.mu.Unlock()

		select {
		case <-ready:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Len returns the number of queued messages.
func (mb *Mailbox[T]) Len() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.count
}

func (mb *Mailbox[T]) readyLocked() chan struct{} {
	if mb.ready == nil {
		mb.ready = make(chan struct{}, 1)
	}
	return mb.ready
}

func (mb *Mailbox[T]) grow() {
	n := len(mb.slots) * 2
	if n == 0 {
		n = initialSlots
	}
	slots := make([]T, n)
	for i := 0; i < mb.count; i++ {
		slots[i] = mb.slots[(mb.head+i)%len(mb.slots)]
	}
	mb.slots = slots
	mb.head = 0
}
