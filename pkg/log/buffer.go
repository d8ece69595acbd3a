package log

import (
	"fmt"
	"os"
	"sync"
)

// Buffer delivers entries asynchronously through a fixed-size ring.
// When the ring is full the oldest queued entry is dropped.
type Buffer struct {
	transporters []Transporter

	mu       sync.Mutex
	cond     *sync.Cond
	ring     []Entry
	head     int
	size     int
	inFlight bool
	closed   bool
	dropped  int64

	done chan struct{}
}

// NewBuffer starts a delivery worker writing to every transporter.
func NewBuffer(capacity int, transporters ...Transporter) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	b := &Buffer{
		transporters: transporters,
		ring:         make([]Entry, capacity),
		done:         make(chan struct{}),
	}
	b.cond = sync.NewCond(&b.mu)
	go b.worker()
	return b
}

// Send queues an entry. It never blocks on delivery.
func (b *Buffer) Send(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	if b.size == len(b.ring) {
		b.ring[b.head] = Entry{}
		b.head = (b.head + 1) % len(b.ring)
		b.size--
		b.dropped++
	}
	b.ring[(b.head+b.size)%len(b.ring)] = entry
	b.size++
	b.cond.Broadcast()
}

// DroppedCount returns how many entries were lost to overflow.
func (b *Buffer) DroppedCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Flush blocks until every entry queued so far has been delivered.
func (b *Buffer) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.size > 0 || b.inFlight {
		b.cond.Wait()
	}
}

// Close delivers what is queued and stops the worker. Later Sends are
// ignored. Safe to call more than once.
func (b *Buffer) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		<-b.done
		return
	}
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
	<-b.done
}

func (b *Buffer) worker() {
	defer close(b.done)

	b.mu.Lock()
	for {
		for b.size == 0 && !b.closed {
			b.cond.Wait()
		}
		if b.size == 0 {
			b.mu.Unlock()
			return
		}

		entry := b.ring[b.head]
		b.ring[b.head] = Entry{}
		b.head = (b.head + 1) % len(b.ring)
		b.size--
		b.inFlight = true
		b.mu.Unlock()

		b.deliver(entry)

		b.mu.Lock()
		b.inFlight = false
		b.cond.Broadcast()
	}
}

// deliver writes to every transporter, reporting failures on stderr.
func (b *Buffer) deliver(entry Entry) {
	for _, t := range b.transporters {
		if err := t.Write(entry); err != nil {
			fmt.Fprintf(os.Stderr, "log transporter %q failed: %v\n", t.Name(), err)
		}
	}
}

func (b *Buffer) closeTransporters() {
	for _, t := range b.transporters {
		if err := t.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "log transporter %q close failed: %v\n", t.Name(), err)
		}
	}
}
