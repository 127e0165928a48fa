package scanner

import "sync"

// Reporter carries snapshots from the walker to one consumer without ever
// blocking the walker. Undelivered snapshots are replaced by newer ones;
// the final snapshot is always the last value received before the channel
// closes.
//
// Publish and Finish must be called from a single goroutine.
type Reporter struct {
	ch       chan Progress
	finished bool
	once     sync.Once
}

// NewReporter returns a reporter with a one-slot channel.
func NewReporter() *Reporter {
	return &Reporter{ch: make(chan Progress, 1)}
}

// C returns the receive side. It is closed after the final snapshot.
func (r *Reporter) C() <-chan Progress {
	return r.ch
}

// Publish offers p to the consumer, dropping a stale pending snapshot when
// the consumer has not caught up. Calls after Finish are ignored.
func (r *Reporter) Publish(p Progress) {
	if r.finished {
		return
	}
	for {
		select {
		case r.ch <- p:
			return
		default:
		}
		// Slot is full: drop the stale value. The consumer may have taken it
		// in the meantime, in which case the next send succeeds.
		select {
		case <-r.ch:
		default:
		}
	}
}

// Finish publishes the final snapshot and closes the channel.
func (r *Reporter) Finish(final Progress) {
	r.once.Do(func() {
		final.Done = true
		r.Publish(final)
		r.finished = true
		close(r.ch)
	})
}
