// Package query carries the user's query string from the input loop to the
// matcher, keeping only the most recent value.
package query

import (
	"context"
	"sync"

	"github.com/quantmind-br/appseek/internal/core"
)

// Channel is a single-slot, latest-wins mailbox for query strings
type Channel struct {
	mu        sync.Mutex
	pending   string
	hasValue  bool
	current   string
	submitted uint64
	closed    bool

	ready chan struct{}
	done  chan struct{}
}

// NewChannel creates an open channel with nothing pending
func NewChannel() *Channel {
	return &Channel{
		ready: make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Submit replaces any pending query with q. It never blocks.
func (c *Channel) Submit(q string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return core.ErrChannelClosed
	}

	c.pending = q
	c.hasValue = true
	c.submitted++

	select {
	case c.ready <- struct{}{}:
	default:
	}
	return nil
}

// Ready is signalled whenever a query may be pending. Receivers must call
// Take, which can still report nothing if another receiver won the race.
func (c *Channel) Ready() <-chan struct{} {
	return c.ready
}

// Take consumes the pending query, if any, and makes it current
func (c *Channel) Take() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hasValue {
		return "", false
	}
	q := c.pending
	c.pending = ""
	c.hasValue = false
	c.current = q
	return q, true
}

// Pending reports whether a query is waiting to be consumed
func (c *Channel) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasValue
}

// Next blocks until a query is pending and consumes it. A query submitted
// before Close is still delivered; afterwards Next returns
// core.ErrChannelClosed.
func (c *Channel) Next(ctx context.Context) (string, error) {
	for {
		if q, ok := c.Take(); ok {
			return q, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-c.ready:
		case <-c.done:
			if q, ok := c.Take(); ok {
				return q, nil
			}
			return "", core.ErrChannelClosed
		}
	}
}

// Current returns the most recently consumed query
func (c *Channel) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Submitted returns how many queries have been submitted in total
func (c *Channel) Submitted() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitted
}

// Close rejects further submissions. It is safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}

// Done is closed once Close has been called
func (c *Channel) Done() <-chan struct{} {
	return c.done
}
