// Package reload provides the change-notification broadcaster that
// couples mail actions to list refreshes. A disposition action taken
// anywhere in the UI invalidates the quarantine list everywhere, and
// the two sides share no owner other than the coordinator handed to
// both at construction.
package reload

import "sync"

// Listener receives the coordinator's counter value after a bump.
type Listener func(version int)

type subscription struct {
	fn      Listener
	removed bool
}

// Coordinator is a versioned "the quarantine set changed" signal.
// Listeners are invoked synchronously and in registration order on
// every Bump; rapid successive bumps are not coalesced.
type Coordinator struct {
	mu      sync.Mutex
	version int
	subs    []*subscription
}

// New creates an empty Coordinator.
func New() *Coordinator {
	return &Coordinator{}
}

// Version returns the current change counter.
func (c *Coordinator) Version() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Subscribe registers a listener and returns a handle that removes it.
// Components must unsubscribe on teardown so a defunct controller does
// not keep receiving notifications.
func (c *Coordinator) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	sub := &subscription{fn: fn}
	c.subs = append(c.subs, sub)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub.removed {
			return
		}
		sub.removed = true
		for i, s := range c.subs {
			if s == sub {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				break
			}
		}
	}
}

// Bump increments the counter and synchronously invokes every
// registered listener with the new value. A listener unsubscribing
// itself (or any other listener) during delivery neither corrupts the
// iteration nor double-invokes anyone: delivery walks a snapshot and
// skips entries removed since.
func (c *Coordinator) Bump() {
	c.mu.Lock()
	c.version++
	version := c.version
	snapshot := make([]*subscription, len(c.subs))
	copy(snapshot, c.subs)
	c.mu.Unlock()

	for _, sub := range snapshot {
		c.mu.Lock()
		skip := sub.removed
		c.mu.Unlock()
		if skip {
			continue
		}
		sub.fn(version)
	}
}
