// Package mainloop schedules work onto the GTK main loop.
package mainloop

import "sync"

// Coalescer collapses bursts of tasks sharing a key into one main-loop
// dispatch that runs the most recently posted task for that key.
type Coalescer struct {
	mu      sync.Mutex
	latest  map[string]func()
	post    func(func())
	stopped bool
}

// NewCoalescer creates a coalescer that schedules through post.
func NewCoalescer(post func(func())) *Coalescer {
	if post == nil {
		panic("mainloop.NewCoalescer: post function cannot be nil")
	}
	return &Coalescer{latest: make(map[string]func()), post: post}
}

// Post schedules fn under key. If a dispatch for key is already queued, fn
// replaces the task it will run.
func (c *Coalescer) Post(key string, fn func()) {
	if fn == nil || key == "" {
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	_, queued := c.latest[key]
	c.latest[key] = fn
	c.mu.Unlock()

	if !queued {
		c.post(func() { c.run(key) })
	}
}

func (c *Coalescer) run(key string) {
	c.mu.Lock()
	fn := c.latest[key]
	delete(c.latest, key)
	stopped := c.stopped
	c.mu.Unlock()

	if fn != nil && !stopped {
		fn()
	}
}

// Stop drops queued work and ignores later posts.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.latest = make(map[string]func())
	c.mu.Unlock()
}
