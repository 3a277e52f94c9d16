package session

import (
	"context"
	"sync"
)

// Context is the identity state of one connection. It starts unresolved;
// SignIn, SignOut and Resolve settle it and every change is pushed to the
// watchers. Deliveries run one at a time in the order the changes happened.
type Context struct {
	provider *Provider

	mu       sync.Mutex
	current  *Session
	resolved bool
	nextID   int
	watchers map[int]func(*Session)

	pending  []delivery
	draining bool
}

// delivery is one queued notification: s goes to the watchers listed in ids
// that are still attached when it is delivered.
type delivery struct {
	s   *Session
	ids []int
}

// Current returns the signed-in session, or nil.
func (c *Context) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	s := *c.current
	return &s
}

// UID returns the signed-in identity or "".
func (c *Context) UID() string {
	if s := c.Current(); s != nil {
		return s.ID
	}
	return ""
}

// Resolved reports whether the identity state has been settled at least once.
func (c *Context) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// Watch registers fn for every identity change. When the state is already
// settled fn first receives it, queued behind any change still being
// delivered. The returned func detaches fn.
func (c *Context) Watch(fn func(*Session)) (stop func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	if c.resolved {
		c.pending = append(c.pending, delivery{s: c.current, ids: []int{id}})
	}
	c.mu.Unlock()
	c.drain()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, id)
			c.mu.Unlock()
		})
	}
}

// SignIn verifies token and makes it the current identity. A failed
// verification settles the context as signed out.
func (c *Context) SignIn(ctx context.Context, token string) (*Session, error) {
	s, err := c.provider.Verify(ctx, token)
	if err != nil {
		c.set(nil)
		return nil, err
	}
	c.set(s)
	return s, nil
}

func (c *Context) SignOut() {
	c.set(nil)
}

// Resolve settles an unresolved context as signed out. It does nothing once
// the state is known.
func (c *Context) Resolve() {
	c.mu.Lock()
	if !c.resolved {
		c.setLocked(nil)
	}
	c.mu.Unlock()
	c.drain()
}

// Close detaches the context from its provider and drops all watchers.
func (c *Context) Close() {
	c.provider.detach(c)
	c.mu.Lock()
	c.watchers = make(map[int]func(*Session))
	c.mu.Unlock()
}

func (c *Context) set(s *Session) {
	c.mu.Lock()
	c.setLocked(s)
	c.mu.Unlock()
	c.drain()
}

func (c *Context) setLocked(s *Session) {
	c.current = s
	c.resolved = true
	c.enqueueLocked(s)
}

func (c *Context) refresh(uid, displayName, photoURL string) {
	c.mu.Lock()
	if c.current == nil || c.current.ID != uid {
		c.mu.Unlock()
		return
	}
	updated := *c.current
	if displayName != "" {
		updated.DisplayName = displayName
	}
	if photoURL != "" {
		updated.PhotoURL = photoURL
	}
	c.current = &updated
	c.enqueueLocked(&updated)
	c.mu.Unlock()
	c.drain()
}

func (c *Context) enqueueLocked(s *Session) {
	ids := make([]int, 0, len(c.watchers))
	for id := 0; id < c.nextID; id++ {
		if _, ok := c.watchers[id]; ok {
			ids = append(ids, id)
		}
	}
	c.pending = append(c.pending, delivery{s: s, ids: ids})
}

// drain delivers queued notifications unless another goroutine already is.
// A watcher that changes the identity from inside its callback only queues
// the change; the running drain picks it up after the current delivery.
func (c *Context) drain() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.pending) > 0 {
		d := c.pending[0]
		c.pending = c.pending[1:]
		for _, id := range d.ids {
			fn, ok := c.watchers[id]
			if !ok {
				continue
			}
			c.mu.Unlock()
			fn(copySession(d.s))
			c.mu.Lock()
		}
	}
	c.draining = false
	c.mu.Unlock()
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
