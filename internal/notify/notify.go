// Package notify is the process-wide channel for short-lived user-visible
// events. Events expire on their own timer or on explicit dismissal;
// removal by either path is idempotent.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an event for display.
type Kind string

const (
	Info    Kind = "info"
	Success Kind = "success"
	Error   Kind = "error"
)

// DefaultTTL is how long an event stays visible unless dismissed sooner.
const DefaultTTL = 3500 * time.Millisecond

// Event is one notification. Two events never share an ID, even when the
// message text collides.
type Event struct {
	ID      string
	Message string
	Kind    Kind
	At      time.Time
}

// Center owns the active event list. Safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	events   []Event
	timers   map[string]*time.Timer
	onChange func()
	closed   bool
}

func NewCenter() *Center {
	return &Center{timers: make(map[string]*time.Timer)}
}

// SetOnChange registers a hook invoked after every visible change to the
// event list. Used by the TUI to wake the render loop from timer
// goroutines; must not call back into the Center.
func (c *Center) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Push appends an event and schedules its removal after ttl
// (DefaultTTL when ttl <= 0).
func (c *Center) Push(message string, kind Kind, ttl time.Duration) Event {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	ev := Event{
		ID:      uuid.NewString(),
		Message: message,
		Kind:    kind,
		At:      time.Now(),
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ev
	}
	c.events = append(c.events, ev)
	c.timers[ev.ID] = time.AfterFunc(ttl, func() {
		c.Dismiss(ev.ID)
	})
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
	return ev
}

// Dismiss removes an event immediately, cancelling its pending expiry.
// Dismissing an unknown or already-expired ID is a no-op.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	t, ok := c.timers[id]
	if !ok {
		c.mu.Unlock()
		return false
	}
	t.Stop()
	delete(c.timers, id)
	for i, ev := range c.events {
		if ev.ID == id {
			c.events = append(c.events[:i], c.events[i+1:]...)
			break
		}
	}
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}

// Active returns the visible events in insertion order.
func (c *Center) Active() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Close cancels all pending expiries and drops remaining events. Further
// pushes are ignored.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.events = nil
}

// Infof pushes an info event with the default TTL.
func (c *Center) Infof(format string, args ...any) Event {
	return c.Push(fmt.Sprintf(format, args...), Info, 0)
}

// Successf pushes a success event with the default TTL.
func (c *Center) Successf(format string, args ...any) Event {
	return c.Push(fmt.Sprintf(format, args...), Success, 0)
}

// Errorf pushes an error event with the default TTL.
func (c *Center) Errorf(format string, args ...any) Event {
	return c.Push(fmt.Sprintf(format, args...), Error, 0)
}
