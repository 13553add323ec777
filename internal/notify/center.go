// Package notify holds the transient toast notifications shown to the user.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"supermarket-inventory/internal/logger"

	"github.com/google/uuid"
)

type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
)

// DefaultDuration is how long a toast stays before it is removed automatically.
const DefaultDuration = 5000 * time.Millisecond

type Toast struct {
	ID      string
	Type    Type
	Message string
}

type EventKind int

const (
	ToastAdded EventKind = iota
	ToastRemoved
)

type Event struct {
	Kind  EventKind
	Toast Toast
}

// Scheduler runs f once after d and returns a function that cancels it.
// f must not be run before Scheduler returns.
type Scheduler func(d time.Duration, f func()) (cancel func())

// AfterFunc is the Scheduler backed by time.AfterFunc.
func AfterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// Center keeps the ordered toast queue. It is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	toasts   []Toast
	cancels  map[string]func()
	subs     []chan Event
	schedule Scheduler
	duration time.Duration
	closed   bool
}

type Option func(*Center)

func WithScheduler(s Scheduler) Option {
	return func(c *Center) { c.schedule = s }
}

func WithDuration(d time.Duration) Option {
	return func(c *Center) { c.duration = d }
}

func NewCenter(opts ...Option) *Center {
	c := &Center{
		cancels:  make(map[string]func()),
		schedule: AfterFunc,
		duration: DefaultDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ShowToast appends a toast and schedules its removal. It returns the new
// toast's id, or "" once the center is closed. Identical messages are not
// deduplicated.
func (c *Center) ShowToast(t Type, message string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ""
	}

	toast := Toast{ID: uuid.NewString(), Type: t, Message: message}
	c.toasts = append(c.toasts, toast)
	c.cancels[toast.ID] = c.schedule(c.duration, func() { c.Remove(toast.ID) })
	c.publish(Event{Kind: ToastAdded, Toast: toast})

	logger.Debug(context.Background(), "Toast shown",
		slog.String("toast.id", toast.ID),
		slog.String("toast.type", string(t)),
		slog.String("toast.message", message),
	)
	return toast.ID
}

func (c *Center) Success(message string) string {
	return c.ShowToast(TypeSuccess, message)
}

func (c *Center) Error(message string) string {
	return c.ShowToast(TypeError, message)
}

// Remove drops the toast with id. Unknown ids are ignored, so the automatic
// removal after a manual one does nothing.
func (c *Center) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.toasts {
		if t.ID != id {
			continue
		}
		c.toasts = append(c.toasts[:i:i], c.toasts[i+1:]...)
		if cancel, ok := c.cancels[id]; ok {
			cancel()
			delete(c.cancels, id)
		}
		c.publish(Event{Kind: ToastRemoved, Toast: t})
		return
	}
}

// Toasts returns the current queue, oldest first.
func (c *Center) Toasts() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Toast, len(c.toasts))
	copy(out, c.toasts)
	return out
}

// Subscribe returns a channel receiving every later add and remove. Events
// are dropped for a subscriber whose buffer is full. The channel is closed
// by Close.
func (c *Center) Subscribe(buffer int) <-chan Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Event, buffer)
	if c.closed {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Close cancels pending removals and closes subscriber channels.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	for id, cancel := range c.cancels {
		cancel()
		delete(c.cancels, id)
	}
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

// publish must be called with mu held.
func (c *Center) publish(ev Event) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
