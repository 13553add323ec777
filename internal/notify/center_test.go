package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pending struct {
	after     time.Duration
	fn        func()
	cancelled bool
}

// manualScheduler records scheduled work; tests fire it explicitly.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*pending
}

func (s *manualScheduler) schedule(d time.Duration, f func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &pending{after: d, fn: f}
	s.tasks = append(s.tasks, p)
	return func() {
		s.mu.Lock()
		p.cancelled = true
		s.mu.Unlock()
	}
}

func (s *manualScheduler) fire(i int) {
	s.mu.Lock()
	p := s.tasks[i]
	s.mu.Unlock()
	p.fn()
}

func newTestCenter() (*Center, *manualScheduler) {
	s := &manualScheduler{}
	return NewCenter(WithScheduler(s.schedule)), s
}

func TestShowToast_AppendsInOrder(t *testing.T) {
	c, s := newTestCenter()

	first := c.Success("Product added successfully!")
	second := c.Error("Failed to add product. Please try again.")

	toasts := c.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, Toast{ID: first, Type: TypeSuccess, Message: "Product added successfully!"}, toasts[0])
	assert.Equal(t, Toast{ID: second, Type: TypeError, Message: "Failed to add product. Please try again."}, toasts[1])
	assert.NotEqual(t, first, second)

	require.Len(t, s.tasks, 2)
	assert.Equal(t, DefaultDuration, s.tasks[0].after)
	assert.Equal(t, 5*time.Second, s.tasks[1].after)
}

func TestShowToast_NoDeduplication(t *testing.T) {
	c, _ := newTestCenter()

	c.Success("same")
	c.Success("same")

	assert.Len(t, c.Toasts(), 2)
}

func TestAutoRemoval(t *testing.T) {
	c, s := newTestCenter()

	c.Success("first")
	second := c.Success("second")

	s.fire(0)

	toasts := c.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, second, toasts[0].ID)
}

func TestRemove_IsIdempotent(t *testing.T) {
	c, s := newTestCenter()

	id := c.Error("boom")
	c.Remove(id)
	assert.Empty(t, c.Toasts())
	assert.True(t, s.tasks[0].cancelled)

	// the timer firing later finds nothing to remove
	s.fire(0)
	c.Remove(id)
	c.Remove("unknown")
	assert.Empty(t, c.Toasts())
}

func TestSubscribe(t *testing.T) {
	c, s := newTestCenter()
	events := c.Subscribe(4)

	id := c.Success("saved")
	s.fire(0)

	added := <-events
	assert.Equal(t, ToastAdded, added.Kind)
	assert.Equal(t, id, added.Toast.ID)

	removed := <-events
	assert.Equal(t, ToastRemoved, removed.Kind)
	assert.Equal(t, id, removed.Toast.ID)
}

func TestSubscribe_FullBufferDropsEvents(t *testing.T) {
	c, _ := newTestCenter()
	events := c.Subscribe(1)

	c.Success("one")
	c.Success("two")

	assert.Len(t, events, 1)
	assert.Len(t, c.Toasts(), 2)
}

func TestClose(t *testing.T) {
	c, s := newTestCenter()
	events := c.Subscribe(1)

	c.Success("pending")
	c.Close()
	c.Close()

	assert.True(t, s.tasks[0].cancelled)

	<-events
	_, open := <-events
	assert.False(t, open)

	assert.Empty(t, c.ShowToast(TypeSuccess, "after close"))
	_, open = <-c.Subscribe(1)
	assert.False(t, open)
}

func TestAfterFunc(t *testing.T) {
	c := NewCenter(WithDuration(10 * time.Millisecond))
	defer c.Close()

	c.Success("short lived")

	assert.Eventually(t, func() bool {
		return len(c.Toasts()) == 0
	}, time.Second, 5*time.Millisecond)
}
