package hub_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jacentio/ripple/hub"
	"github.com/jacentio/ripple/notify"
)

// fakeConn records writes and can fail on demand.
type fakeConn struct {
	mu       sync.Mutex
	writes   [][]byte
	closed   bool
	writeErr error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.writes = append(c.writes, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHubPush(t *testing.T) {
	h := hub.New(0, nil)
	conn := &fakeConn{}
	h.Add("c1", conn)

	if err := h.Push(context.Background(), "c1", []byte("hello")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if conn.writeCount() != 1 {
		t.Fatalf("expected 1 write, got %d", conn.writeCount())
	}
}

func TestHubPushUnknownConnection(t *testing.T) {
	h := hub.New(0, nil)

	err := h.Push(context.Background(), "missing", []byte("hello"))
	if !errors.Is(err, notify.ErrTargetGone) {
		t.Fatalf("expected ErrTargetGone, got %v", err)
	}
}

func TestHubPushWriteFailureDropsConnection(t *testing.T) {
	h := hub.New(0, nil)
	conn := &fakeConn{writeErr: errors.New("broken pipe")}
	h.Add("c1", conn)

	err := h.Push(context.Background(), "c1", []byte("hello"))
	if !errors.Is(err, notify.ErrTargetGone) {
		t.Fatalf("expected ErrTargetGone, got %v", err)
	}
	if !conn.isClosed() {
		t.Error("expected failed connection to be closed")
	}
	if h.Len() != 0 {
		t.Errorf("expected connection unregistered, hub has %d", h.Len())
	}

	// A later push sees the connection as gone.
	if err := h.Push(context.Background(), "c1", []byte("again")); !errors.Is(err, notify.ErrTargetGone) {
		t.Fatalf("expected ErrTargetGone on retry, got %v", err)
	}
}

func TestHubRemove(t *testing.T) {
	h := hub.New(0, nil)
	conn := &fakeConn{}
	h.Add("c1", conn)

	h.Remove("c1")
	if !conn.isClosed() {
		t.Error("expected removed connection closed")
	}
	if h.Len() != 0 {
		t.Errorf("expected empty hub, got %d", h.Len())
	}

	// Unknown ids are a no-op.
	h.Remove("c1")
}

func TestHubAddDuplicateReplaces(t *testing.T) {
	h := hub.New(0, nil)
	first := &fakeConn{}
	second := &fakeConn{}

	h.Add("c1", first)
	h.Add("c1", second)

	if !first.isClosed() {
		t.Error("expected replaced connection closed")
	}
	if h.Len() != 1 {
		t.Errorf("expected 1 connection, got %d", h.Len())
	}
	if err := h.Push(context.Background(), "c1", []byte("hello")); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if second.writeCount() != 1 {
		t.Error("expected push to reach the replacement connection")
	}
}

func TestHubConcurrentPushes(t *testing.T) {
	h := hub.New(0, nil)
	conn := &fakeConn{}
	h.Add("c1", conn)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Push(context.Background(), "c1", []byte("x"))
		}()
	}
	wg.Wait()

	if conn.writeCount() != 50 {
		t.Fatalf("expected 50 writes, got %d", conn.writeCount())
	}
}
