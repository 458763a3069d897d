// Package hub tracks live WebSocket connections and pushes notification
// payloads to them. It is the in-process counterpart of a managed WebSocket
// gateway: the dispatcher addresses connections by id and the hub owns the
// sockets behind those ids.
package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jacentio/ripple/notify"
)

// Conn is the write side of one WebSocket.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// entry pairs a socket with its write lock. Gorilla sockets allow only one
// concurrent writer.
type entry struct {
	conn Conn
	mu   sync.Mutex
}

// Hub is a registry of open connections keyed by connection id. It is safe
// for concurrent use.
type Hub struct {
	mu           sync.RWMutex
	conns        map[string]*entry
	writeTimeout time.Duration
	logger       *slog.Logger
}

// New creates an empty hub. A nil logger falls back to slog.Default().
func New(writeTimeout time.Duration, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns:        make(map[string]*entry),
		writeTimeout: writeTimeout,
		logger:       logger,
	}
}

// Add registers a connection under the given id, replacing and closing any
// connection already registered there.
func (h *Hub) Add(connectionID string, conn Conn) {
	h.mu.Lock()
	old, ok := h.conns[connectionID]
	h.conns[connectionID] = &entry{conn: conn}
	h.mu.Unlock()

	if ok {
		old.conn.Close()
		h.logger.Warn("replaced connection with duplicate id", "connectionId", connectionID)
	}
	h.logger.Info("connection registered", "connectionId", connectionID)
}

// Remove unregisters and closes a connection. Removing an unknown id is a
// no-op.
func (h *Hub) Remove(connectionID string) {
	h.mu.Lock()
	e, ok := h.conns[connectionID]
	delete(h.conns, connectionID)
	h.mu.Unlock()

	if ok {
		e.conn.Close()
		h.logger.Info("connection removed", "connectionId", connectionID)
	}
}

// Len reports the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Push writes data as one text message to the identified connection. An
// unknown id reports notify.ErrTargetGone; a write failure closes and
// unregisters the socket and reports ErrTargetGone as well, since a socket
// that cannot be written to is as good as gone.
func (h *Hub) Push(_ context.Context, connectionID string, data []byte) error {
	h.mu.RLock()
	e, ok := h.conns[connectionID]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", notify.ErrTargetGone, connectionID)
	}

	e.mu.Lock()
	if h.writeTimeout > 0 {
		e.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
	}
	err := e.conn.WriteMessage(websocket.TextMessage, data)
	e.mu.Unlock()

	if err != nil {
		h.logger.Warn("write failed, dropping connection",
			"connectionId", connectionID,
			"error", err,
		)
		h.Remove(connectionID)
		return fmt.Errorf("%w: %s", notify.ErrTargetGone, connectionID)
	}
	return nil
}
