package notify

import (
	"context"
	"errors"
)

// ErrTargetGone is returned by a Pusher when the remote endpoint reports the
// connection no longer exists. Expected during normal churn; it triggers
// cleanup, not an error log.
var ErrTargetGone = errors.New("ripple: connection target gone")

// Pusher delivers raw bytes to one connection. It is the only operation the
// dispatcher requires from the transport layer.
type Pusher interface {
	// Push sends data to the connection, returning nil on delivery,
	// ErrTargetGone when the endpoint vanished, or any other error for
	// transport failures.
	Push(ctx context.Context, connectionID string, data []byte) error
}
