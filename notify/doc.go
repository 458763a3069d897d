// Package notify resolves logical notification targets into live WebSocket
// connections and pushes payloads to each, tolerating and reaping stale
// targets.
//
// A notification travels as an [Envelope] naming at most one of a target
// user or a target channel (neither set means broadcast) plus an opaque
// payload. The [Dispatcher] resolves the target through the connection and
// subscription records, then pushes the payload to every recipient
// connection concurrently and independently: one failed push never aborts
// delivery to the others, and delivery order across concurrent dispatches is
// not guaranteed.
//
// Delivery is best effort. A transport report that the target connection is
// gone triggers eager cleanup of the stale connection record; any other
// transport error is logged for that one recipient and delivery moves on.
package notify
