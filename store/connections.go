package store

import (
	"context"
	"fmt"

	"github.com/jacentio/ripple/internal/keys"
)

// CreateConnection records a newly opened socket: the primary copy under the
// connection id plus the reverse projection under the owning user. The two
// writes are concurrent and non-atomic; a crash in between leaves a bounded
// inconsistency window until the close event cleans up.
func (t *Table) CreateConnection(ctx context.Context, connectionID, userID string) (*ConnectionRecord, error) {
	rec := &ConnectionRecord{
		ConnectionID: connectionID,
		UserID:       userID,
	}
	if err := t.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetConnection retrieves a connection's primary record.
func (t *Table) GetConnection(ctx context.Context, connectionID string) (*ConnectionRecord, error) {
	rec := &ConnectionRecord{}
	key := Key{PK: keys.Connection(connectionID), SK: keys.Info}
	if err := t.Get(ctx, key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteConnection removes both copies of a connection record. It succeeds
// even when one or both copies are already gone, so a close event racing an
// eager reap is harmless.
func (t *Table) DeleteConnection(ctx context.Context, connectionID, userID string) error {
	return t.Delete(ctx, &ConnectionRecord{
		ConnectionID: connectionID,
		UserID:       userID,
	})
}

// ListConnectionsByUser returns every open connection owned by a user, via
// the reverse projection under the user's partition.
func (t *Table) ListConnectionsByUser(ctx context.Context, userID string) ([]*ConnectionRecord, error) {
	items, err := t.queryPrefix(ctx, keys.User(userID), keys.ConnectionPrefix)
	if err != nil {
		return nil, err
	}
	return decodeAll[*ConnectionRecord](t, items), nil
}

// GetUserByConnection resolves the user owning a connection: the connection's
// primary record carries the user id, which then keys the user lookup.
func (t *Table) GetUserByConnection(ctx context.Context, connectionID string) (*UserRecord, error) {
	conn, err := t.GetConnection(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("resolve connection %s: %w", connectionID, err)
	}
	user, err := t.GetUser(ctx, conn.UserID)
	if err != nil {
		// Orphaned reference: the connection points at a user record that
		// is missing.
		t.logger.Warn("connection references absent user",
			"connectionId", connectionID,
			"userId", conn.UserID,
		)
		return nil, err
	}
	return user, nil
}
