package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jacentio/ripple/store"
)

// Dispatcher resolves envelope targets into live connections and pushes
// payloads to each. It holds no per-message state and is safe for concurrent
// use.
type Dispatcher struct {
	table  *store.Table
	pusher Pusher
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher over the given table and push
// transport. A nil logger falls back to slog.Default().
func NewDispatcher(table *store.Table, pusher Pusher, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		table:  table,
		pusher: pusher,
		logger: logger,
	}
}

// Dispatch delivers one envelope, returning the number of connections
// reached. Pushes run concurrently and independently; a failure on one
// connection never aborts delivery to the others, and the count reflects
// only successful pushes. Delivery order relative to other concurrent
// dispatches is not guaranteed.
func (d *Dispatcher) Dispatch(ctx context.Context, env Envelope) (int, error) {
	if err := env.Validate(); err != nil {
		return 0, err
	}
	if env.DelaySeconds > 0 {
		if err := d.wait(ctx, time.Duration(env.DelaySeconds)*time.Second); err != nil {
			return 0, err
		}
	}

	recipients, err := d.resolve(ctx, env)
	if err != nil {
		return 0, err
	}
	d.logger.Info("dispatching notification",
		"targetUserId", env.TargetUserID,
		"targetChannelId", env.TargetChannelID,
		"recipients", len(recipients),
	)

	data := []byte(env.Payload)
	delivered := make([]bool, len(recipients))
	var wg sync.WaitGroup
	for i, conn := range recipients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			delivered[i] = d.push(ctx, conn, data)
		}()
	}
	wg.Wait()

	count := 0
	for _, ok := range delivered {
		if ok {
			count++
		}
	}
	d.logger.Info("notification dispatched",
		"recipients", len(recipients),
		"delivered", count,
	)
	return count, nil
}

// push delivers to one connection and classifies the outcome. A gone target
// triggers eager removal of the stale connection record; removal of an
// already-absent record is harmless since deletes are idempotent.
func (d *Dispatcher) push(ctx context.Context, conn *store.ConnectionRecord, data []byte) bool {
	err := d.pusher.Push(ctx, conn.ConnectionID, data)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrTargetGone):
		d.logger.Info("removing gone connection",
			"connectionId", conn.ConnectionID,
			"userId", conn.UserID,
		)
		if derr := d.table.DeleteConnection(ctx, conn.ConnectionID, conn.UserID); derr != nil {
			d.logger.Warn("failed to remove gone connection",
				"connectionId", conn.ConnectionID,
				"error", derr,
			)
		}
		return false
	default:
		d.logger.Warn("push failed",
			"connectionId", conn.ConnectionID,
			"error", err,
		)
		return false
	}
}

// resolve expands the envelope's logical target into connection records,
// deduplicated by connection id.
func (d *Dispatcher) resolve(ctx context.Context, env Envelope) ([]*store.ConnectionRecord, error) {
	switch {
	case env.TargetUserID != "":
		return d.table.ListConnectionsByUser(ctx, env.TargetUserID)

	case env.TargetChannelID != "":
		subs, err := d.table.ListSubscriptionsByChannel(ctx, env.TargetChannelID)
		if err != nil {
			return nil, err
		}
		userIDs := make([]string, len(subs))
		for i, sub := range subs {
			userIDs[i] = sub.UserID
		}
		return d.connectionsOf(ctx, userIDs)

	default:
		users, err := d.table.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		userIDs := make([]string, len(users))
		for i, user := range users {
			userIDs[i] = user.UserID
		}
		return d.connectionsOf(ctx, userIDs)
	}
}

// connectionsOf unions the open connections of the given users, preserving
// user order and deduplicating connection ids.
func (d *Dispatcher) connectionsOf(ctx context.Context, userIDs []string) ([]*store.ConnectionRecord, error) {
	perUser := make([][]*store.ConnectionRecord, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, userID := range userIDs {
		g.Go(func() error {
			conns, err := d.table.ListConnectionsByUser(gctx, userID)
			if err != nil {
				return fmt.Errorf("list connections of %s: %w", userID, err)
			}
			perUser[i] = conns
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var all []*store.ConnectionRecord
	for _, conns := range perUser {
		for _, conn := range conns {
			if seen[conn.ConnectionID] {
				continue
			}
			seen[conn.ConnectionID] = true
			all = append(all, conn)
		}
	}
	return all, nil
}

// wait blocks for the envelope's delivery delay, honoring cancellation from
// the surrounding request boundary.
func (d *Dispatcher) wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
