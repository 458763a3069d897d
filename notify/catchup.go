package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jacentio/ripple/store"
)

// CatchUp replays the channel messages a user missed since the given
// timestamp, delivering each as a message notification through the user's
// open connections. It returns the number of messages replayed and advances
// the user's subscription watermark past the newest one. A positive
// delaySeconds defers the whole replay once, past the window in which a
// freshly written connection record may not yet be queryable.
func (d *Dispatcher) CatchUp(ctx context.Context, userID, channelID string, since, delaySeconds int64) (int, error) {
	if delaySeconds > 0 {
		if err := d.wait(ctx, time.Duration(delaySeconds)*time.Second); err != nil {
			return 0, err
		}
	}

	msgs, err := d.table.ListMessagesSince(ctx, channelID, since)
	if err != nil {
		return 0, fmt.Errorf("list missed messages: %w", err)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	names, err := d.senderNames(ctx, msgs)
	if err != nil {
		return 0, err
	}

	var latest int64
	for _, msg := range msgs {
		note := NewMessage(msg.ChannelID, names[msg.UserID], msg.Text, msg.Timestamp)
		env, err := ToUser(userID, note)
		if err != nil {
			return 0, err
		}
		if _, err := d.Dispatch(ctx, env); err != nil {
			return 0, fmt.Errorf("replay message %s: %w", msg.PrimaryKey().SK, err)
		}
		if msg.Timestamp > latest {
			latest = msg.Timestamp
		}
	}

	sub := &store.SubscriptionRecord{
		ChannelID:         channelID,
		UserID:            userID,
		LastSeenTimestamp: latest,
	}
	if err := d.table.UpdateSubscription(ctx, sub); err != nil {
		// The replay already happened; a stale watermark only means a
		// future catch-up repeats some messages.
		d.logger.Warn("failed to advance subscription watermark",
			"channelId", channelID,
			"userId", userID,
			"error", err,
		)
	}

	d.logger.Info("catch-up complete",
		"channelId", channelID,
		"userId", userID,
		"messages", len(msgs),
	)
	return len(msgs), nil
}

// senderNames resolves the display name of every distinct sender in the
// batch. Senders whose user record has since been deleted keep their raw id
// as the display name.
func (d *Dispatcher) senderNames(ctx context.Context, msgs []*store.MessageRecord) (map[string]string, error) {
	ids := make([]string, 0, len(msgs))
	seen := make(map[string]bool)
	for _, msg := range msgs {
		if !seen[msg.UserID] {
			seen[msg.UserID] = true
			ids = append(ids, msg.UserID)
		}
	}

	names := make([]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			user, err := d.table.GetUser(gctx, id)
			switch {
			case err == nil:
				names[i] = user.UserName
			case errors.Is(err, store.ErrNotFound):
				names[i] = id
			default:
				return fmt.Errorf("look up sender %s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]string, len(ids))
	for i, id := range ids {
		byID[id] = names[i]
	}
	return byID, nil
}
