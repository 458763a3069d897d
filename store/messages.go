package store

import (
	"context"

	"github.com/jacentio/ripple/internal/keys"
)

// CreateMessage stores a chat message under the channel's partition. Two
// messages can share a millisecond; the jitter suffix keeps their sort keys
// distinct without affecting timestamp ordering.
func (t *Table) CreateMessage(ctx context.Context, channelID, userID, text string, timestamp int64) (*MessageRecord, error) {
	rec := &MessageRecord{
		ChannelID: channelID,
		UserID:    userID,
		Timestamp: timestamp,
		Text:      text,
		Jitter:    t.config.Jitter(t.config.JitterLength),
	}
	if err := t.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ListMessagesSince returns every message in a channel with timestamp >=
// since, in non-decreasing timestamp order, following pagination until
// exhausted. Messages sharing a timestamp are unordered among themselves.
func (t *Table) ListMessagesSince(ctx context.Context, channelID string, since int64) ([]*MessageRecord, error) {
	items, err := t.querySince(ctx, keys.Channel(channelID), keys.MessageFloor(since))
	if err != nil {
		return nil, err
	}
	return decodeAll[*MessageRecord](t, items), nil
}
