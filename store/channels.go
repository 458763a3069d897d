package store

import (
	"context"

	"github.com/jacentio/ripple/internal/keys"
)

// CreateChannel creates a channel record. Channel creation happens once at
// bootstrap; callers swallow ErrAlreadyExists to stay idempotent.
func (t *Table) CreateChannel(ctx context.Context, channelID, channelName string) (*ChannelRecord, error) {
	rec := &ChannelRecord{
		ChannelID:   channelID,
		ChannelName: channelName,
	}
	if err := t.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetChannel retrieves a channel by id.
func (t *Table) GetChannel(ctx context.Context, channelID string) (*ChannelRecord, error) {
	rec := &ChannelRecord{}
	key := Key{PK: keys.Channel(channelID), SK: keys.Info}
	if err := t.Get(ctx, key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateChannel rewrites a channel record.
func (t *Table) UpdateChannel(ctx context.Context, rec *ChannelRecord) error {
	return t.Update(ctx, rec)
}

// DeleteChannel removes a channel's primary record. Subscriptions and
// messages under the channel's partition are left in place; nothing in the
// current flows deletes channels outside of tests.
func (t *Table) DeleteChannel(ctx context.Context, channelID string) error {
	return t.Delete(ctx, &ChannelRecord{ChannelID: channelID})
}
