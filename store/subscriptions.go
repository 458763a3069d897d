package store

import (
	"context"

	"github.com/jacentio/ripple/internal/keys"
)

// CreateSubscription subscribes a user to a channel: the primary copy under
// the channel's partition plus the projection under the user's partition.
func (t *Table) CreateSubscription(ctx context.Context, channelID, userID string) (*SubscriptionRecord, error) {
	rec := &SubscriptionRecord{
		ChannelID: channelID,
		UserID:    userID,
	}
	if err := t.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// GetSubscription retrieves one user's subscription to one channel.
func (t *Table) GetSubscription(ctx context.Context, channelID, userID string) (*SubscriptionRecord, error) {
	rec := &SubscriptionRecord{}
	key := Key{PK: keys.Channel(channelID), SK: keys.User(userID)}
	if err := t.Get(ctx, key, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateSubscription rewrites a subscription, typically to advance the
// last-seen timestamp after a catch-up delivery.
func (t *Table) UpdateSubscription(ctx context.Context, rec *SubscriptionRecord) error {
	return t.Update(ctx, rec)
}

// DeleteSubscription removes both copies of a subscription.
func (t *Table) DeleteSubscription(ctx context.Context, channelID, userID string) error {
	return t.Delete(ctx, &SubscriptionRecord{
		ChannelID: channelID,
		UserID:    userID,
	})
}

// ListSubscriptionsByChannel returns every subscription under a channel's
// partition, i.e. the channel's subscriber list.
func (t *Table) ListSubscriptionsByChannel(ctx context.Context, channelID string) ([]*SubscriptionRecord, error) {
	items, err := t.queryPrefix(ctx, keys.Channel(channelID), keys.UserPrefix)
	if err != nil {
		return nil, err
	}
	return decodeAll[*SubscriptionRecord](t, items), nil
}

// ListSubscriptionsByUser returns every channel a user follows, via the
// projection copies under the user's partition.
func (t *Table) ListSubscriptionsByUser(ctx context.Context, userID string) ([]*SubscriptionRecord, error) {
	items, err := t.queryPrefix(ctx, keys.User(userID), keys.ChannelPrefix)
	if err != nil {
		return nil, err
	}
	return decodeAll[*SubscriptionRecord](t, items), nil
}
